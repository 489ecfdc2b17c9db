package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stackflow/pkg/config"
	"github.com/matzehuels/stackflow/pkg/engine"
	"github.com/matzehuels/stackflow/pkg/flowchart"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// appName is the application name used for commands and display.
const appName = "stackflow"

// stdio is the path argument that selects stdin or stdout.
const stdio = "-"

// configKey is the context key for the loaded configuration.
const configKey ctxKey = 1

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext returns the configuration loaded by the root command,
// or the built-in defaults.
func configFromContext(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// newEngine returns an engine on a headless surface sized to the
// configured canvas.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	cfg := configFromContext(ctx)
	surf := surface.NewMemory(cfg.Canvas.Width, cfg.Canvas.Height)
	return engine.New(surf, engine.Options{
		Spacing:  cfg.Spacing(),
		Viewport: cfg.Viewport(),
		Logger:   loggerFromContext(ctx),
	})
}

// readDocument reads a chart document from path, or from stdin when path
// is "-". Stdin is read as JSON unless format says otherwise.
func readDocument(path, format string) (flowchart.Document, error) {
	if path != stdio && format == "" {
		return flowchart.ReadFile(path)
	}
	f := flowchart.FormatJSON
	if format != "" {
		var err error
		if f, err = flowchart.ParseFormat(format); err != nil {
			return flowchart.Document{}, err
		}
	}
	if path == stdio {
		return flowchart.Read(os.Stdin, f)
	}
	file, err := os.Open(path)
	if err != nil {
		return flowchart.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return flowchart.Read(file, f)
}

// loadChart reads path and lays it out.
func loadChart(ctx context.Context, path, format string) (*engine.Engine, error) {
	doc, err := readDocument(path, format)
	if err != nil {
		return nil, err
	}
	e, err := newEngine(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.Import(doc); err != nil {
		return nil, err
	}
	return e, nil
}

// writeDocument writes doc to path, or to w when path is empty or "-".
// The format comes from format, else from the file extension.
func writeDocument(w io.Writer, path, format string, doc flowchart.Document) error {
	f := flowchart.FormatFromPath(path)
	if format != "" {
		var err error
		if f, err = flowchart.ParseFormat(format); err != nil {
			return err
		}
	}
	if path == "" || path == stdio {
		return flowchart.Write(w, doc, f)
	}
	data, err := flowchart.Marshal(doc, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// emptyDocument is what an empty chart exports as.
func emptyDocument() flowchart.Document {
	return flowchart.Document{Blocks: []flowchart.Block{}, Positions: []flowchart.Position{}}
}
