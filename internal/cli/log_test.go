package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("snap", "block", 3) }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("relayout") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("relayout") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("surface fault", "block", 2) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Laid out 3 blocks")

	out := buf.String()
	if !strings.Contains(out, "Laid out 3 blocks (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withConfig(withLogger(context.Background(), custom), configFromContext(context.Background()))
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext should survive a config value layered on top")
	}
}
