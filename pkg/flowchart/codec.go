package flowchart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown document format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Write encodes doc to w.
func Write(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// Read decodes a document from r and validates it.
// Read does not close r.
func Read(r io.Reader, f Format) (Document, error) {
	var doc Document
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode %s document", f)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Marshal encodes doc to bytes.
func Marshal(doc Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates a document.
func Unmarshal(data []byte, f Format) (Document, error) {
	return Read(bytes.NewReader(data), f)
}

// ReadFile reads a document, choosing the format from the extension.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// WriteFile writes a document, choosing the format from the extension.
func WriteFile(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, doc, FormatFromPath(path))
}
