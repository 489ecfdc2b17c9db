package render

import (
	"context"
	"os/exec"
	"testing"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatSVG, true},
		{"svg", FormatSVG, true},
		{"PNG", FormatPNG, true},
		{"pdf", FormatPDF, true},
		{"gif", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseFormat(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertSVGPassthrough(t *testing.T) {
	in := []byte("<svg/>")
	out, err := Convert(context.Background(), in, FormatSVG, 0)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("Convert = %q, want input unchanged", out)
	}
}

func TestConvertUnknown(t *testing.T) {
	_, err := Convert(context.Background(), nil, Format("gif"), 0)
	if !apperrors.Is(err, apperrors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestToPNG(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	png, err := ToPNG(context.Background(), svg, 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG")
	}
}
