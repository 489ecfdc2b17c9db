package chart

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 16.0
)

// FontSize returns the largest font size in [8, 16] at which textLen
// characters fit a w×h block.
func FontSize(w, h float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// Truncate shortens label to fit width at the given font size, marking
// the cut with "..".
func Truncate(label string, width, fontSize float64) string {
	maxChars := max(3, int(width*fontWidthRatio/(fontSize*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
