package quilt

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	textDark  Color = "#000000"
	textLight Color = "#ffffff"
)

// ColorFor returns the color of the first range containing temp, in list
// order, or ColorClear when none does.
func ColorFor(temp float64, ranges []TemperatureRange) Color {
	for _, r := range ranges {
		if r.Contains(temp) {
			return r.Color
		}
	}
	return ColorClear
}

// NormalizeColor validates a hex color ("#rgb" or "#rrggbb", with or without
// the leading '#') and returns it as lowercase "#rrggbb".
func NormalizeColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("color is empty")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(c.Hex()), nil
}

// TextColorFor picks black or white text, whichever reads better on c.
func TextColorFor(c Color) Color {
	if c == ColorClear || c == "" {
		return textDark
	}
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return textDark
	}
	l, _, _ := parsed.Lab()
	if l >= 0.6 {
		return textDark
	}
	return textLight
}

// DefaultRanges is the palette a fresh process starts with, coldest first.
func DefaultRanges() []TemperatureRange {
	return []TemperatureRange{
		{LowerBound: -100, UpperBound: 20, Color: "#3b0a75"},
		{LowerBound: 20, UpperBound: 32, Color: "#1f3fbf"},
		{LowerBound: 32, UpperBound: 45, Color: "#3f8fd8"},
		{LowerBound: 45, UpperBound: 55, Color: "#5fbfa8"},
		{LowerBound: 55, UpperBound: 65, Color: "#8fcf5f"},
		{LowerBound: 65, UpperBound: 75, Color: "#f0d83c"},
		{LowerBound: 75, UpperBound: 85, Color: "#f08c28"},
		{LowerBound: 85, UpperBound: 150, Color: "#c81e1e"},
	}
}
