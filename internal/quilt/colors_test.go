package quilt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFor(t *testing.T) {
	const a, b Color = "#aa0000", "#0000bb"

	tests := []struct {
		name   string
		temp   float64
		ranges []TemperatureRange
		want   Color
	}{
		{
			name:   "lower bound is inclusive, upper exclusive",
			temp:   10,
			ranges: []TemperatureRange{{LowerBound: 0, UpperBound: 10, Color: a}, {LowerBound: 10, UpperBound: 20, Color: b}},
			want:   b,
		},
		{
			name: "empty ranges never match",
			temp: 95,
			want: ColorClear,
		},
		{
			name:   "first match wins on overlap",
			temp:   15,
			ranges: []TemperatureRange{{LowerBound: 10, UpperBound: 20, Color: a}, {LowerBound: 12, UpperBound: 18, Color: b}},
			want:   a,
		},
		{
			name:   "order decides, not tightness",
			temp:   15,
			ranges: []TemperatureRange{{LowerBound: 12, UpperBound: 18, Color: b}, {LowerBound: 10, UpperBound: 20, Color: a}},
			want:   b,
		},
		{
			name:   "value on last upper bound falls through to default",
			temp:   20,
			ranges: []TemperatureRange{{LowerBound: 0, UpperBound: 10, Color: a}, {LowerBound: 10, UpperBound: 20, Color: b}},
			want:   ColorClear,
		},
		{
			name:   "negative temperatures",
			temp:   -5.5,
			ranges: []TemperatureRange{{LowerBound: -10, UpperBound: 0, Color: a}},
			want:   a,
		},
		{
			name:   "inverted range never matches",
			temp:   5,
			ranges: []TemperatureRange{{LowerBound: 10, UpperBound: 0, Color: a}},
			want:   ColorClear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorFor(tt.temp, tt.ranges))
		})
	}
}

func TestNormalizeColor(t *testing.T) {
	c, err := NormalizeColor("#FF8800")
	require.NoError(t, err)
	assert.Equal(t, Color("#ff8800"), c)

	c, err = NormalizeColor("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, Color("#0a0b0c"), c)

	c, err = NormalizeColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, Color("#ffffff"), c)

	_, err = NormalizeColor("")
	assert.Error(t, err)

	_, err = NormalizeColor("not-a-color")
	assert.Error(t, err)
}

func TestTextColorFor(t *testing.T) {
	assert.Equal(t, textDark, TextColorFor("#ffffff"))
	assert.Equal(t, textDark, TextColorFor("#f0d83c"))
	assert.Equal(t, textLight, TextColorFor("#000000"))
	assert.Equal(t, textLight, TextColorFor("#3b0a75"))
	assert.Equal(t, textDark, TextColorFor(ColorClear))
	assert.Equal(t, textDark, TextColorFor("garbage"))
}

func TestDefaultRangesAreContiguous(t *testing.T) {
	ranges := DefaultRanges()
	require.NotEmpty(t, ranges)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].UpperBound, ranges[i].LowerBound, "gap before range %d", i)
	}
	for _, r := range ranges {
		_, err := NormalizeColor(string(r.Color))
		assert.NoError(t, err)
	}
}
