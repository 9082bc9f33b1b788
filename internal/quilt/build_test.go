package quilt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuilt(t *testing.T) {
	records := []TemperatureRecord{
		{ID: 2, Zip: 12345, Datetime: "2024-01-02", Temp: 15},
		{ID: 1, Zip: 12345, Datetime: "2024-01-01", Temp: 50},
		{ID: 3, Zip: 12345, Datetime: "bogus", Temp: 200},
	}
	ranges := []TemperatureRange{
		{LowerBound: 0, UpperBound: 32, Color: "#000080"},
		{LowerBound: 32, UpperBound: 60, Color: "#ffff00"},
	}

	rows := BuildQuilt(records, ranges)
	require.Len(t, rows, 3)

	assert.Equal(t, records[0], rows[0].Record)
	assert.Equal(t, "January 2", rows[0].Label)
	assert.Equal(t, LetterEvenDay, rows[0].Letter)
	assert.Equal(t, Color("#000080"), rows[0].Color)
	assert.Equal(t, textLight, rows[0].TextColor)

	assert.Equal(t, "January 1", rows[1].Label)
	assert.Equal(t, LetterOddDay, rows[1].Letter)
	assert.Equal(t, Color("#ffff00"), rows[1].Color)
	assert.Equal(t, textDark, rows[1].TextColor)

	assert.Equal(t, "bogus", rows[2].Label)
	assert.Equal(t, "", rows[2].Letter)
	assert.Equal(t, ColorClear, rows[2].Color)
}

func TestBuildQuiltEmpty(t *testing.T) {
	rows := BuildQuilt(nil, DefaultRanges())
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
