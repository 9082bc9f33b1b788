package quilt

import "time"

// Color is an opaque display color. Ranges carry normalized "#rrggbb" values.
type Color string

// ColorClear is returned when no range matches a temperature.
const ColorClear Color = "clear"

// TemperatureRecord is one daily observation as returned by the table store.
type TemperatureRecord struct {
	ID       int     `json:"Id"`
	Zip      int     `json:"zip"`
	Datetime string  `json:"datetime"` // yyyy-MM-dd
	Temp     float64 `json:"temp"`     // degrees Fahrenheit
}

// TemperatureRange maps the half-open interval [LowerBound, UpperBound) to a color.
//
// Ranges are kept as an ordered list and are neither required to be disjoint
// nor sorted. When ranges overlap the first one in list order wins, so the
// order the user arranges them in decides the color.
type TemperatureRange struct {
	ID         string  `json:"id"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
	Color      Color   `json:"color"`
}

// Contains reports whether t falls inside the range.
func (r TemperatureRange) Contains(t float64) bool {
	return r.LowerBound <= t && t < r.UpperBound
}

// Preferences are the two scalars persisted between runs.
type Preferences struct {
	PostalCode   string    `json:"postalCode"`
	ReminderTime time.Time `json:"reminderTime"`
}

// QuiltRow is one rendered record: a label, an alternating letter and a color.
type QuiltRow struct {
	Record    TemperatureRecord `json:"record"`
	Label     string            `json:"label"`
	Letter    string            `json:"letter"`
	Color     Color             `json:"color"`
	TextColor Color             `json:"textColor"`
}
