package quilt

// BuildQuilt renders records, in their given order, into labeled colored rows.
func BuildQuilt(records []TemperatureRecord, ranges []TemperatureRange) []QuiltRow {
	rows := make([]QuiltRow, 0, len(records))
	for _, rec := range records {
		color := ColorFor(rec.Temp, ranges)
		rows = append(rows, QuiltRow{
			Record:    rec,
			Label:     FormatDate(rec.Datetime),
			Letter:    LetterForDate(rec.Datetime),
			Color:     color,
			TextColor: TextColorFor(color),
		})
	}
	return rows
}
