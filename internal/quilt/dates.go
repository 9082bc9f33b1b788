package quilt

import "time"

const recordDateLayout = "2006-01-02"

// Row letters alternate with the day of the year.
const (
	LetterOddDay  = "K"
	LetterEvenDay = "P"
)

// FormatDate renders a yyyy-MM-dd date as "March 5". Unparseable input is
// returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(recordDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("January 2")
}

// LetterForDate returns LetterOddDay or LetterEvenDay depending on the parity
// of the date's day of the year, or "" if s is not a yyyy-MM-dd date.
func LetterForDate(s string) string {
	t, err := time.Parse(recordDateLayout, s)
	if err != nil {
		return ""
	}
	if t.YearDay()%2 == 0 {
		return LetterEvenDay
	}
	return LetterOddDay
}
