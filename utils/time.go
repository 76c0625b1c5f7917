package utils

import (
	"github.com/araddon/dateparse"
	"time"
)

const DateLayout = "1/2/2006"

func ParseTime(value string) (time.Time, error) {
	return dateparse.ParseAny(value)
}

// FormatDate renders an indexing timestamp as a short date. Unparseable
// values are returned as-is.
func FormatDate(value string) string {
	t, err := ParseTime(value)
	if err != nil {
		return value
	}
	return t.Format(DateLayout)
}
