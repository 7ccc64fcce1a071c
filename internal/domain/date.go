package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ISODate is the wire and storage layout of entry dates.
	ISODate = "2006-01-02"
	// DisplayDate is the layout used by the history table and chart labels.
	DisplayDate = "02/01/2006"
)

// CanonicalDate normalizes s to YYYY-MM-DD. It accepts the ISO date itself,
// an RFC 3339 timestamp (the date part is kept as written, without shifting
// time zones) and the DD/MM/YYYY display layout.
func CanonicalDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ISODate, s); err == nil {
		return t.Format(ISODate), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Format(ISODate), nil
	}
	if t, err := time.Parse(DisplayDate, s); err == nil {
		return t.Format(ISODate), nil
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}

// FormatDisplayDate renders a stored date as DD/MM/YYYY. Dates that cannot be
// parsed are returned unchanged.
func FormatDisplayDate(s string) string {
	iso, err := CanonicalDate(s)
	if err != nil {
		return s
	}
	t, _ := time.Parse(ISODate, iso)
	return t.Format(DisplayDate)
}
