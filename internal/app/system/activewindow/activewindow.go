// Package activewindow decides whether an announcement is visible at a given
// instant.
//
// An announcement is visible from its start date (inclusive, or from the
// beginning of time when there is none) through its expiration date
// (inclusive). Dates are ISO-8601 strings as submitted by the staff UI; they
// are parsed and compared as instants, so "2030-01-01T09:00:00+02:00" and
// "2030-01-01T07:00:00Z" are the same bound.
package activewindow

import (
	"strings"
	"time"
)

// localLayout renders "now" for comparison against values that cannot be
// parsed. It matches the shape the staff UI produces, so those values still
// order correctly as strings.
const localLayout = "2006-01-02T15:04:05.000000"

// layoutsWithZone carry their own offset; layoutsNoZone are read in the
// window's location.
var (
	layoutsWithZone = []string{
		time.RFC3339, // fractional seconds are accepted when parsing
		"2006-01-02T15:04Z07:00",
	}
	layoutsNoZone = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// Window evaluates active windows. Loc is the location used for date strings
// that carry no offset; nil means UTC.
type Window struct {
	Loc *time.Location
}

// New returns a Window that reads offset-less dates in loc.
func New(loc *time.Location) Window {
	return Window{Loc: loc}
}

func (w Window) location() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// Parse reads an ISO-8601 date or date-time. Date-only values mean the start
// of that day.
func (w Window) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layoutsWithZone {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range layoutsNoZone {
		if t, err := time.ParseInLocation(layout, s, w.location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compare returns -1, 0 or +1 as now is before, at or after bound.
func (w Window) compare(now time.Time, bound string) int {
	if t, ok := w.Parse(bound); ok {
		return now.Compare(t)
	}
	return strings.Compare(now.In(w.location()).Format(localLayout), strings.TrimSpace(bound))
}

// IsActive reports whether an announcement with the given bounds is visible
// at now. An empty start or expiration means that side is unbounded.
func (w Window) IsActive(now time.Time, start, expiration string) bool {
	if strings.TrimSpace(start) != "" && w.compare(now, start) < 0 {
		return false
	}
	if strings.TrimSpace(expiration) != "" && w.compare(now, expiration) > 0 {
		return false
	}
	return true
}

// IsActive evaluates bounds with offset-less dates read as UTC.
func IsActive(now time.Time, start, expiration string) bool {
	return Window{}.IsActive(now, start, expiration)
}
