// Package availability holds the pure interval-overlap evaluator shared by
// the availability query service and the conversion workflow's re-check.
// Dates are day-granular, intervals are closed on both ends: a booking that
// ends on day N and one that starts on day N collide, there is no same-day
// double-use.
package availability

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type Class string

const (
	ClassAvailable     Class = "available"
	ClassAvailableSoon Class = "available_soon"
	ClassBooked        Class = "booked"
	ClassConflict      Class = "conflict"
)

// Window is one reservation interval [From, To], both ends inclusive.
type Window struct {
	CampaignID uint
	From       time.Time
	To         time.Time
}

// Result classifies one asset against a query window. AvailableFrom is set
// only for ClassAvailableSoon; Windows carries the intersecting reservations
// (all of them for ClassConflict, the single one for ClassBooked and
// ClassAvailableSoon).
type Result struct {
	Class         Class
	AvailableFrom *time.Time
	Windows       []Window
}

// Overlaps reports whether the closed intervals [a1,a2] and [b1,b2]
// intersect: a1 <= b2 && b1 <= a2.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return !a1.After(b2) && !b1.After(a2)
}

// Classify evaluates an asset's active reservation windows against the query
// window [qs,qe]. Exactly one class is produced:
//
//   - no intersecting window            -> Available
//   - two or more intersecting windows  -> Conflict (integrity violation,
//     surfaced with every offender; no winner is picked)
//   - one window ending before qe       -> AvailableSoon, free from To+1d
//   - one window covering through qe    -> Booked
func Classify(windows []Window, qs, qe time.Time) Result {
	var hits []Window
	for _, w := range windows {
		if Overlaps(w.From, w.To, qs, qe) {
			hits = append(hits, w)
		}
	}

	switch len(hits) {
	case 0:
		return Result{Class: ClassAvailable}
	case 1:
		w := hits[0]
		if w.To.Before(qe) {
			from := w.To.AddDate(0, 0, 1)
			return Result{Class: ClassAvailableSoon, AvailableFrom: &from, Windows: hits}
		}
		return Result{Class: ClassBooked, Windows: hits}
	default:
		return Result{Class: ClassConflict, Windows: hits}
	}
}

// Days returns the inclusive day count of [from, to]: Days(d, d) == 1.
func Days(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
