package schedule

import (
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
)

// Interval is a half-open [Start, End) time window.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

// Overlaps reports whether the two half-open windows intersect.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Leg is one non-canceled flight assignment on an aircraft's or crew
// member's timeline.
type Leg struct {
	FlightID    int64
	Origin      string
	Destination string
	Status      domain.FlightStatus
	Interval
}

// Scheduled reports whether the leg still lies ahead on the timeline
// (departure not yet flown, status Active or Full).
func (l Leg) Scheduled() bool {
	return l.Status == domain.FlightStatusActive || l.Status == domain.FlightStatusFull
}
