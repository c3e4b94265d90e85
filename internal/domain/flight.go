package domain

import "time"

type FlightStatus string

const (
	FlightStatusActive    FlightStatus = "Active"
	FlightStatusFull      FlightStatus = "Full"
	FlightStatusCompleted FlightStatus = "Completed"
	FlightStatusCanceled  FlightStatus = "Canceled"
)

type FlightType string

const (
	FlightTypeLong  FlightType = "Long"
	FlightTypeShort FlightType = "Short"
)

// LongHaulThreshold separates short from long routes. Routes strictly
// longer than this fly as Long and require a big aircraft.
const LongHaulThreshold = 360 * time.Minute

// Route is a fixed (origin, destination) pair with a fixed duration.
// Arrival time of any flight on the route is departure + Duration.
type Route struct {
	Origin      string
	Destination string
	Duration    time.Duration
}

func (r Route) Type() FlightType {
	if r.Duration > LongHaulThreshold {
		return FlightTypeLong
	}
	return FlightTypeShort
}

type Flight struct {
	ID            int64
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Status        FlightStatus
	Type          FlightType
	AircraftID    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Scheduled reports whether the flight still occupies its aircraft and crew,
// i.e. it has not been canceled.
func (f *Flight) Scheduled() bool {
	return f.Status != FlightStatusCanceled
}
