package domain

import "time"

type AircraftSize string

const (
	AircraftSizeBig   AircraftSize = "Big"
	AircraftSizeSmall AircraftSize = "Small"
)

type Aircraft struct {
	ID           int64
	Size         AircraftSize
	Manufacturer string
	PurchasedAt  time.Time
}

// CrewComposition is the number of crew of each role a flight needs.
type CrewComposition struct {
	Pilots     int
	Attendants int
}

// CompositionForSize returns the required crew composition for an aircraft
// size. Big aircraft fly with 3 pilots and 6 attendants, small with 2 and 3.
func CompositionForSize(size AircraftSize) CrewComposition {
	if size == AircraftSizeBig {
		return CrewComposition{Pilots: 3, Attendants: 6}
	}
	return CrewComposition{Pilots: 2, Attendants: 3}
}
