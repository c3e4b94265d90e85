package domain

type CabinClass string

const (
	CabinClassFirst   CabinClass = "First"
	CabinClassRegular CabinClass = "Regular"
)

// Seat is a fixed position in an aircraft's cabin layout, created once with
// the aircraft and never deleted while the aircraft exists.
type Seat struct {
	ID         int64
	AircraftID int64
	Class      CabinClass
	Row        int
	Column     string
}

// Cabin dimensions are fixed per aircraft size: big aircraft carry a First
// cabin ahead of the Regular cabin, small aircraft the Regular cabin only.
const (
	firstCabinRows   = 2
	firstCabinCols   = 2
	regularCabinRows = 5
	regularCabinCols = 4
)

// CabinLayout generates the full seat grid for a new aircraft of the given
// size, rows numbered from 1 and columns lettered from A within each cabin.
// Seat IDs and the aircraft reference are assigned at persistence.
func CabinLayout(size AircraftSize) []Seat {
	var seats []Seat
	if size == AircraftSizeBig {
		seats = appendCabin(seats, CabinClassFirst, firstCabinRows, firstCabinCols)
	}
	return appendCabin(seats, CabinClassRegular, regularCabinRows, regularCabinCols)
}

func appendCabin(seats []Seat, class CabinClass, rows, cols int) []Seat {
	for row := 1; row <= rows; row++ {
		for col := 0; col < cols; col++ {
			seats = append(seats, Seat{Class: class, Row: row, Column: string(rune('A' + col))})
		}
	}
	return seats
}

// Ticket is one seat's sellable unit for one flight. Available is true iff
// no non-canceled order currently references the ticket.
type Ticket struct {
	ID         int64
	FlightID   int64
	SeatID     int64
	Class      CabinClass
	Row        int
	Column     string
	PriceCents int64
	Available  bool
}
