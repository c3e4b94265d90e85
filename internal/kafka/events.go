package kafka

import "time"

// OrderEvent is published on every order lifecycle transition.
type OrderEvent struct {
	Type       string    `json:"type"`
	Reference  string    `json:"reference"`
	FlightID   int64     `json:"flight_id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	BuyerKind  string    `json:"buyer_kind"`
	BuyerEmail string    `json:"buyer_email,omitempty"`
	SeatCount  int       `json:"seat_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FlightEvent is published when a flight is scheduled or cancelled.
type FlightEvent struct {
	Type          string    `json:"type"`
	FlightID      int64     `json:"flight_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const (
	EventOrderCreated    = "order_created"
	EventOrderCancelled  = "order_cancelled"
	EventFlightScheduled = "flight_scheduled"
	EventFlightCancelled = "flight_cancelled"
)
