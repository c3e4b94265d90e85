package email

import (
	"context"

	"github.com/Domenick1991/airscheduling/internal/kafka"
	"github.com/Domenick1991/airscheduling/internal/logging"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send is a stand-in for a real mail integration; the worker logs what it
// would deliver.
func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	if event.BuyerEmail == "" {
		return nil
	}
	logging.Info("sending order notification",
		"email", event.BuyerEmail,
		"event", event.Type,
		"reference", event.Reference,
		"flight_id", event.FlightID,
	)
	return nil
}
