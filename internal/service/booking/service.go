// Package booking carries the purchase-side workflows: order creation
// over the atomic seat reservation, customer cancellation and order
// lookup.
package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/kafka"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/google/uuid"
)

// reserver is the seat inventory manager surface the workflow needs.
type reserver interface {
	Reserve(ctx context.Context, order *domain.Order, seatIDs []int64) error
	Release(ctx context.Context, orderID int64, status domain.OrderStatus, finalTotalCents int64) error
}

type flightSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	MarkFullIfSoldOut(ctx context.Context, flightID int64) (bool, error)
	ReopenIfSeatsFreed(ctx context.Context, flightID int64) (bool, error)
}

type orderSource interface {
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	TicketsByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error)
}

type seatHolder interface {
	AcquireSeatHold(ctx context.Context, flightID, seatID int64, holder string, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, flightID, seatID int64) error
}

type flightsCacheInvalidator interface {
	InvalidateFlights(ctx context.Context) error
}

type eventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// CreateOrderRequest carries one purchase attempt. SeatIDs must contain
// exactly Quantity distinct seats of the flight.
type CreateOrderRequest struct {
	FlightID int64
	Quantity int
	SeatIDs  []int64
	Buyer    domain.Buyer
}

// OrderUseCase is the purchase-side surface consumed by the HTTP layer.
type OrderUseCase interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, reference, email string) (*domain.Order, []domain.Ticket, error)
	CancelOrder(ctx context.Context, reference, email string) (*domain.Order, error)
}

type Service struct {
	inventory reserver
	flights   flightSource
	orders    orderSource
	holds     seatHolder
	cache     flightsCacheInvalidator
	events    eventPublisher
	metrics   *metrics.Registry

	orderTopic        string
	notificationTopic string
	holdTTL           time.Duration
	cancelCutoff      time.Duration

	now func() time.Time
}

func NewService(
	inventory reserver,
	flights flightSource,
	orders orderSource,
	holds seatHolder,
	cache flightsCacheInvalidator,
	events eventPublisher,
	reg *metrics.Registry,
	orderTopic, notificationTopic string,
	holdTTL, cancelCutoff time.Duration,
) *Service {
	return &Service{
		inventory:         inventory,
		flights:           flights,
		orders:            orders,
		holds:             holds,
		cache:             cache,
		events:            events,
		metrics:           reg,
		orderTopic:        orderTopic,
		notificationTopic: notificationTopic,
		holdTTL:           holdTTL,
		cancelCutoff:      cancelCutoff,
		now:               time.Now,
	}
}

var _ OrderUseCase = (*Service)(nil)

// CreateOrder reserves the requested seats and commits an order. Seats
// are first held in redis for the selection dwell time; the reservation
// transaction remains the arbiter, so a lost hold surfaces as the same
// conflict a lost reservation would.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.Status != domain.FlightStatusActive {
		return nil, domain.Validationf("flight %d is %s and not open for booking", flight.ID, flight.Status)
	}
	if !flight.DepartureTime.After(s.now()) {
		return nil, domain.Validationf("flight %d has already departed", flight.ID)
	}

	order := &domain.Order{
		Reference: uuid.NewString(),
		FlightID:  req.FlightID,
		Buyer:     req.Buyer,
	}

	held, err := s.acquireHolds(ctx, req.FlightID, req.SeatIDs, order.Reference)
	if err != nil {
		s.releaseHolds(ctx, req.FlightID, held)
		if _, ok := domain.AsConflict(err); ok {
			s.metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}
	defer s.releaseHolds(ctx, req.FlightID, held)

	if err := s.inventory.Reserve(ctx, order, req.SeatIDs); err != nil {
		if _, ok := domain.AsConflict(err); ok {
			s.metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}
	s.metrics.ReservationsCommitted.Inc()

	if full, err := s.flights.MarkFullIfSoldOut(ctx, req.FlightID); err != nil {
		logging.Warn("failed to update flight fill status", "flight_id", req.FlightID, "error", err)
	} else if full {
		s.invalidateFlights(ctx)
	}

	s.publishOrderEvent(ctx, kafka.EventOrderCreated, order, len(req.SeatIDs))
	logging.Info("order committed",
		"reference", order.Reference,
		"flight_id", order.FlightID,
		"seats", len(req.SeatIDs),
		"total_cents", order.TotalCents,
	)
	return order, nil
}

// GetOrder fetches an order by reference together with its tickets. For
// member and guest orders the requester must present the purchase email;
// anonymous orders are keyed by reference alone.
func (s *Service) GetOrder(ctx context.Context, reference, email string) (*domain.Order, []domain.Ticket, error) {
	order, err := s.orders.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	if err := verifyBuyer(order, email); err != nil {
		return nil, nil, err
	}

	tickets, err := s.orders.TicketsByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, tickets, nil
}

// CancelOrder turns an active order into a customer cancellation. Allowed
// only up to the configured cutoff before departure; the cancellation fee
// captured at purchase time stays charged and the seats return to the
// pool.
func (s *Service) CancelOrder(ctx context.Context, reference, email string) (*domain.Order, error) {
	order, err := s.orders.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := verifyBuyer(order, email); err != nil {
		return nil, err
	}
	if order.Buyer.Kind == domain.BuyerAnonymous {
		return nil, domain.Validationf("anonymous orders cannot be cancelled")
	}
	if order.Status != domain.OrderStatusActive {
		return nil, domain.Validationf("order %s is %s and cannot be cancelled", reference, order.Status)
	}

	flight, err := s.flights.GetByID(ctx, order.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.DepartureTime.Before(s.now().Add(s.cancelCutoff)) {
		return nil, domain.Validationf("flight departs within %s; order %s can no longer be cancelled", s.cancelCutoff, reference)
	}

	if err := s.inventory.Release(ctx, order.ID, domain.OrderStatusCustomerCancelled, order.FeeCents); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCustomerCancelled
	order.TotalCents = order.FeeCents

	if reopened, err := s.flights.ReopenIfSeatsFreed(ctx, order.FlightID); err != nil {
		logging.Warn("failed to update flight fill status", "flight_id", order.FlightID, "error", err)
	} else if reopened {
		s.invalidateFlights(ctx)
	}

	s.publishOrderEvent(ctx, kafka.EventOrderCancelled, order, 0)
	logging.Info("order cancelled", "reference", reference, "fee_cents", order.FeeCents)
	return order, nil
}

func validateRequest(req CreateOrderRequest) error {
	if req.Quantity <= 0 {
		return domain.Validationf("quantity must be positive")
	}
	if len(req.SeatIDs) != req.Quantity {
		return domain.Validationf("selected %d seat(s), order requires %d", len(req.SeatIDs), req.Quantity)
	}
	seen := make(map[int64]bool, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		if seen[id] {
			return domain.Validationf("seat %d selected twice", id)
		}
		seen[id] = true
	}
	switch req.Buyer.Kind {
	case domain.BuyerMember, domain.BuyerGuest:
		if req.Buyer.Email == "" {
			return domain.Validationf("%s orders require an email", req.Buyer.Kind)
		}
	case domain.BuyerAnonymous:
	default:
		return domain.Validationf("unknown buyer kind %q", req.Buyer.Kind)
	}
	return nil
}

// verifyBuyer gates access to an order. Mismatched credentials report not
// found rather than leaking the order's existence.
func verifyBuyer(order *domain.Order, email string) error {
	switch order.Buyer.Kind {
	case domain.BuyerMember, domain.BuyerGuest:
		if email != order.Buyer.Email {
			return domain.ErrNotFound
		}
	}
	return nil
}

// acquireHolds takes a redis hold per seat and returns the seats actually
// held. A seat already held by another purchaser is a conflict.
func (s *Service) acquireHolds(ctx context.Context, flightID int64, seatIDs []int64, holder string) ([]int64, error) {
	held := make([]int64, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		ok, err := s.holds.AcquireSeatHold(ctx, flightID, seatID, holder, s.holdTTL)
		if err != nil {
			return held, err
		}
		if !ok {
			return held, &domain.ConflictError{SeatIDs: []int64{seatID}}
		}
		held = append(held, seatID)
	}
	return held, nil
}

func (s *Service) releaseHolds(ctx context.Context, flightID int64, seatIDs []int64) {
	for _, seatID := range seatIDs {
		if err := s.holds.ReleaseSeatHold(ctx, flightID, seatID); err != nil {
			logging.Warn("failed to release seat hold", "flight_id", flightID, "seat_id", seatID, "error", err)
		}
	}
}

func (s *Service) invalidateFlights(ctx context.Context) {
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logging.Warn("flights cache invalidation failed", "error", err)
	}
}

func (s *Service) publishOrderEvent(ctx context.Context, eventType string, o *domain.Order, seatCount int) {
	event := kafka.OrderEvent{
		Type:       eventType,
		Reference:  o.Reference,
		FlightID:   o.FlightID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		BuyerKind:  string(o.Buyer.Kind),
		BuyerEmail: o.Buyer.Email,
		SeatCount:  seatCount,
		OccurredAt: s.now(),
	}
	for _, topic := range []string{s.orderTopic, s.notificationTopic} {
		if topic == "" {
			continue
		}
		if err := s.events.Publish(ctx, topic, o.Reference, event); err != nil {
			logging.Warn("failed to publish order event", "type", eventType, "topic", topic, "reference", o.Reference, "error", err)
		}
	}
}
