// Package flights carries the flight-side workflows: availability checks,
// the two-step creation flow, manager cancellation and flight queries.
package flights

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/kafka"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/Domenick1991/airscheduling/internal/repository"
	"github.com/Domenick1991/airscheduling/internal/schedule"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type flightsCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type routeSource interface {
	Route(ctx context.Context, origin, destination string) (*domain.Route, error)
}

// AvailabilityRequest is the availability-check boundary: a route, a
// departure instant and the crew the caller wants on board. Zero crew
// counts mean "whatever the chosen aircraft requires".
type AvailabilityRequest struct {
	Origin        string
	Destination   string
	DepartureTime time.Time
	Pilots        int
	Attendants    int
}

// AvailabilityResult reports whether the requested window is feasible.
// When it is not, SuggestedDeparture carries the earliest instant that
// would work, or nil when no future availability exists.
type AvailabilityResult struct {
	Available          bool
	SuggestedDeparture *time.Time
	Aircraft           []domain.Aircraft
	Crew               schedule.CrewPool
}

// ScheduleRequest commits a flight after the manager picked crew in step
// two. FirstFareCents defaults to twice the regular fare when zero.
type ScheduleRequest struct {
	Origin           string
	Destination      string
	DepartureTime    time.Time
	CrewIDs          []int64
	RegularFareCents int64
	FirstFareCents   int64
}

// ScheduleResult is either a committed flight or a blocked outcome with a
// suggestion, mirroring AvailabilityResult.
type ScheduleResult struct {
	Flight  *domain.Flight
	Blocked *AvailabilityResult
}

// FlightUseCase is the flight-side surface consumed by the HTTP layer and
// the worker.
type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SeatMap(ctx context.Context, flightID int64) ([]domain.Ticket, error)
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error)
	Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error)
	Cancel(ctx context.Context, flightID int64) error
	CompleteDeparted(ctx context.Context) (int, error)
}

type Service struct {
	repo    repository.FlightRepository
	crew    repository.CrewRepository
	checker *schedule.Checker
	suggest *schedule.Suggester
	routes  routeSource
	cache   flightsCache
	events  eventPublisher
	metrics *metrics.Registry

	flightTopic  string
	orderTopic   string
	cancelCutoff time.Duration

	now func() time.Time
}

func NewService(
	repo repository.FlightRepository,
	crew repository.CrewRepository,
	checker *schedule.Checker,
	suggest *schedule.Suggester,
	routes routeSource,
	cache flightsCache,
	events eventPublisher,
	reg *metrics.Registry,
	flightTopic, orderTopic string,
	cancelCutoff time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		crew:         crew,
		checker:      checker,
		suggest:      suggest,
		routes:       routes,
		cache:        cache,
		events:       events,
		metrics:      reg,
		flightTopic:  flightTopic,
		orderTopic:   orderTopic,
		cancelCutoff: cancelCutoff,
		now:          time.Now,
	}
}

var _ FlightUseCase = (*Service)(nil)

// List returns all flights, served from the redis cache when warm. Cache
// failures degrade to the store, never to an error.
func (s *Service) List(ctx context.Context) ([]domain.Flight, error) {
	if cached, err := s.cache.GetFlights(ctx); err != nil {
		logging.Warn("flights cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	if err := s.cache.SetFlights(ctx, flights); err != nil {
		logging.Warn("flights cache write failed", "error", err)
	}
	return flights, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// SeatMap returns the flight's ticket grid with per-seat availability and
// price, for seat-picker clients.
func (s *Service) SeatMap(ctx context.Context, flightID int64) ([]domain.Ticket, error) {
	if _, err := s.repo.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.repo.TicketsByFlight(ctx, flightID)
}

// CheckAvailability runs both checkers for the requested window and, when
// they fail, asks the suggestion engine for the earliest feasible instant.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	route, err := s.routes.Route(ctx, req.Origin, req.Destination)
	if err != nil {
		return nil, err
	}
	if !req.DepartureTime.After(s.now()) {
		return nil, domain.Validationf("departure time must be in the future")
	}

	window := schedule.NewInterval(req.DepartureTime, route.Duration)
	sreq := s.requirement(*route, req.Pilots, req.Attendants)

	avail, err := s.checker.Evaluate(ctx, window, sreq)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if avail.OK() {
		return &AvailabilityResult{Available: true, Aircraft: avail.Feasible, Crew: avail.Crew}, nil
	}

	s.metrics.CreationsBlocked.Inc()
	suggested, err := s.suggest.EarliestSlot(ctx, req.DepartureTime, route.Duration, sreq)
	if err != nil {
		return nil, fmt.Errorf("availability suggestion failed: %w", err)
	}
	return &AvailabilityResult{Available: false, SuggestedDeparture: suggested}, nil
}

// Schedule commits a flight: re-validates availability for the window,
// verifies the chosen crew against the qualifying pool and the aircraft's
// required composition, then persists flight, assignments and tickets in
// one transaction.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	route, err := s.routes.Route(ctx, req.Origin, req.Destination)
	if err != nil {
		return nil, err
	}
	if !req.DepartureTime.After(s.now()) {
		return nil, domain.Validationf("departure time must be in the future")
	}
	if req.RegularFareCents <= 0 {
		return nil, domain.Validationf("regular fare must be positive")
	}
	firstFare := req.FirstFareCents
	if firstFare == 0 {
		firstFare = 2 * req.RegularFareCents
	}

	window := schedule.NewInterval(req.DepartureTime, route.Duration)
	sreq := s.requirement(*route, 0, 0)

	avail, err := s.checker.Evaluate(ctx, window, sreq)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if !avail.OK() {
		s.metrics.CreationsBlocked.Inc()
		suggested, err := s.suggest.EarliestSlot(ctx, req.DepartureTime, route.Duration, sreq)
		if err != nil {
			return nil, fmt.Errorf("availability suggestion failed: %w", err)
		}
		return &ScheduleResult{Blocked: &AvailabilityResult{Available: false, SuggestedDeparture: suggested}}, nil
	}

	pilots, attendants, err := s.verifyCrew(ctx, req.CrewIDs, avail.Crew, route.Type() == domain.FlightTypeLong)
	if err != nil {
		return nil, err
	}
	aircraft := pickAircraft(avail.Feasible, domain.CrewComposition{Pilots: pilots, Attendants: attendants})
	if aircraft == nil {
		return nil, domain.Validationf("crew selection (%d pilots, %d attendants) matches no available aircraft", pilots, attendants)
	}

	flight := &domain.Flight{
		Origin:        route.Origin,
		Destination:   route.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.DepartureTime.Add(route.Duration),
		Status:        domain.FlightStatusActive,
		Type:          route.Type(),
		AircraftID:    aircraft.ID,
	}
	if err := s.repo.CreateScheduled(ctx, flight, req.CrewIDs, req.RegularFareCents, firstFare); err != nil {
		return nil, err
	}
	s.metrics.FlightsScheduled.Inc()

	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logging.Warn("flights cache invalidation failed", "error", err)
	}
	s.publishFlightEvent(ctx, kafka.EventFlightScheduled, flight)

	logging.Info("flight scheduled",
		"flight_id", flight.ID,
		"origin", flight.Origin,
		"destination", flight.Destination,
		"departure", flight.DepartureTime,
		"aircraft_id", flight.AircraftID,
	)
	return &ScheduleResult{Flight: flight}, nil
}

// Cancel withdraws a scheduled flight. Allowed only while the departure is
// at least the configured cutoff away; riders' active orders become system
// cancellations with nothing charged.
func (s *Service) Cancel(ctx context.Context, flightID int64) error {
	flight, err := s.repo.GetByID(ctx, flightID)
	if err != nil {
		return err
	}
	if flight.Status != domain.FlightStatusActive && flight.Status != domain.FlightStatusFull {
		return domain.Validationf("flight %d is %s and cannot be cancelled", flightID, flight.Status)
	}
	if flight.DepartureTime.Before(s.now().Add(s.cancelCutoff)) {
		return domain.Validationf("flight %d departs within %s and can no longer be cancelled", flightID, s.cancelCutoff)
	}

	cancelled, err := s.repo.Cancel(ctx, flightID)
	if err != nil {
		return err
	}

	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logging.Warn("flights cache invalidation failed", "error", err)
	}
	flight.Status = domain.FlightStatusCanceled
	s.publishFlightEvent(ctx, kafka.EventFlightCancelled, flight)
	for i := range cancelled {
		s.publishOrderEvent(ctx, kafka.EventOrderCancelled, &cancelled[i])
	}

	logging.Info("flight cancelled", "flight_id", flightID, "orders_cancelled", len(cancelled))
	return nil
}

// CompleteDeparted marks departed flights Completed and completes their
// active orders. Run periodically by the worker.
func (s *Service) CompleteDeparted(ctx context.Context) (int, error) {
	n, err := s.repo.CompleteDeparted(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			logging.Warn("flights cache invalidation failed", "error", err)
		}
		logging.Info("departed flights completed", "count", n)
	}
	return n, nil
}

func (s *Service) requirement(route domain.Route, pilots, attendants int) schedule.Requirement {
	req := schedule.Requirement{Origin: route.Origin}
	if route.Type() == domain.FlightTypeLong {
		req.Size = domain.AircraftSizeBig
		req.LongHaul = true
	}
	if pilots > 0 || attendants > 0 {
		req.Crew = &domain.CrewComposition{Pilots: pilots, Attendants: attendants}
	}
	return req
}

// verifyCrew checks that every chosen id exists, qualifies for the window
// (is in the pool the checker produced) and, for long routes, carries the
// training flag. Returns the role counts of the selection.
func (s *Service) verifyCrew(ctx context.Context, crewIDs []int64, pool schedule.CrewPool, longHaul bool) (pilots, attendants int, err error) {
	if len(crewIDs) == 0 {
		return 0, 0, domain.Validationf("at least one crew member is required")
	}

	members, err := s.crew.GetByIDs(ctx, crewIDs)
	if err != nil {
		return 0, 0, err
	}
	if len(members) != len(crewIDs) {
		return 0, 0, domain.ErrNotFound
	}

	qualified := make(map[int64]bool, len(pool.Pilots)+len(pool.Attendants))
	for _, m := range pool.Pilots {
		qualified[m.ID] = true
	}
	for _, m := range pool.Attendants {
		qualified[m.ID] = true
	}

	for _, m := range members {
		if longHaul && !m.LongHaulTrained {
			return 0, 0, domain.Validationf("crew member %d lacks long-haul training", m.ID)
		}
		if !qualified[m.ID] {
			return 0, 0, domain.Validationf("crew member %d is not available for this window", m.ID)
		}
		if m.Role == domain.CrewRolePilot {
			pilots++
		} else {
			attendants++
		}
	}
	return pilots, attendants, nil
}

// pickAircraft returns the first feasible aircraft whose required crew
// composition exactly matches the selection.
func pickAircraft(feasible []domain.Aircraft, selected domain.CrewComposition) *domain.Aircraft {
	for i := range feasible {
		if domain.CompositionForSize(feasible[i].Size) == selected {
			return &feasible[i]
		}
	}
	return nil
}

func (s *Service) publishFlightEvent(ctx context.Context, eventType string, f *domain.Flight) {
	event := kafka.FlightEvent{
		Type:          eventType,
		FlightID:      f.ID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Status:        string(f.Status),
		OccurredAt:    s.now(),
	}
	if err := s.events.Publish(ctx, s.flightTopic, strconv.FormatInt(f.ID, 10), event); err != nil {
		logging.Warn("failed to publish flight event", "type", eventType, "flight_id", f.ID, "error", err)
	}
}

func (s *Service) publishOrderEvent(ctx context.Context, eventType string, o *domain.Order) {
	event := kafka.OrderEvent{
		Type:       eventType,
		Reference:  o.Reference,
		FlightID:   o.FlightID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		BuyerKind:  string(o.Buyer.Kind),
		BuyerEmail: o.Buyer.Email,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, s.orderTopic, o.Reference, event); err != nil {
		logging.Warn("failed to publish order event", "type", eventType, "reference", o.Reference, "error", err)
	}
}
