package flights

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/Domenick1991/airscheduling/internal/repository"
	"github.com/Domenick1991/airscheduling/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testMetrics = metrics.NewRegistry()

// Mocks

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) TicketsByFlight(ctx context.Context, flightID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockFlightRepository) Route(ctx context.Context, origin, destination string) (*domain.Route, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockFlightRepository) Routes(ctx context.Context) ([]domain.Route, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Route), args.Error(1)
}

func (m *MockFlightRepository) AircraftLegs(ctx context.Context, aircraftID int64) ([]schedule.Leg, error) {
	args := m.Called(ctx, aircraftID)
	return args.Get(0).([]schedule.Leg), args.Error(1)
}

func (m *MockFlightRepository) CrewLegs(ctx context.Context, crewID int64) ([]schedule.Leg, error) {
	args := m.Called(ctx, crewID)
	return args.Get(0).([]schedule.Leg), args.Error(1)
}

func (m *MockFlightRepository) CreateScheduled(ctx context.Context, f *domain.Flight, crewIDs []int64, regularFareCents, firstFareCents int64) error {
	args := m.Called(ctx, f, crewIDs, regularFareCents, firstFareCents)
	return args.Error(0)
}

func (m *MockFlightRepository) MarkFullIfSoldOut(ctx context.Context, flightID int64) (bool, error) {
	args := m.Called(ctx, flightID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) ReopenIfSeatsFreed(ctx context.Context, flightID int64) (bool, error) {
	args := m.Called(ctx, flightID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) Cancel(ctx context.Context, flightID int64) ([]domain.Order, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockFlightRepository) CompleteDeparted(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

var _ repository.FlightRepository = (*MockFlightRepository)(nil)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

// fakeWorld backs the checker and suggester with in-memory fleet, roster
// and timelines, and doubles as the crew repository.
type fakeWorld struct {
	fleet        []domain.Aircraft
	crew         []domain.CrewMember
	aircraftLegs map[int64][]schedule.Leg
	crewLegs     map[int64][]schedule.Leg
	routes       map[string]domain.Route
}

func (w *fakeWorld) Aircraft(ctx context.Context, size domain.AircraftSize) ([]domain.Aircraft, error) {
	var out []domain.Aircraft
	for _, a := range w.fleet {
		if size == "" || a.Size == size {
			out = append(out, a)
		}
	}
	return out, nil
}

func (w *fakeWorld) CrewByRole(ctx context.Context, role domain.CrewRole, trainedOnly bool) ([]domain.CrewMember, error) {
	var out []domain.CrewMember
	for _, m := range w.crew {
		if m.Role != role || (trainedOnly && !m.LongHaulTrained) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (w *fakeWorld) GetByIDs(ctx context.Context, ids []int64) ([]domain.CrewMember, error) {
	var out []domain.CrewMember
	for _, id := range ids {
		for _, m := range w.crew {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (w *fakeWorld) Create(ctx context.Context, member *domain.CrewMember) error {
	member.ID = int64(len(w.crew) + 1)
	w.crew = append(w.crew, *member)
	return nil
}

func (w *fakeWorld) AircraftLegs(ctx context.Context, aircraftID int64) ([]schedule.Leg, error) {
	return w.aircraftLegs[aircraftID], nil
}

func (w *fakeWorld) CrewLegs(ctx context.Context, crewID int64) ([]schedule.Leg, error) {
	return w.crewLegs[crewID], nil
}

func (w *fakeWorld) Route(ctx context.Context, origin, destination string) (*domain.Route, error) {
	rt, ok := w.routes[origin+"|"+destination]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rt, nil
}

var clock = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

// smallWorld has one small aircraft and exactly the crew a small aircraft
// needs, all idle.
func smallWorld() *fakeWorld {
	w := &fakeWorld{
		fleet:        []domain.Aircraft{{ID: 1, Size: domain.AircraftSizeSmall}},
		aircraftLegs: map[int64][]schedule.Leg{},
		crewLegs:     map[int64][]schedule.Leg{},
		routes: map[string]domain.Route{
			"TLV|ATH": {Origin: "TLV", Destination: "ATH", Duration: 120 * time.Minute},
			"TLV|JFK": {Origin: "TLV", Destination: "JFK", Duration: 660 * time.Minute},
		},
	}
	for i := int64(1); i <= 2; i++ {
		w.crew = append(w.crew, domain.CrewMember{ID: i, Role: domain.CrewRolePilot})
	}
	for i := int64(101); i <= 103; i++ {
		w.crew = append(w.crew, domain.CrewMember{ID: i, Role: domain.CrewRoleAttendant})
	}
	return w
}

func newTestService(world *fakeWorld, repo *MockFlightRepository, cache *MockCache, producer *MockProducer) *Service {
	checker := schedule.NewChecker(world, world, world)
	return &Service{
		repo:         repo,
		crew:         world,
		checker:      checker,
		suggest:      schedule.NewSuggester(checker, world, world, world),
		routes:       world,
		cache:        cache,
		events:       producer,
		metrics:      testMetrics,
		flightTopic:  "flight_events",
		orderTopic:   "order_events",
		cancelCutoff: 72 * time.Hour,
		now:          func() time.Time { return clock },
	}
}

func TestCheckAvailability_ImmediateSuccess(t *testing.T) {
	world := smallWorld()
	svc := newTestService(world, &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	res, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		Origin:        "TLV",
		Destination:   "ATH",
		DepartureTime: clock.Add(24 * time.Hour),
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Nil(t, res.SuggestedDeparture)
	assert.Len(t, res.Aircraft, 1)
	assert.Len(t, res.Crew.Pilots, 2)
	assert.Len(t, res.Crew.Attendants, 3)
}

func TestCheckAvailability_BlockedWithSuggestion(t *testing.T) {
	world := smallWorld()
	dep := clock.Add(24 * time.Hour)
	freed := dep.Add(5 * time.Hour)
	// the only aircraft is mid-air across the requested window and lands
	// back at the origin, together with the crew
	busy := []schedule.Leg{{
		FlightID:    7,
		Origin:      "ATH",
		Destination: "TLV",
		Status:      domain.FlightStatusActive,
		Interval:    schedule.Interval{Start: dep.Add(-time.Hour), End: freed},
	}}
	world.aircraftLegs[1] = busy

	svc := newTestService(world, &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	res, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		Origin:        "TLV",
		Destination:   "ATH",
		DepartureTime: dep,
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	require.NotNil(t, res.SuggestedDeparture)
	assert.True(t, res.SuggestedDeparture.Equal(freed))
}

func TestCheckAvailability_UnknownRoute(t *testing.T) {
	svc := newTestService(smallWorld(), &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	_, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		Origin:        "TLV",
		Destination:   "XXX",
		DepartureTime: clock.Add(24 * time.Hour),
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckAvailability_PastDeparture(t *testing.T) {
	svc := newTestService(smallWorld(), &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	_, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		Origin:        "TLV",
		Destination:   "ATH",
		DepartureTime: clock.Add(-time.Hour),
	})

	assert.True(t, domain.IsValidation(err))
}

func TestSchedule_Success(t *testing.T) {
	world := smallWorld()
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	svc := newTestService(world, repo, cache, producer)

	ctx := context.Background()
	dep := clock.Add(24 * time.Hour)
	crewIDs := []int64{1, 2, 101, 102, 103}

	repo.On("CreateScheduled", ctx, mock.AnythingOfType("*domain.Flight"), crewIDs, int64(10000), int64(20000)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Flight).ID = 42
		}).Return(nil).Once()
	cache.On("InvalidateFlights", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "flight_events", "42", mock.Anything).Return(nil).Once()

	res, err := svc.Schedule(ctx, ScheduleRequest{
		Origin:           "TLV",
		Destination:      "ATH",
		DepartureTime:    dep,
		CrewIDs:          crewIDs,
		RegularFareCents: 10000,
		// first fare omitted, defaults to twice the regular fare
	})

	require.NoError(t, err)
	require.NotNil(t, res.Flight)
	assert.Nil(t, res.Blocked)
	assert.Equal(t, int64(42), res.Flight.ID)
	assert.Equal(t, int64(1), res.Flight.AircraftID)
	assert.Equal(t, domain.FlightStatusActive, res.Flight.Status)
	assert.Equal(t, domain.FlightTypeShort, res.Flight.Type)
	assert.True(t, res.Flight.ArrivalTime.Equal(dep.Add(120*time.Minute)))

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestSchedule_Blocked(t *testing.T) {
	world := smallWorld()
	// no attendants at all: nothing to sweep to, no future availability
	world.crew = world.crew[:2]
	repo := &MockFlightRepository{}
	svc := newTestService(world, repo, &MockCache{}, &MockProducer{})

	res, err := svc.Schedule(context.Background(), ScheduleRequest{
		Origin:           "TLV",
		Destination:      "ATH",
		DepartureTime:    clock.Add(24 * time.Hour),
		CrewIDs:          []int64{1, 2},
		RegularFareCents: 10000,
	})

	require.NoError(t, err)
	assert.Nil(t, res.Flight)
	require.NotNil(t, res.Blocked)
	assert.False(t, res.Blocked.Available)
	assert.Nil(t, res.Blocked.SuggestedDeparture)
	repo.AssertNotCalled(t, "CreateScheduled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedule_UnknownCrew(t *testing.T) {
	svc := newTestService(smallWorld(), &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	_, err := svc.Schedule(context.Background(), ScheduleRequest{
		Origin:           "TLV",
		Destination:      "ATH",
		DepartureTime:    clock.Add(24 * time.Hour),
		CrewIDs:          []int64{1, 2, 101, 102, 999},
		RegularFareCents: 10000,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSchedule_CrewNotAvailable(t *testing.T) {
	world := smallWorld()
	dep := clock.Add(24 * time.Hour)
	// a spare attendant keeps the pool sufficient; the failure must come
	// from the manager's selection, not from the availability check
	world.crew = append(world.crew, domain.CrewMember{ID: 104, Role: domain.CrewRoleAttendant})
	// attendant 103 is stuck at ATH when the flight leaves TLV
	world.crewLegs[103] = []schedule.Leg{{
		FlightID:    5,
		Origin:      "TLV",
		Destination: "ATH",
		Status:      domain.FlightStatusCompleted,
		Interval:    schedule.Interval{Start: dep.Add(-6 * time.Hour), End: dep.Add(-4 * time.Hour)},
	}}
	svc := newTestService(world, &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	_, err := svc.Schedule(context.Background(), ScheduleRequest{
		Origin:           "TLV",
		Destination:      "ATH",
		DepartureTime:    dep,
		CrewIDs:          []int64{1, 2, 101, 102, 103},
		RegularFareCents: 10000,
	})

	assert.True(t, domain.IsValidation(err))
}

func TestSchedule_CompositionMismatch(t *testing.T) {
	svc := newTestService(smallWorld(), &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	// a small aircraft needs 2 pilots and 3 attendants, not 2 and 2
	_, err := svc.Schedule(context.Background(), ScheduleRequest{
		Origin:           "TLV",
		Destination:      "ATH",
		DepartureTime:    clock.Add(24 * time.Hour),
		CrewIDs:          []int64{1, 2, 101, 102},
		RegularFareCents: 10000,
	})

	assert.True(t, domain.IsValidation(err))
}

func TestSchedule_LongRouteNeedsTraining(t *testing.T) {
	world := smallWorld()
	world.fleet = append(world.fleet, domain.Aircraft{ID: 2, Size: domain.AircraftSizeBig})
	// untrained roster cannot serve a long route and never will
	svc := newTestService(world, &MockFlightRepository{}, &MockCache{}, &MockProducer{})

	res, err := svc.Schedule(context.Background(), ScheduleRequest{
		Origin:           "TLV",
		Destination:      "JFK",
		DepartureTime:    clock.Add(24 * time.Hour),
		CrewIDs:          []int64{1, 2, 101, 102, 103},
		RegularFareCents: 10000,
	})

	require.NoError(t, err)
	require.NotNil(t, res.Blocked)
	assert.Nil(t, res.Blocked.SuggestedDeparture)
}

func TestCancel_Success(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	svc := newTestService(smallWorld(), repo, cache, producer)

	ctx := context.Background()
	flight := &domain.Flight{
		ID:            9,
		Origin:        "TLV",
		Destination:   "ATH",
		DepartureTime: clock.Add(96 * time.Hour),
		Status:        domain.FlightStatusActive,
	}
	cancelled := []domain.Order{
		{ID: 1, Reference: "ref-1", FlightID: 9, Status: domain.OrderStatusSystemCancelled, Buyer: domain.GuestBuyer("a@example.com")},
	}

	repo.On("GetByID", ctx, int64(9)).Return(flight, nil).Once()
	repo.On("Cancel", ctx, int64(9)).Return(cancelled, nil).Once()
	cache.On("InvalidateFlights", ctx).Return(nil).Once()
	producer.On("Publish", ctx, "flight_events", "9", mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "order_events", "ref-1", mock.Anything).Return(nil).Once()

	err := svc.Cancel(ctx, 9)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCancel_TooCloseToDeparture(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := newTestService(smallWorld(), repo, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	flight := &domain.Flight{ID: 9, DepartureTime: clock.Add(24 * time.Hour), Status: domain.FlightStatusActive}
	repo.On("GetByID", ctx, int64(9)).Return(flight, nil).Once()

	err := svc.Cancel(ctx, 9)

	assert.True(t, domain.IsValidation(err))
	repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestCancel_AlreadyCompleted(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := newTestService(smallWorld(), repo, &MockCache{}, &MockProducer{})

	ctx := context.Background()
	flight := &domain.Flight{ID: 9, DepartureTime: clock.Add(96 * time.Hour), Status: domain.FlightStatusCompleted}
	repo.On("GetByID", ctx, int64(9)).Return(flight, nil).Once()

	err := svc.Cancel(ctx, 9)

	assert.True(t, domain.IsValidation(err))
}

func TestList_CacheHit(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := newTestService(smallWorld(), repo, cache, &MockProducer{})

	ctx := context.Background()
	cached := []domain.Flight{{ID: 1}, {ID: 2}}
	cache.On("GetFlights", ctx).Return(cached, nil).Once()

	flights, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, cached, flights)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestList_CacheMiss(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := newTestService(smallWorld(), repo, cache, &MockProducer{})

	ctx := context.Background()
	stored := []domain.Flight{{ID: 3}}
	cache.On("GetFlights", ctx).Return(nil, nil).Once()
	repo.On("List", ctx).Return(stored, nil).Once()
	cache.On("SetFlights", ctx, stored).Return(nil).Once()

	flights, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, stored, flights)
	cache.AssertExpectations(t)
}

func TestCompleteDeparted(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := newTestService(smallWorld(), repo, cache, &MockProducer{})

	ctx := context.Background()
	repo.On("CompleteDeparted", ctx, clock).Return(3, nil).Once()
	cache.On("InvalidateFlights", ctx).Return(nil).Once()

	n, err := svc.CompleteDeparted(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	cache.AssertExpectations(t)
}
