package fleet

import (
	"context"
	"testing"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFleetRepo struct {
	created *domain.Aircraft
	seats   []domain.Seat
}

func (f *fakeFleetRepo) List(ctx context.Context) ([]domain.Aircraft, error) {
	if f.created == nil {
		return nil, nil
	}
	return []domain.Aircraft{*f.created}, nil
}

func (f *fakeFleetRepo) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeFleetRepo) Aircraft(ctx context.Context, size domain.AircraftSize) ([]domain.Aircraft, error) {
	return nil, nil
}

func (f *fakeFleetRepo) SeatsByAircraft(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	return f.seats, nil
}

func (f *fakeFleetRepo) CreateAircraft(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) error {
	aircraft.ID = 7
	for i := range seats {
		seats[i].ID = int64(i + 1)
		seats[i].AircraftID = aircraft.ID
	}
	f.created = aircraft
	f.seats = seats
	return nil
}

type fakeCrewRepo struct {
	members []domain.CrewMember
}

func (f *fakeCrewRepo) CrewByRole(ctx context.Context, role domain.CrewRole, trainedOnly bool) ([]domain.CrewMember, error) {
	return f.members, nil
}

func (f *fakeCrewRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.CrewMember, error) {
	return f.members, nil
}

func (f *fakeCrewRepo) Create(ctx context.Context, member *domain.CrewMember) error {
	member.ID = int64(len(f.members) + 1)
	f.members = append(f.members, *member)
	return nil
}

func TestRegisterAircraftBigLayout(t *testing.T) {
	repo := &fakeFleetRepo{}
	svc := NewService(repo, &fakeCrewRepo{})

	aircraft, seats, err := svc.RegisterAircraft(context.Background(), RegisterAircraftRequest{
		Size:         domain.AircraftSizeBig,
		Manufacturer: "Boeing",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), aircraft.ID)

	// First cabin 2 rows of A..B ahead of a Regular cabin 5 rows of A..D
	require.Len(t, seats, 24)
	var first, regular []domain.Seat
	for _, s := range seats {
		assert.Equal(t, aircraft.ID, s.AircraftID)
		if s.Class == domain.CabinClassFirst {
			first = append(first, s)
		} else {
			regular = append(regular, s)
		}
	}
	require.Len(t, first, 4)
	require.Len(t, regular, 20)
	assert.Equal(t, domain.Seat{ID: 1, AircraftID: 7, Class: domain.CabinClassFirst, Row: 1, Column: "A"}, first[0])
	assert.Equal(t, 2, first[3].Row)
	assert.Equal(t, "B", first[3].Column)
	assert.Equal(t, 5, regular[19].Row)
	assert.Equal(t, "D", regular[19].Column)
}

func TestRegisterAircraftSmallLayout(t *testing.T) {
	repo := &fakeFleetRepo{}
	svc := NewService(repo, &fakeCrewRepo{})

	_, seats, err := svc.RegisterAircraft(context.Background(), RegisterAircraftRequest{Size: domain.AircraftSizeSmall})
	require.NoError(t, err)

	// no First cabin on a small aircraft
	require.Len(t, seats, 20)
	for _, s := range seats {
		assert.Equal(t, domain.CabinClassRegular, s.Class)
	}
	assert.Equal(t, 1, seats[0].Row)
	assert.Equal(t, "A", seats[0].Column)
	assert.Equal(t, "D", seats[3].Column)
}

func TestRegisterAircraftUnknownSize(t *testing.T) {
	repo := &fakeFleetRepo{}
	svc := NewService(repo, &fakeCrewRepo{})

	_, _, err := svc.RegisterAircraft(context.Background(), RegisterAircraftRequest{Size: "Medium"})
	assert.True(t, domain.IsValidation(err))
	assert.Nil(t, repo.created)
}

func TestRegisterCrew(t *testing.T) {
	crew := &fakeCrewRepo{}
	svc := NewService(&fakeFleetRepo{}, crew)

	member, err := svc.RegisterCrew(context.Background(), RegisterCrewRequest{
		FullName:        "Dana Peretz",
		Role:            domain.CrewRoleAttendant,
		LongHaulTrained: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), member.ID)
	assert.True(t, member.LongHaulTrained)
}

func TestRegisterCrewValidation(t *testing.T) {
	crew := &fakeCrewRepo{}
	svc := NewService(&fakeFleetRepo{}, crew)

	_, err := svc.RegisterCrew(context.Background(), RegisterCrewRequest{Role: domain.CrewRolePilot})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.RegisterCrew(context.Background(), RegisterCrewRequest{FullName: "Omer Levi", Role: "Navigator"})
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, crew.members)
}
