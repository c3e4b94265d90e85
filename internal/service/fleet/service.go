// Package fleet registers aircraft and crew members. An aircraft is
// created together with its full cabin layout, derived from the size; the
// seat grid is never edited afterwards.
package fleet

import (
	"context"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/repository"
)

type RegisterAircraftRequest struct {
	Size         domain.AircraftSize
	Manufacturer string
}

type RegisterCrewRequest struct {
	FullName        string
	Role            domain.CrewRole
	LongHaulTrained bool
}

// FleetUseCase is the registration surface consumed by the HTTP layer.
type FleetUseCase interface {
	ListAircraft(ctx context.Context) ([]domain.Aircraft, error)
	RegisterAircraft(ctx context.Context, req RegisterAircraftRequest) (*domain.Aircraft, []domain.Seat, error)
	RegisterCrew(ctx context.Context, req RegisterCrewRequest) (*domain.CrewMember, error)
}

type Service struct {
	fleet repository.FleetRepository
	crew  repository.CrewRepository
}

func NewService(fleet repository.FleetRepository, crew repository.CrewRepository) *Service {
	return &Service{fleet: fleet, crew: crew}
}

func (s *Service) ListAircraft(ctx context.Context) ([]domain.Aircraft, error) {
	return s.fleet.List(ctx)
}

// RegisterAircraft persists a new aircraft with the seat grid its size
// dictates and returns both.
func (s *Service) RegisterAircraft(ctx context.Context, req RegisterAircraftRequest) (*domain.Aircraft, []domain.Seat, error) {
	if req.Size != domain.AircraftSizeBig && req.Size != domain.AircraftSizeSmall {
		return nil, nil, domain.Validationf("unknown aircraft size %q", req.Size)
	}

	aircraft := &domain.Aircraft{Size: req.Size, Manufacturer: req.Manufacturer}
	seats := domain.CabinLayout(req.Size)
	if err := s.fleet.CreateAircraft(ctx, aircraft, seats); err != nil {
		return nil, nil, err
	}

	logging.Info("aircraft registered",
		"aircraft_id", aircraft.ID,
		"size", aircraft.Size,
		"seats", len(seats),
	)
	return aircraft, seats, nil
}

func (s *Service) RegisterCrew(ctx context.Context, req RegisterCrewRequest) (*domain.CrewMember, error) {
	if req.FullName == "" {
		return nil, domain.Validationf("full name is required")
	}
	if req.Role != domain.CrewRolePilot && req.Role != domain.CrewRoleAttendant {
		return nil, domain.Validationf("unknown crew role %q", req.Role)
	}

	member := &domain.CrewMember{
		FullName:        req.FullName,
		Role:            req.Role,
		LongHaulTrained: req.LongHaulTrained,
	}
	if err := s.crew.Create(ctx, member); err != nil {
		return nil, err
	}

	logging.Info("crew member registered", "crew_id", member.ID, "role", member.Role)
	return member, nil
}

var _ FleetUseCase = (*Service)(nil)
