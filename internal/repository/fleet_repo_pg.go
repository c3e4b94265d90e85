package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FleetRepository interface {
	List(ctx context.Context) ([]domain.Aircraft, error)
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
	// Aircraft lists the fleet filtered by size; empty size means all.
	Aircraft(ctx context.Context, size domain.AircraftSize) ([]domain.Aircraft, error)
	SeatsByAircraft(ctx context.Context, aircraftID int64) ([]domain.Seat, error)
	// CreateAircraft persists the aircraft together with its seat grid in
	// one transaction, filling in the generated ids.
	CreateAircraft(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) error
}

type PGFleetRepository struct {
	db *pgxpool.Pool
}

func NewFleetRepository(db *pgxpool.Pool) FleetRepository {
	return &PGFleetRepository{db: db}
}

func (r *PGFleetRepository) List(ctx context.Context) ([]domain.Aircraft, error) {
	return r.Aircraft(ctx, "")
}

func (r *PGFleetRepository) Aircraft(ctx context.Context, size domain.AircraftSize) ([]domain.Aircraft, error) {
	query := `SELECT id, size, manufacturer, purchased_at FROM aircraft`
	args := []interface{}{}
	if size != "" {
		query += ` WHERE size=$1`
		args = append(args, size)
	}
	query += ` ORDER BY size DESC, manufacturer, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fleet := make([]domain.Aircraft, 0)
	for rows.Next() {
		var a domain.Aircraft
		if err := rows.Scan(&a.ID, &a.Size, &a.Manufacturer, &a.PurchasedAt); err != nil {
			return nil, err
		}
		fleet = append(fleet, a)
	}
	return fleet, rows.Err()
}

func (r *PGFleetRepository) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	row := r.db.QueryRow(ctx, `SELECT id, size, manufacturer, purchased_at FROM aircraft WHERE id=$1`, id)
	var a domain.Aircraft
	if err := row.Scan(&a.ID, &a.Size, &a.Manufacturer, &a.PurchasedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGFleetRepository) SeatsByAircraft(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, aircraft_id, class, row_num, col FROM seats WHERE aircraft_id=$1 ORDER BY class, row_num, col`, aircraftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.AircraftID, &s.Class, &s.Row, &s.Column); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *PGFleetRepository) CreateAircraft(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO aircraft (size, manufacturer) VALUES ($1, $2)
		RETURNING id, purchased_at`,
		aircraft.Size, aircraft.Manufacturer).Scan(&aircraft.ID, &aircraft.PurchasedAt); err != nil {
		return err
	}

	for i := range seats {
		s := &seats[i]
		s.AircraftID = aircraft.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO seats (aircraft_id, class, row_num, col) VALUES ($1, $2, $3, $4)
			RETURNING id`,
			s.AircraftID, s.Class, s.Row, s.Column).Scan(&s.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

var _ FleetRepository = (*PGFleetRepository)(nil)
