package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/schedule"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	TicketsByFlight(ctx context.Context, flightID int64) ([]domain.Ticket, error)

	Route(ctx context.Context, origin, destination string) (*domain.Route, error)
	Routes(ctx context.Context) ([]domain.Route, error)

	// Timeline Index read path (schedule.TimelineSource).
	AircraftLegs(ctx context.Context, aircraftID int64) ([]schedule.Leg, error)
	CrewLegs(ctx context.Context, crewID int64) ([]schedule.Leg, error)

	// CreateScheduled persists the flight, its crew assignments and one
	// ticket per seat of the aircraft as a single transaction. Overlap
	// guards inside the transaction reject assignments that would breach
	// the no-double-booking invariants.
	CreateScheduled(ctx context.Context, f *domain.Flight, crewIDs []int64, regularFareCents, firstFareCents int64) error

	// MarkFullIfSoldOut flips an Active flight to Full once no available
	// ticket remains. ReopenIfSeatsFreed is the inverse after a
	// cancellation returns seats. Both report whether a transition
	// happened.
	MarkFullIfSoldOut(ctx context.Context, flightID int64) (bool, error)
	ReopenIfSeatsFreed(ctx context.Context, flightID int64) (bool, error)

	// Cancel marks the flight Canceled, turns its Active orders into
	// SystemCancellation with zeroed totals, and leaves the flight's
	// tickets unavailable. Returns the cancelled orders.
	Cancel(ctx context.Context, flightID int64) ([]domain.Order, error)

	// CompleteDeparted marks Active/Full flights that have departed by now
	// as Completed, and completes their Active orders.
	CompleteDeparted(ctx context.Context, now time.Time) (int, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, origin, destination, departure_time, arrival_time, status, type, aircraft_id, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Origin, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Status, &f.Type, &f.AircraftID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) TicketsByFlight(ctx context.Context, flightID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.flight_id, t.seat_id, s.class, s.row_num, s.col, t.price_cents, t.available
		FROM tickets t
		JOIN seats s ON s.id = t.seat_id
		WHERE t.flight_id=$1
		ORDER BY s.class, s.row_num, s.col`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.FlightID, &t.SeatID, &t.Class, &t.Row, &t.Column, &t.PriceCents, &t.Available); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PGFlightRepository) Route(ctx context.Context, origin, destination string) (*domain.Route, error) {
	row := r.db.QueryRow(ctx, `SELECT origin, destination, duration_minutes FROM flight_routes WHERE origin=$1 AND destination=$2`, origin, destination)
	var rt domain.Route
	var minutes int
	if err := row.Scan(&rt.Origin, &rt.Destination, &minutes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rt.Duration = time.Duration(minutes) * time.Minute
	return &rt, nil
}

func (r *PGFlightRepository) Routes(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT origin, destination, duration_minutes FROM flight_routes ORDER BY origin, destination`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]domain.Route, 0)
	for rows.Next() {
		var rt domain.Route
		var minutes int
		if err := rows.Scan(&rt.Origin, &rt.Destination, &minutes); err != nil {
			return nil, err
		}
		rt.Duration = time.Duration(minutes) * time.Minute
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r *PGFlightRepository) AircraftLegs(ctx context.Context, aircraftID int64) ([]schedule.Leg, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, origin, destination, status, departure_time, arrival_time
		FROM flights
		WHERE aircraft_id=$1 AND status <> 'Canceled'
		ORDER BY departure_time`, aircraftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLegs(rows)
}

func (r *PGFlightRepository) CrewLegs(ctx context.Context, crewID int64) ([]schedule.Leg, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.origin, f.destination, f.status, f.departure_time, f.arrival_time
		FROM flights f
		JOIN crew_assignments ca ON ca.flight_id = f.id
		WHERE ca.crew_id=$1 AND f.status <> 'Canceled'
		ORDER BY f.departure_time`, crewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLegs(rows)
}

func scanLegs(rows pgx.Rows) ([]schedule.Leg, error) {
	legs := make([]schedule.Leg, 0)
	for rows.Next() {
		var l schedule.Leg
		if err := rows.Scan(&l.FlightID, &l.Origin, &l.Destination, &l.Status, &l.Start, &l.End); err != nil {
			return nil, err
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

func (r *PGFlightRepository) CreateScheduled(ctx context.Context, f *domain.Flight, crewIDs []int64, regularFareCents, firstFareCents int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// final overlap guard on the aircraft, inside the transaction
	var busy bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM flights
			WHERE aircraft_id=$1 AND status <> 'Canceled'
			  AND departure_time < $3 AND $2 < arrival_time
		)`, f.AircraftID, f.DepartureTime, f.ArrivalTime).Scan(&busy); err != nil {
		return err
	}
	if busy {
		return domain.Integrityf("aircraft %d already assigned during [%s, %s)", f.AircraftID, f.DepartureTime, f.ArrivalTime)
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO flights (origin, destination, departure_time, arrival_time, status, type, aircraft_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime, f.Status, f.Type, f.AircraftID).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return err
	}

	for _, crewID := range crewIDs {
		var overlapping bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM crew_assignments ca
				JOIN flights o ON o.id = ca.flight_id
				WHERE ca.crew_id=$1 AND o.status <> 'Canceled'
				  AND o.departure_time < $3 AND $2 < o.arrival_time
			)`, crewID, f.DepartureTime, f.ArrivalTime).Scan(&overlapping); err != nil {
			return err
		}
		if overlapping {
			return domain.Integrityf("crew member %d already assigned during [%s, %s)", crewID, f.DepartureTime, f.ArrivalTime)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO crew_assignments (crew_id, flight_id) VALUES ($1, $2)`, crewID, f.ID); err != nil {
			return err
		}
	}

	// one ticket per seat of the assigned aircraft, all available
	res, err := tx.Exec(ctx, `
		INSERT INTO tickets (flight_id, seat_id, price_cents, available)
		SELECT $1, s.id, CASE WHEN s.class='First' THEN $3::bigint ELSE $2::bigint END, true
		FROM seats s
		WHERE s.aircraft_id=$4`, f.ID, regularFareCents, firstFareCents, f.AircraftID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.Integrityf("aircraft %d has no seats defined", f.AircraftID)
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) MarkFullIfSoldOut(ctx context.Context, flightID int64) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE flights SET status='Full', updated_at=now()
		WHERE id=$1 AND status='Active'
		  AND NOT EXISTS (SELECT 1 FROM tickets WHERE flight_id=$1 AND available)`, flightID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGFlightRepository) ReopenIfSeatsFreed(ctx context.Context, flightID int64) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE flights SET status='Active', updated_at=now()
		WHERE id=$1 AND status='Full'
		  AND EXISTS (SELECT 1 FROM tickets WHERE flight_id=$1 AND available)`, flightID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGFlightRepository) Cancel(ctx context.Context, flightID int64) ([]domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE flights SET status='Canceled', updated_at=now()
		WHERE id=$1 AND status IN ('Active','Full')`, flightID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	rows, err := tx.Query(ctx, `
		UPDATE orders SET status='SystemCancellation', total_cents=0, fee_cents=0, updated_at=now()
		WHERE status='Active' AND flight_id=$1
		RETURNING id, reference, flight_id, status, total_cents, fee_cents, buyer_kind, buyer_email, purchased_at, created_at, updated_at`, flightID)
	if err != nil {
		return nil, err
	}
	cancelled, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	// a canceled flight's seats are not re-sellable; keep order links for audit
	if _, err := tx.Exec(ctx, `UPDATE tickets SET available=false WHERE flight_id=$1`, flightID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (r *PGFlightRepository) CompleteDeparted(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE flights SET status='Completed', updated_at=now()
		WHERE status IN ('Active','Full') AND departure_time <= $1
		RETURNING id`, now)
	if err != nil {
		return 0, err
	}
	var departed []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		departed = append(departed, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(departed) == 0 {
		return 0, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status='Completed', updated_at=now()
		WHERE status='Active' AND flight_id=ANY($1)`, departed); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(departed), nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
