// Package inventory owns seat/ticket availability state. It is the only
// writer of ticket availability flags and ticket-order links.
package inventory

import (
	"context"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Manager performs atomic reserve-or-fail over a flight's ticket set.
// Contention is resolved by row-level locks: of two reservation attempts
// racing on a seat, exactly one observes it available.
type Manager struct {
	db         *pgxpool.Pool
	feePercent int64
}

func NewManager(db *pgxpool.Pool, feePercent int) *Manager {
	return &Manager{db: db, feePercent: int64(feePercent)}
}

// ticketRow is one locked ticket row as read inside the reservation
// transaction.
type ticketRow struct {
	ID         int64
	SeatID     int64
	PriceCents int64
	Available  bool
}

// reservationPlan is which tickets to claim and what they cost.
type reservationPlan struct {
	TicketIDs  []int64
	TotalCents int64
}

// planReservation checks the requested seats against the flight's locked
// ticket rows. A seat with no ticket row does not exist on the flight; a
// seat whose ticket is unavailable is a conflict, and every conflicting
// seat is reported together so the client re-selects once.
func planReservation(seatIDs []int64, rows []ticketRow) (*reservationPlan, error) {
	var taken []int64
	plan := &reservationPlan{}
	found := make(map[int64]bool, len(rows))
	for _, r := range rows {
		found[r.SeatID] = true
		if !r.Available {
			taken = append(taken, r.SeatID)
			continue
		}
		plan.TicketIDs = append(plan.TicketIDs, r.ID)
		plan.TotalCents += r.PriceCents
	}

	for _, seatID := range seatIDs {
		if !found[seatID] {
			return nil, domain.ErrNotFound
		}
	}
	if len(taken) > 0 {
		return nil, &domain.ConflictError{SeatIDs: taken}
	}
	return plan, nil
}

// cancellationFee rounds half-up to a cent.
func cancellationFee(totalCents, feePercent int64) int64 {
	return (totalCents*feePercent + 50) / 100
}

// Reserve atomically re-checks every requested seat, flips its ticket to
// unavailable, links it to a freshly inserted order row and fills in the
// order's id, total and cancellation fee. If any seat has become
// unavailable since the client's read, nothing changes and a
// ConflictError lists the lost seats.
func (m *Manager) Reserve(ctx context.Context, order *domain.Order, seatIDs []int64) error {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// lock the requested ticket rows; deterministic order avoids deadlock
	// between attempts locking overlapping seat sets
	rows, err := tx.Query(ctx, `
		SELECT id, seat_id, price_cents, available
		FROM tickets
		WHERE flight_id=$1 AND seat_id=ANY($2)
		ORDER BY id
		FOR UPDATE`, order.FlightID, seatIDs)
	if err != nil {
		return err
	}

	var locked []ticketRow
	for rows.Next() {
		var r ticketRow
		if err := rows.Scan(&r.ID, &r.SeatID, &r.PriceCents, &r.Available); err != nil {
			rows.Close()
			return err
		}
		locked = append(locked, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	plan, err := planReservation(seatIDs, locked)
	if err != nil {
		return err
	}

	order.Status = domain.OrderStatusActive
	order.TotalCents = plan.TotalCents
	// fee captured at purchase time; charged only on customer cancellation
	order.FeeCents = cancellationFee(plan.TotalCents, m.feePercent)

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (reference, flight_id, status, total_cents, fee_cents, buyer_kind, buyer_email, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, purchased_at, created_at, updated_at`,
		order.Reference, order.FlightID, order.Status, order.TotalCents, order.FeeCents, order.Buyer.Kind, order.Buyer.Email).
		Scan(&order.ID, &order.PurchasedAt, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	for _, ticketID := range plan.TicketIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO ticket_orders (ticket_id, order_id) VALUES ($1, $2)`, ticketID, order.ID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE tickets SET available=false WHERE id=ANY($1)`, plan.TicketIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Release undoes a committed reservation when its order is cancelled: the
// order moves to the cancellation status with the given final total, and
// each of its tickets becomes available again unless some other
// non-canceled order still references it. Links are kept for history.
func (m *Manager) Release(ctx context.Context, orderID int64, status domain.OrderStatus, finalTotalCents int64) error {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, total_cents=$3, updated_at=now()
		WHERE id=$1 AND status='Active'`, orderID, status, finalTotalCents)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.Validationf("order %d is no longer active", orderID)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tickets SET available = NOT EXISTS (
			SELECT 1 FROM ticket_orders tor
			JOIN orders o ON o.id = tor.order_id
			WHERE tor.ticket_id = tickets.id AND o.status IN ('Active','Completed')
		)
		WHERE id IN (SELECT ticket_id FROM ticket_orders WHERE order_id=$1)`, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
