package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository interface {
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	TicketsByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, reference, flight_id, status, total_cents, fee_cents, buyer_kind, buyer_email, purchased_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.Reference, &o.FlightID, &o.Status, &o.TotalCents, &o.FeeCents, &o.Buyer.Kind, &o.Buyer.Email, &o.PurchasedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *PGOrderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference=$1`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *PGOrderRepository) TicketsByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.flight_id, t.seat_id, s.class, s.row_num, s.col, t.price_cents, t.available
		FROM ticket_orders tor
		JOIN tickets t ON t.id = tor.ticket_id
		JOIN seats s ON s.id = t.seat_id
		WHERE tor.order_id=$1
		ORDER BY s.class, s.row_num, s.col`, orderID)
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

var _ OrderRepository = (*PGOrderRepository)(nil)
