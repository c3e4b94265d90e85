package domain

import "time"

type OrderStatus string

const (
	OrderStatusActive            OrderStatus = "Active"
	OrderStatusCompleted         OrderStatus = "Completed"
	OrderStatusCustomerCancelled OrderStatus = "CustomerCancellation"
	OrderStatusSystemCancelled   OrderStatus = "SystemCancellation"
)

type BuyerKind string

const (
	BuyerMember    BuyerKind = "member"
	BuyerGuest     BuyerKind = "guest"
	BuyerAnonymous BuyerKind = "anonymous"
)

// Buyer identifies who placed an order. Anonymized or legacy orders carry
// BuyerAnonymous with an empty email.
type Buyer struct {
	Kind  BuyerKind
	Email string
}

func MemberBuyer(email string) Buyer { return Buyer{Kind: BuyerMember, Email: email} }
func GuestBuyer(email string) Buyer  { return Buyer{Kind: BuyerGuest, Email: email} }
func AnonymousBuyer() Buyer          { return Buyer{Kind: BuyerAnonymous} }

type Order struct {
	ID          int64
	Reference   string
	FlightID    int64
	Status      OrderStatus
	TotalCents  int64
	FeeCents    int64
	Buyer       Buyer
	PurchasedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cancelled reports whether the order reached either cancellation status.
func (o *Order) Cancelled() bool {
	return o.Status == OrderStatusCustomerCancelled || o.Status == OrderStatusSystemCancelled
}
