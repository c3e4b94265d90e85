package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service booking.OrderUseCase
}

func NewOrderHandler(service booking.OrderUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:reference", h.get)
	router.DELETE("/:reference", h.cancel)
}

type createOrderRequest struct {
	FlightID  int64   `json:"flight_id"`
	Quantity  int     `json:"quantity"`
	SeatIDs   []int64 `json:"seat_ids"`
	BuyerKind string  `json:"buyer_kind"`
	Email     string  `json:"email"`
}

type orderResponse struct {
	OrderID     int64          `json:"order_id"`
	Reference   string         `json:"reference"`
	FlightID    int64          `json:"flight_id"`
	Status      string         `json:"status"`
	TotalCents  int64          `json:"total_cents"`
	FeeCents    int64          `json:"fee_cents"`
	PurchasedAt string         `json:"purchased_at"`
	Tickets     []seatResponse `json:"tickets,omitempty"`
}

func toOrderResponse(o *domain.Order, tickets []domain.Ticket) orderResponse {
	out := orderResponse{
		OrderID:     o.ID,
		Reference:   o.Reference,
		FlightID:    o.FlightID,
		Status:      string(o.Status),
		TotalCents:  o.TotalCents,
		FeeCents:    o.FeeCents,
		PurchasedAt: o.PurchasedAt.Format(time.RFC3339),
	}
	for _, t := range tickets {
		out.Tickets = append(out.Tickets, seatResponse{
			TicketID:   t.ID,
			SeatID:     t.SeatID,
			Class:      string(t.Class),
			Row:        t.Row,
			Column:     t.Column,
			PriceCents: t.PriceCents,
			Available:  t.Available,
		})
	}
	return out
}

func buyerFromRequest(kind, email string) domain.Buyer {
	switch domain.BuyerKind(kind) {
	case domain.BuyerMember:
		return domain.MemberBuyer(email)
	case domain.BuyerGuest:
		return domain.GuestBuyer(email)
	case domain.BuyerAnonymous, "":
		return domain.AnonymousBuyer()
	default:
		return domain.Buyer{Kind: domain.BuyerKind(kind), Email: email}
	}
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), booking.CreateOrderRequest{
		FlightID: req.FlightID,
		Quantity: req.Quantity,
		SeatIDs:  req.SeatIDs,
		Buyer:    buyerFromRequest(req.BuyerKind, req.Email),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"order_id":  order.ID,
		"reference": order.Reference,
	})
}

func (h *OrderHandler) get(c *gin.Context) {
	order, tickets, err := h.service.GetOrder(c.Request.Context(), c.Param("reference"), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, tickets))
}

func (h *OrderHandler) cancel(c *gin.Context) {
	order, err := h.service.CancelOrder(c.Request.Context(), c.Param("reference"), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, nil))
}
