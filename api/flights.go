package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/seats", h.seatMap)
	router.POST("/availability", h.checkAvailability)
	router.POST("/", h.create)
	router.DELETE("/:id", h.cancel)
}

type availabilityRequest struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Pilots        int       `json:"pilots"`
	Attendants    int       `json:"attendants"`
}

type availabilityResponse struct {
	Available          bool    `json:"available"`
	SuggestedTimestamp *string `json:"suggested_timestamp"`
	AircraftIDs        []int64 `json:"aircraft_ids,omitempty"`
	PilotIDs           []int64 `json:"pilot_ids,omitempty"`
	AttendantIDs       []int64 `json:"attendant_ids,omitempty"`
}

type createFlightRequest struct {
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	DepartureTime    time.Time `json:"departure_time"`
	CrewIDs          []int64   `json:"crew_ids"`
	RegularFareCents int64     `json:"regular_fare_cents"`
	FirstFareCents   int64     `json:"first_fare_cents"`
}

type flightResponse struct {
	ID            int64  `json:"id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	AircraftID    int64  `json:"aircraft_id"`
}

type seatResponse struct {
	TicketID   int64  `json:"ticket_id"`
	SeatID     int64  `json:"seat_id"`
	Class      string `json:"class"`
	Row        int    `json:"row"`
	Column     string `json:"column"`
	PriceCents int64  `json:"price_cents"`
	Available  bool   `json:"available"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:   f.ArrivalTime.Format(time.RFC3339),
		Status:        string(f.Status),
		Type:          string(f.Type),
		AircraftID:    f.AircraftID,
	}
}

func toAvailabilityResponse(res *flights.AvailabilityResult) availabilityResponse {
	out := availabilityResponse{Available: res.Available}
	if res.Available {
		for _, a := range res.Aircraft {
			out.AircraftIDs = append(out.AircraftIDs, a.ID)
		}
		for _, m := range res.Crew.Pilots {
			out.PilotIDs = append(out.PilotIDs, m.ID)
		}
		for _, m := range res.Crew.Attendants {
			out.AttendantIDs = append(out.AttendantIDs, m.ID)
		}
		return out
	}
	if res.SuggestedDeparture != nil {
		ts := res.SuggestedDeparture.Format(time.RFC3339)
		out.SuggestedTimestamp = &ts
	}
	return out
}

func (h *FlightHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]flightResponse, 0, len(all))
	for i := range all {
		out = append(out, toFlightResponse(&all[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	tickets, err := h.service.SeatMap(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]seatResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, seatResponse{
			TicketID:   t.ID,
			SeatID:     t.SeatID,
			Class:      string(t.Class),
			Row:        t.Row,
			Column:     t.Column,
			PriceCents: t.PriceCents,
			Available:  t.Available,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) checkAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.CheckAvailability(c.Request.Context(), flights.AvailabilityRequest{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		Pilots:        req.Pilots,
		Attendants:    req.Attendants,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAvailabilityResponse(res))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.Schedule(c.Request.Context(), flights.ScheduleRequest{
		Origin:           req.Origin,
		Destination:      req.Destination,
		DepartureTime:    req.DepartureTime,
		CrewIDs:          req.CrewIDs,
		RegularFareCents: req.RegularFareCents,
		FirstFareCents:   req.FirstFareCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Blocked != nil {
		// resources unavailable is a workflow outcome with a suggestion,
		// not an error
		c.JSON(http.StatusConflict, toAvailabilityResponse(res.Blocked))
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(res.Flight))
}

func (h *FlightHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
