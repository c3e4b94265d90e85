package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/Domenick1991/airscheduling/internal/service/fleet"
	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	service fleet.FleetUseCase
}

func NewFleetHandler(service fleet.FleetUseCase) *FleetHandler {
	return &FleetHandler{service: service}
}

func (h *FleetHandler) Register(router *gin.RouterGroup) {
	router.GET("/aircraft", h.listAircraft)
	router.POST("/aircraft", h.registerAircraft)
	router.POST("/crew", h.registerCrew)
}

type registerAircraftRequest struct {
	Size         string `json:"size"`
	Manufacturer string `json:"manufacturer"`
}

type registerCrewRequest struct {
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
	LongHaulTrained bool   `json:"long_haul_trained"`
}

type aircraftResponse struct {
	ID           int64  `json:"id"`
	Size         string `json:"size"`
	Manufacturer string `json:"manufacturer"`
	PurchasedAt  string `json:"purchased_at"`
}

type seatPositionResponse struct {
	SeatID int64  `json:"seat_id"`
	Class  string `json:"class"`
	Row    int    `json:"row"`
	Column string `json:"column"`
}

type registeredAircraftResponse struct {
	aircraftResponse
	Seats []seatPositionResponse `json:"seats"`
}

type crewMemberResponse struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
	LongHaulTrained bool   `json:"long_haul_trained"`
}

func toAircraftResponse(a *domain.Aircraft) aircraftResponse {
	return aircraftResponse{
		ID:           a.ID,
		Size:         string(a.Size),
		Manufacturer: a.Manufacturer,
		PurchasedAt:  a.PurchasedAt.Format(time.RFC3339),
	}
}

func (h *FleetHandler) listAircraft(c *gin.Context) {
	all, err := h.service.ListAircraft(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]aircraftResponse, 0, len(all))
	for i := range all {
		out = append(out, toAircraftResponse(&all[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FleetHandler) registerAircraft(c *gin.Context) {
	var req registerAircraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	aircraft, seats, err := h.service.RegisterAircraft(c.Request.Context(), fleet.RegisterAircraftRequest{
		Size:         domain.AircraftSize(req.Size),
		Manufacturer: req.Manufacturer,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := registeredAircraftResponse{aircraftResponse: toAircraftResponse(aircraft)}
	for _, s := range seats {
		out.Seats = append(out.Seats, seatPositionResponse{
			SeatID: s.ID,
			Class:  string(s.Class),
			Row:    s.Row,
			Column: s.Column,
		})
	}
	c.JSON(http.StatusCreated, out)
}

func (h *FleetHandler) registerCrew(c *gin.Context) {
	var req registerCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.service.RegisterCrew(c.Request.Context(), fleet.RegisterCrewRequest{
		FullName:        req.FullName,
		Role:            domain.CrewRole(req.Role),
		LongHaulTrained: req.LongHaulTrained,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, crewMemberResponse{
		ID:              member.ID,
		FullName:        member.FullName,
		Role:            string(member.Role),
		LongHaulTrained: member.LongHaulTrained,
	})
}
