package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	service booking.BookingUseCase
}

type createDeliveryRequest struct {
	StartAddress string    `json:"start_address" binding:"required"`
	EndAddress   string    `json:"end_address" binding:"required"`
	PickupTime   time.Time `json:"pickup_time"`
	DroneID      int64     `json:"drone_id"`
	UserID       int64     `json:"user_id" binding:"required"`
	UserName     string    `json:"user_name"`
}

type rescheduleDeliveryRequest struct {
	StartAddress *string    `json:"start_address"`
	EndAddress   *string    `json:"end_address"`
	PickupTime   *time.Time `json:"pickup_time"`
	DroneID      *int64     `json:"drone_id"`
}

type deliveryResponse struct {
	ID               int64              `json:"id"`
	StartAddress     string             `json:"start_address"`
	EndAddress       string             `json:"end_address"`
	Start            domain.Coordinates `json:"start"`
	End              domain.Coordinates `json:"end"`
	PickupTime       string             `json:"pickup_time"`
	EstimatedArrival string             `json:"estimated_arrival"`
	Status           string             `json:"status"`
	DroneID          int64              `json:"drone_id"`
	UserID           int64              `json:"user_id"`
	UserName         string             `json:"user_name,omitempty"`
	TrackingNumber   string             `json:"tracking_number"`
}

func toDeliveryResponse(d *domain.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:               d.ID,
		StartAddress:     d.StartAddress,
		EndAddress:       d.EndAddress,
		Start:            d.Start,
		End:              d.End,
		PickupTime:       d.PickupTime.Format(time.RFC3339),
		EstimatedArrival: d.EstimatedArrival.Format(time.RFC3339),
		Status:           string(d.Status),
		DroneID:          d.DroneID,
		UserID:           d.UserID,
		UserName:         d.UserName,
		TrackingNumber:   d.TrackingNumber,
	}
}

func NewDeliveryHandler(service booking.BookingUseCase) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

func (h *DeliveryHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.reschedule)
	router.DELETE("/:id", h.cancel)
}

func (h *DeliveryHandler) create(c *gin.Context) {
	var req createDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delivery, err := h.service.Book(c.Request.Context(), booking.BookDeliveryInput{
		StartAddress: req.StartAddress,
		EndAddress:   req.EndAddress,
		PickupTime:   req.PickupTime,
		DroneID:      req.DroneID,
		UserID:       req.UserID,
		UserName:     req.UserName,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDeliveryResponse(delivery))
}

func (h *DeliveryHandler) list(c *gin.Context) {
	var (
		deliveries []domain.Delivery
		err        error
	)
	if raw := c.Query("user_id"); raw != "" {
		userID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		deliveries, err = h.service.ListByUser(c.Request.Context(), userID)
	} else {
		deliveries, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]deliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		resp = append(resp, toDeliveryResponse(&deliveries[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DeliveryHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	delivery, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(delivery))
}

func (h *DeliveryHandler) reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req rescheduleDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delivery, err := h.service.Reschedule(c.Request.Context(), id, booking.RescheduleInput{
		StartAddress: req.StartAddress,
		EndAddress:   req.EndAddress,
		PickupTime:   req.PickupTime,
		DroneID:      req.DroneID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(delivery))
}

func (h *DeliveryHandler) cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
