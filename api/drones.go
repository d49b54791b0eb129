package api

import (
	"net/http"

	"github.com/Domenick1991/dronedelivery/internal/service/drones"
	"github.com/gin-gonic/gin"
)

type DroneHandler struct {
	service drones.DroneUseCase
}

func NewDroneHandler(service drones.DroneUseCase) *DroneHandler {
	return &DroneHandler{service: service}
}

func (h *DroneHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *DroneHandler) list(c *gin.Context) {
	fleet, err := h.service.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, fleet)
}

func (h *DroneHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	drone, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, drone)
}
