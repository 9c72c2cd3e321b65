package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether an optional dependency answers.
type Pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	agent Pinger
}

func NewHealthHandler(agent Pinger) *HealthHandler {
	return &HealthHandler{agent: agent}
}

func (h *HealthHandler) Register(router gin.IRoutes) {
	router.GET("/healthz", h.health)
}

// health is always 200; the agent is reported but never required.
func (h *HealthHandler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.agent != nil {
		if err := h.agent.Health(c.Request.Context()); err != nil {
			resp["agent"] = "unavailable"
		} else {
			resp["agent"] = "ok"
		}
	}
	c.JSON(http.StatusOK, resp)
}

type MaintenanceHandler struct {
	service booking.BookingUseCase
}

func NewMaintenanceHandler(service booking.BookingUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

func (h *MaintenanceHandler) Register(router *gin.RouterGroup) {
	router.POST("/reconcile", h.reconcile)
}

func (h *MaintenanceHandler) reconcile(c *gin.Context) {
	report, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
