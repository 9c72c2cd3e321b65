package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	Guests       int    `json:"guests" binding:"required"`
	Time         string `json:"time" binding:"required"`
}

type updateBookingRequest struct {
	Guests string `json:"guests"`
	Time   string `json:"time"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/complete", h.complete)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at, err := h.service.ParseTime(req.Time)
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateBookingInput{
		Customer: booking.CustomerInput{Name: req.CustomerName, Phone: req.Phone, Email: req.Email},
		Guests:   req.Guests,
		Time:     at,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(*b))
}

// list returns every booking with its links resolved, or one customer's when ?phone= is set.
func (h *BookingHandler) list(c *gin.Context) {
	var (
		details []booking.BookingDetails
		err     error
	)
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		details, err = h.service.ListByCustomer(c.Request.Context(), phone)
	} else {
		details, err = h.service.Views(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailsResponses(details))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	details, err := h.service.View(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailsResponse(*details))
}

func (h *BookingHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.Update(c.Request.Context(), id, booking.UpdateBookingInput{Guests: req.Guests, Time: req.Time})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *BookingHandler) complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) transition(c *gin.Context, apply func(ctx context.Context, id int) error) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*b))
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
