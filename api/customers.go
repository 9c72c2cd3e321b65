package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service booking.CustomerUseCase
}

type registerCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func NewCustomerHandler(service booking.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.register)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// list returns all customers, or the one matching ?phone=.
func (h *CustomerHandler) list(c *gin.Context) {
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		customer, err := h.service.FindCustomerByPhone(c.Request.Context(), phone)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newCustomerResponse(*customer))
		return
	}

	customers, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, cu := range customers {
		out = append(out, newCustomerResponse(cu))
	}
	c.JSON(http.StatusOK, out)
}

// register answers 201 for a new customer and 200 when the phone is already known.
func (h *CustomerHandler) register(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, created, err := h.service.RegisterCustomer(c.Request.Context(), booking.RegisterCustomerInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, newCustomerResponse(*customer))
}

func (h *CustomerHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(*customer))
}

func (h *CustomerHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req booking.UpdateCustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.service.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCustomerResponse(*customer))
}

func (h *CustomerHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
