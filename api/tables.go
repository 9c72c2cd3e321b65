package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	service booking.TableUseCase
}

type createTableRequest struct {
	Capacity int `json:"capacity" binding:"required"`
}

type updateTableRequest struct {
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

func NewTableHandler(service booking.TableUseCase) *TableHandler {
	return &TableHandler{service: service}
}

func (h *TableHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// list supports ?available=true[&guests=N] and ?q=keyword.
func (h *TableHandler) list(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		tables []domain.Table
		err    error
	)
	switch {
	case c.Query("q") != "":
		tables, err = h.service.SearchTables(ctx, c.Query("q"))
	case c.Query("available") == "true":
		guests := 0
		if raw := c.Query("guests"); raw != "" {
			if guests, err = strconv.Atoi(raw); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guests"})
				return
			}
		}
		tables, err = h.service.AvailableTables(ctx, guests)
	default:
		tables, err = h.service.ListTables(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTableResponses(tables))
}

func (h *TableHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.service.GetTable(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTableResponse(*t))
}

func (h *TableHandler) create(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.service.AddTable(c.Request.Context(), req.Capacity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTableResponse(*t))
}

func (h *TableHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.service.UpdateTable(c.Request.Context(), id, booking.UpdateTableInput{Capacity: req.Capacity, Status: req.Status})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTableResponse(*t))
}

func (h *TableHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTable(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
