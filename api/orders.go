package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/restobooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// OrderHandler is read-only; orders are written by the kitchen side.
type OrderHandler struct {
	service booking.OrderUseCase
}

type orderItemResponse struct {
	ItemID int `json:"item_id"`
	Amount int `json:"amount"`
}

type orderResponse struct {
	ID        int                 `json:"order_id"`
	BookingID int                 `json:"booking_id"`
	TableID   int                 `json:"table_id"`
	Time      string              `json:"time"`
	Status    string              `json:"status"`
	Total     float64             `json:"total"`
	Items     []orderItemResponse `json:"items"`
	Broken    bool                `json:"broken,omitempty"`
}

func NewOrderHandler(service booking.OrderUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
}

// list supports ?booking_id=N.
func (h *OrderHandler) list(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		orders []booking.OrderDetails
		err    error
	)
	if raw := c.Query("booking_id"); raw != "" {
		id, convErr := strconv.Atoi(raw)
		if convErr != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking_id"})
			return
		}
		orders, err = h.service.OrdersOfBooking(ctx, id)
	} else {
		orders, err = h.service.ListOrders(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items := make([]orderItemResponse, 0, len(o.Order.Items))
		for _, it := range o.Order.Items {
			items = append(items, orderItemResponse{ItemID: it.ItemID, Amount: it.Amount})
		}
		resp := orderResponse{
			ID:        o.Order.ID,
			BookingID: o.Order.BookingID,
			TableID:   o.Table.ID,
			Status:    string(o.Order.Status),
			Total:     o.Order.Total,
			Items:     items,
			Broken:    o.Table.Placeholder,
		}
		if !o.Order.Time.IsZero() {
			resp.Time = o.Order.Time.Format(timeLayout)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
