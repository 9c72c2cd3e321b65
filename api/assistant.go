package api

import (
	"net/http"

	"github.com/Domenick1991/restobooking/internal/domain"
	"github.com/Domenick1991/restobooking/internal/service/assistant"
	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	service assistant.UseCase
}

type assistantRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
}

func NewAssistantHandler(service assistant.UseCase) *AssistantHandler {
	return &AssistantHandler{service: service}
}

func (h *AssistantHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.chat)
}

func (h *AssistantHandler) chat(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := domain.RoleGuest
	if req.Role != "" {
		role = domain.ParseRole(req.Role)
	}

	reply, err := h.service.Handle(c.Request.Context(), req.Message, req.SessionID, role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
