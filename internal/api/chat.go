package api

import (
	"context"
	"errors"
	"net/http"

	"brainexa/backend/internal/models"
	"brainexa/backend/internal/service"
	"brainexa/backend/internal/store"
	"brainexa/backend/pkg/logger"
	"brainexa/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ChatService is the service surface the chat handler depends on.
type ChatService interface {
	SendMessage(ctx context.Context, userID uint, req *models.ChatRequest) (*models.ChatResponse, error)
	ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error)
	GetConversation(ctx context.Context, userID uint, id string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, userID uint, id string) error
	DeleteAllConversations(ctx context.Context, userID uint) (int64, error)
}

// ChatHandler handles conversation and message requests
type ChatHandler struct {
	service ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// Send handles POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.service.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message or Image is required"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		default:
			h.logger.Error("Error sending message", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles GET /api/chat/list
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Error listing conversations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// Get handles GET /api/chat/:id
func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conv, err := h.service.GetConversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("Error loading conversation", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// Delete handles DELETE /api/chat/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	err := h.service.DeleteConversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.Error("Error deleting conversation", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

// DeleteAll handles DELETE /api/chat
func (h *ChatHandler) DeleteAll(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	deleted, err := h.service.DeleteAllConversations(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Error deleting conversations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All conversations deleted",
		"deleted": deleted,
	})
}
