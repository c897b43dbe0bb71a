package api

import (
	"net/http"

	"brainexa/backend/internal/service"
	"brainexa/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the aggregate reporting endpoints. Routes are guarded
// by the admin role middleware at registration time.
type AdminHandler struct {
	service *service.AdminService
	logger  *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// Users handles GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		h.logger.Error("Error listing users", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Error computing stats", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
