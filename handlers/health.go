package handlers

import (
	"context"
	"net/http"
	"time"

	"attendance_backend/db"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db *db.DB
}

func NewHealthHandler(d *db.DB) *HealthHandler {
	return &HealthHandler{db: d}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// Check database connection
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": h.db.Dialect.String(),
	})
}
