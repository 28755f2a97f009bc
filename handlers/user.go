package handlers

import (
	"context"
	"errors"
	"net/http"

	"attendance_backend/directory"
	"attendance_backend/logger"
	"attendance_backend/middleware"
	"attendance_backend/models"

	"github.com/gin-gonic/gin"
)

type UserDirectory interface {
	Person(ctx context.Context, id int64) (models.PersonProfile, error)
	Roles(ctx context.Context, userID int64) ([]string, error)
	IsStaff(ctx context.Context, userID int64) (bool, error)
}

type UserHandler struct {
	dir UserDirectory
	log *logger.Logger
}

func NewUserHandler(dir UserDirectory, log *logger.Logger) *UserHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UserHandler{dir: dir, log: log}
}

// GetUserInfo fetches the authenticated user's profile, roles and whether
// the scanner app should offer staff-assisted check-in.
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	person, err := h.dir.Person(ctx, userID)
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error("Error getting user profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}

	roles, err := h.dir.Roles(ctx, userID)
	if err != nil {
		h.log.Error("Error getting user roles", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}
	staff, err := h.dir.IsStaff(ctx, userID)
	if err != nil {
		h.log.Error("Error checking staff role", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user info"})
		return
	}

	c.JSON(http.StatusOK, models.UserInfo{
		PersonProfile: person,
		Roles:         roles,
		IsStaff:       staff,
	})
}
