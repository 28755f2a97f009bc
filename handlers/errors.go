package handlers

import (
	"errors"
	"net/http"

	"attendance_backend/attendance"

	"github.com/gin-gonic/gin"
)

func statusFor(kind attendance.Kind) int {
	switch kind {
	case attendance.KindMalformedToken,
		attendance.KindUnknownDirection,
		attendance.KindEntryRequiredFirst,
		attendance.KindInvalidRequest:
		return http.StatusBadRequest
	case attendance.KindNotAuthorized:
		return http.StatusForbidden
	case attendance.KindActivityNotFound:
		return http.StatusNotFound
	case attendance.KindDuplicateEntry,
		attendance.KindAlreadyClosed,
		attendance.KindAlreadyComplete:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "code"}. Internal details never reach the client.
func respondError(c *gin.Context, err error) {
	var e *attendance.Error
	if !errors.As(err, &e) {
		e = &attendance.Error{Kind: attendance.KindInternal, Message: "Internal server error", Err: err}
	}
	_ = c.Error(err)
	c.JSON(statusFor(e.Kind), gin.H{"error": e.Message, "code": e.Kind})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": attendance.KindInvalidRequest})
}
