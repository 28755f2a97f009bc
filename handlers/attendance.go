package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"attendance_backend/attendance"
	"attendance_backend/middleware"
	"attendance_backend/models"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	service *attendance.Service
	reports *attendance.Reports
}

func NewAttendanceHandler(service *attendance.Service, reports *attendance.Reports) *AttendanceHandler {
	return &AttendanceHandler{service: service, reports: reports}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// RegisterScan handles POST /attendance/scan.
func (h *AttendanceHandler) RegisterScan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "QR code is required")
		return
	}

	res, err := h.service.RegisterScan(c.Request.Context(), attendance.ScanRequest{
		Code:     req.Code,
		ActorID:  middleware.UserID(c),
		PersonID: req.PersonID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ScanResponse{
		Status:     res.Status,
		Message:    res.Message,
		Attendance: res.Record,
	})
}

// GetQRCodes returns the entry and exit payloads to print for an activity.
func (h *AttendanceHandler) GetQRCodes(c *gin.Context) {
	activityID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.RequireStaff(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	codes, err := h.service.IssueTokens(c.Request.Context(), activityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *AttendanceHandler) GetAttendees(c *gin.Context) {
	activityID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.RequireStaff(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	attendees, err := h.reports.AttendeesOf(c.Request.Context(), activityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendees)
}

// GetUserHours handles GET /users/:id/hours. Users may read their own
// total; anyone else's needs a staff role.
func (h *AttendanceHandler) GetUserHours(c *gin.Context) {
	personID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if actorID := middleware.UserID(c); actorID != personID {
		if err := h.service.RequireStaff(c.Request.Context(), actorID); err != nil {
			respondError(c, err)
			return
		}
	}

	kind := strings.TrimSpace(c.Query("tipo"))
	total, err := h.reports.TotalHours(c.Request.Context(), personID, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.HoursResponse{PersonID: personID, Kind: kind, TotalHours: total})
}

// GetSummary handles GET /attendance/summary?activity_ids=1,2 or ?tipo=Lúdica.
func (h *AttendanceHandler) GetSummary(c *gin.Context) {
	if err := h.service.RequireStaff(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	raw := strings.TrimSpace(c.Query("activity_ids"))
	kind := strings.TrimSpace(c.Query("tipo"))

	var (
		summary []models.InterestSummary
		err     error
	)
	switch {
	case raw != "":
		ids, perr := parseIDs(raw)
		if perr != nil {
			badRequest(c, "activity_ids must be a comma separated list of ids")
			return
		}
		summary, err = h.reports.InterestSummary(c.Request.Context(), ids)
	case kind != "":
		summary, err = h.reports.InterestSummaryByKind(c.Request.Context(), kind)
	default:
		badRequest(c, "activity_ids or tipo is required")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func parseIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
