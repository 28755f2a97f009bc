// Package ledger stores attendance records, one per (activity, person).
//
// CreateOpenRecord and CloseRecord are each a single conditional statement,
// so a state transition either fully applies or not at all. Callers still
// serialize scans per key; the store only refuses the second writer.
package ledger

import (
	"context"
	"errors"
	"time"

	"attendance_backend/models"
)

var (
	ErrNotFound      = errors.New("attendance record not found")
	ErrAlreadyExists = errors.New("attendance record already exists")
	ErrAlreadyClosed = errors.New("attendance record already closed")
)

type OpenParams struct {
	ActivityID   int64
	PersonID     int64
	ActivityKind string
	EntryAt      time.Time
	RegisteredBy int64
}

type CloseParams struct {
	ActivityID    int64
	PersonID      int64
	ExitAt        time.Time
	RegisteredBy  int64
	HoursAttended float64
}

type Ledger interface {
	GetRecord(ctx context.Context, activityID, personID int64) (models.AttendanceRecord, error)
	CreateOpenRecord(ctx context.Context, p OpenParams) (models.AttendanceRecord, error)
	CloseRecord(ctx context.Context, p CloseParams) (models.AttendanceRecord, error)
	ListByActivity(ctx context.Context, activityID int64) ([]models.AttendanceRecord, error)
	// ListByPerson filters on activity kind unless kind is empty.
	ListByPerson(ctx context.Context, personID int64, kind string) ([]models.AttendanceRecord, error)
	SumHoursByActivity(ctx context.Context, activityID int64) (float64, error)
	SumHoursByPerson(ctx context.Context, personID int64, kind string) (float64, error)
	Summarize(ctx context.Context, activityIDs []int64) (map[int64]models.ActivityTotals, error)
}
