package models

import "time"

// Direction says which side of attendance a scan represents.
type Direction int

const (
	DirectionEntry Direction = iota + 1
	DirectionExit
)

func (d Direction) String() string {
	switch d {
	case DirectionEntry:
		return "entry"
	case DirectionExit:
		return "exit"
	default:
		return "unknown"
	}
}

type AttendanceStatus string

const (
	StatusOpen     AttendanceStatus = "open"
	StatusComplete AttendanceStatus = "complete"
)

// AttendanceToken is the decoded payload of a scanned code.
type AttendanceToken struct {
	ActivityID    int64
	Direction     Direction
	ActivityLabel string
	ContextLabel  string
}

// AttendanceRecord is the per (activity, person) attendance state.
// HoursAttended is only meaningful once Status is StatusComplete.
type AttendanceRecord struct {
	ActivityID        int64            `json:"activity_id"`
	PersonID          int64            `json:"person_id"`
	ActivityKind      string           `json:"activity_kind,omitempty"`
	EntryAt           *time.Time       `json:"entry_at"`
	ExitAt            *time.Time       `json:"exit_at"`
	EntryRegisteredBy *int64           `json:"entry_registered_by"`
	ExitRegisteredBy  *int64           `json:"exit_registered_by"`
	Status            AttendanceStatus `json:"status"`
	HoursAttended     float64          `json:"hours_attended"`
	CreatedAt         time.Time        `json:"created_at"`
}

func (r AttendanceRecord) IsOpen() bool {
	return r.EntryAt != nil && r.ExitAt == nil
}

func (r AttendanceRecord) IsComplete() bool {
	return r.Status == StatusComplete
}

type ScanRequest struct {
	Code     string `json:"codigoQR" binding:"required"`
	PersonID int64  `json:"IdUsuario"`
}

type ScanResponse struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Attendance AttendanceRecord `json:"asistencia"`
}

// AttendanceEvent is the payload published after every accepted scan.
type AttendanceEvent struct {
	ActivityID   int64     `json:"activity_id"`
	PersonID     int64     `json:"person_id"`
	RegisteredBy int64     `json:"registered_by"`
	Direction    string    `json:"direction"`
	Hours        float64   `json:"hours,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ActivityTotals aggregates the ledger rows of one activity.
type ActivityTotals struct {
	Entries     int
	Completions int
	Hours       float64
}

type InterestSummary struct {
	ActivityID   int64   `json:"activity_id"`
	ActivityName string  `json:"actividad"`
	Entries      int     `json:"entradas"`
	Completions  int     `json:"completas"`
	Hours        float64 `json:"horas"`
}

// Attendee is a ledger record joined with the person's display attributes.
type Attendee struct {
	AttendanceRecord
	Person PersonProfile `json:"usuario"`
}

type HoursResponse struct {
	PersonID   int64   `json:"user_id"`
	Kind       string  `json:"tipo,omitempty"`
	TotalHours float64 `json:"totalHoras"`
}
