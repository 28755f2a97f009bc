package attendance

import (
	"math"
	"time"

	"attendance_backend/models"
)

// Action is the single ledger mutation a scan resolves to.
type Action interface {
	isAction()
}

type ActionOpen struct {
	EntryAt      time.Time
	RegisteredBy int64
}

type ActionClose struct {
	ExitAt       time.Time
	RegisteredBy int64
	Hours        float64
}

func (ActionOpen) isAction()  {}
func (ActionClose) isAction() {}

// HoursBetween is the elapsed time in hours, rounded to two decimals.
// A clock that went backwards yields 0, never a negative value.
func HoursBetween(entry, exit time.Time) float64 {
	d := exit.Sub(entry)
	if d <= 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}

// Evaluate decides what a scan does to the current record (nil when the
// person has no record for the activity yet). It has no side effects.
func Evaluate(current *models.AttendanceRecord, tok models.AttendanceToken, actorID int64, now time.Time) (Action, error) {
	if current == nil {
		switch tok.Direction {
		case models.DirectionEntry:
			return ActionOpen{EntryAt: now, RegisteredBy: actorID}, nil
		case models.DirectionExit:
			return nil, newError(KindEntryRequiredFirst, "Entry must be registered before exit", nil)
		default:
			return nil, newError(KindUnknownDirection, "Unknown QR code direction", nil)
		}
	}

	if current.IsComplete() || current.ExitAt != nil {
		return nil, newError(KindAlreadyComplete, "Attendance already completed for this activity", nil)
	}

	switch tok.Direction {
	case models.DirectionEntry:
		return nil, newError(KindDuplicateEntry, "Entry already registered", nil)
	case models.DirectionExit:
		if current.EntryAt == nil {
			return nil, newError(KindEntryRequiredFirst, "Entry must be registered before exit", nil)
		}
		return ActionClose{
			ExitAt:       now,
			RegisteredBy: actorID,
			Hours:        HoursBetween(*current.EntryAt, now),
		}, nil
	default:
		return nil, newError(KindUnknownDirection, "Unknown QR code direction", nil)
	}
}
