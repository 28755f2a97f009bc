// Package attendance turns scanned QR payloads into attendance records and
// reports over them.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance_backend/directory"
	"attendance_backend/guard"
	"attendance_backend/ledger"
	"attendance_backend/logger"
	"attendance_backend/models"
	"attendance_backend/notify"
	"attendance_backend/qrtoken"
)

const (
	StatusEntryRecorded = "entry_recorded"
	StatusExitRecorded  = "exit_recorded"
)

type ActivityLookup interface {
	Activity(ctx context.Context, id int64) (models.ActivityRef, error)
}

type StaffChecker interface {
	IsStaff(ctx context.Context, userID int64) (bool, error)
}

type ScanRequest struct {
	Code    string
	ActorID int64
	// PersonID is the attendee when staff registers on someone's behalf.
	// Zero means the actor is scanning for themselves.
	PersonID int64
}

type ScanResult struct {
	Status  string
	Message string
	Record  models.AttendanceRecord
}

type ServiceDeps struct {
	Ledger     ledger.Ledger
	Activities ActivityLookup
	Staff      StaffChecker
	Guard      guard.Guard
	Events     notify.Publisher
	Log        *logger.Logger
	Now        func() time.Time
}

type Service struct {
	ledger     ledger.Ledger
	activities ActivityLookup
	staff      StaffChecker
	guard      guard.Guard
	events     notify.Publisher
	log        *logger.Logger
	now        func() time.Time
}

func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if deps.Activities == nil {
		return nil, fmt.Errorf("activity lookup required")
	}
	s := &Service{
		ledger:     deps.Ledger,
		activities: deps.Activities,
		staff:      deps.Staff,
		guard:      deps.Guard,
		events:     deps.Events,
		log:        deps.Log,
		now:        deps.Now,
	}
	if s.guard == nil {
		s.guard = guard.NewLocal()
	}
	if s.events == nil {
		s.events = notify.Nop{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = s.log.With("service", "AttendanceService")
	return s, nil
}

// RegisterScan records the entry or exit a scanned code stands for.
func (s *Service) RegisterScan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	if req.ActorID <= 0 {
		return ScanResult{}, newError(KindNotAuthorized, "Authenticated user required", nil)
	}
	personID := req.PersonID
	if personID == 0 {
		personID = req.ActorID
	}
	if personID < 0 {
		return ScanResult{}, newError(KindInvalidRequest, "Invalid user id", nil)
	}
	if personID != req.ActorID {
		if err := s.RequireStaff(ctx, req.ActorID); err != nil {
			return ScanResult{}, err
		}
	}

	tok, err := qrtoken.Decode(req.Code)
	if err != nil {
		if errors.Is(err, qrtoken.ErrUnknownDirection) {
			return ScanResult{}, newError(KindUnknownDirection, "Unknown QR code direction", err)
		}
		return ScanResult{}, newError(KindMalformedToken, "Invalid or corrupted QR code", err)
	}

	ref, err := s.activities.Activity(ctx, tok.ActivityID)
	if errors.Is(err, directory.ErrNotFound) {
		return ScanResult{}, newError(KindActivityNotFound, "Activity not found", nil)
	}
	if err != nil {
		return ScanResult{}, internal("Failed to verify activity", err)
	}

	rec, dir, err := s.apply(ctx, ref, tok, personID, req.ActorID)
	if err != nil {
		if !IsRejection(err) {
			s.log.Error("attendance scan failed",
				"activity_id", tok.ActivityID,
				"person_id", personID,
				"actor_id", req.ActorID,
				"error", err,
			)
		}
		return ScanResult{}, err
	}

	ev := models.AttendanceEvent{
		ActivityID:   rec.ActivityID,
		PersonID:     rec.PersonID,
		RegisteredBy: req.ActorID,
		Direction:    dir.String(),
		OccurredAt:   s.now().UTC(),
	}
	result := ScanResult{Status: StatusEntryRecorded, Message: "Entry registered successfully", Record: rec}
	if dir == models.DirectionExit {
		result.Status = StatusExitRecorded
		result.Message = "Exit registered successfully"
		ev.Hours = rec.HoursAttended
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("attendance event not published", "activity_id", rec.ActivityID, "error", err)
	}
	s.log.Info("attendance registered",
		"activity_id", rec.ActivityID,
		"person_id", rec.PersonID,
		"actor_id", req.ActorID,
		"status", result.Status,
	)
	return result, nil
}

// apply runs read-decide-write for one key while holding its guard.
func (s *Service) apply(ctx context.Context, ref models.ActivityRef, tok models.AttendanceToken, personID, actorID int64) (models.AttendanceRecord, models.Direction, error) {
	unlock, err := s.guard.Lock(ctx, guard.Key(ref.ID, personID))
	if err != nil {
		return models.AttendanceRecord{}, 0, internal("Failed to acquire attendance lock", err)
	}
	defer unlock()

	var current *models.AttendanceRecord
	rec, err := s.ledger.GetRecord(ctx, ref.ID, personID)
	switch {
	case err == nil:
		current = &rec
	case errors.Is(err, ledger.ErrNotFound):
	default:
		return models.AttendanceRecord{}, 0, internal("Failed to load attendance", err)
	}

	action, err := Evaluate(current, tok, actorID, s.now())
	if err != nil {
		return models.AttendanceRecord{}, 0, err
	}

	switch a := action.(type) {
	case ActionOpen:
		rec, err = s.ledger.CreateOpenRecord(ctx, ledger.OpenParams{
			ActivityID:   ref.ID,
			PersonID:     personID,
			ActivityKind: ref.Kind,
			EntryAt:      a.EntryAt,
			RegisteredBy: a.RegisteredBy,
		})
		if errors.Is(err, ledger.ErrAlreadyExists) {
			return models.AttendanceRecord{}, 0, newError(KindDuplicateEntry, "Entry already registered", nil)
		}
		if err != nil {
			return models.AttendanceRecord{}, 0, internal("Failed to register entry", err)
		}
		return rec, models.DirectionEntry, nil
	case ActionClose:
		rec, err = s.ledger.CloseRecord(ctx, ledger.CloseParams{
			ActivityID:    ref.ID,
			PersonID:      personID,
			ExitAt:        a.ExitAt,
			RegisteredBy:  a.RegisteredBy,
			HoursAttended: a.Hours,
		})
		switch {
		case errors.Is(err, ledger.ErrAlreadyClosed):
			return models.AttendanceRecord{}, 0, newError(KindAlreadyClosed, "Exit already registered", nil)
		case errors.Is(err, ledger.ErrNotFound):
			return models.AttendanceRecord{}, 0, newError(KindEntryRequiredFirst, "Entry must be registered before exit", nil)
		case err != nil:
			return models.AttendanceRecord{}, 0, internal("Failed to register exit", err)
		}
		return rec, models.DirectionExit, nil
	default:
		return models.AttendanceRecord{}, 0, internal("Unhandled attendance action", fmt.Errorf("%T", action))
	}
}

// RequireStaff fails with NotAuthorized unless the actor holds a staff role.
func (s *Service) RequireStaff(ctx context.Context, actorID int64) error {
	if s.staff == nil {
		return newError(KindNotAuthorized, "Only staff can register attendance for other users", nil)
	}
	ok, err := s.staff.IsStaff(ctx, actorID)
	if err != nil {
		return internal("Failed to verify permissions", err)
	}
	if !ok {
		return newError(KindNotAuthorized, "Only staff can register attendance for other users", nil)
	}
	return nil
}

// IssueTokens returns the entry and exit payloads to print for an activity.
func (s *Service) IssueTokens(ctx context.Context, activityID int64) (models.QRCodesResponse, error) {
	ref, err := s.activities.Activity(ctx, activityID)
	if errors.Is(err, directory.ErrNotFound) {
		return models.QRCodesResponse{}, newError(KindActivityNotFound, "Activity not found", nil)
	}
	if err != nil {
		return models.QRCodesResponse{}, internal("Failed to fetch activity", err)
	}
	entry, exit, err := qrtoken.EncodePair(ref)
	if err != nil {
		return models.QRCodesResponse{}, internal("Failed to encode QR payload", err)
	}
	return models.QRCodesResponse{ActivityID: ref.ID, Entry: entry, Exit: exit}, nil
}
