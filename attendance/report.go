package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"

	"attendance_backend/directory"
	"attendance_backend/ledger"
	"attendance_backend/logger"
	"attendance_backend/models"
)

type ActivityDirectory interface {
	ActivityLookup
	Activities(ctx context.Context, kind string) ([]models.ActivityRef, error)
}

type PersonLookup interface {
	Person(ctx context.Context, id int64) (models.PersonProfile, error)
}

// Reports is read-only. It takes no locks, so totals may trail scans that
// are still in flight.
type Reports struct {
	ledger     ledger.Ledger
	activities ActivityDirectory
	people     PersonLookup
	log        *logger.Logger
}

func NewReports(l ledger.Ledger, activities ActivityDirectory, people PersonLookup, log *logger.Logger) *Reports {
	if log == nil {
		log = logger.Nop()
	}
	return &Reports{
		ledger:     l,
		activities: activities,
		people:     people,
		log:        log.With("service", "AttendanceReports"),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AttendeesOf lists the records of an activity with each person's display data.
func (r *Reports) AttendeesOf(ctx context.Context, activityID int64) ([]models.Attendee, error) {
	records, err := r.ledger.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, internal("Failed to fetch attendees", err)
	}

	attendees := make([]models.Attendee, 0, len(records))
	for _, rec := range records {
		a := models.Attendee{AttendanceRecord: rec, Person: models.PersonProfile{ID: rec.PersonID}}
		if r.people != nil {
			p, err := r.people.Person(ctx, rec.PersonID)
			switch {
			case err == nil:
				a.Person = p
			case errors.Is(err, directory.ErrNotFound):
				r.log.Warn("attendee without user row", "activity_id", activityID, "person_id", rec.PersonID)
			default:
				return nil, internal("Failed to fetch attendee profile", err)
			}
		}
		attendees = append(attendees, a)
	}
	return attendees, nil
}

// TotalHours sums completed hours of a person, optionally for one activity kind.
func (r *Reports) TotalHours(ctx context.Context, personID int64, kind string) (float64, error) {
	if personID <= 0 {
		return 0, newError(KindInvalidRequest, "Invalid user id", nil)
	}
	total, err := r.ledger.SumHoursByPerson(ctx, personID, kind)
	if err != nil {
		return 0, internal("Failed to calculate hours", err)
	}
	return round2(total), nil
}

// InterestSummary returns one zero-filled row per requested activity, in
// request order.
func (r *Reports) InterestSummary(ctx context.Context, activityIDs []int64) ([]models.InterestSummary, error) {
	for _, id := range activityIDs {
		if id <= 0 {
			return nil, newError(KindInvalidRequest, fmt.Sprintf("Invalid activity id %d", id), nil)
		}
	}
	totals, err := r.ledger.Summarize(ctx, activityIDs)
	if err != nil {
		return nil, internal("Failed to build summary", err)
	}

	out := make([]models.InterestSummary, 0, len(activityIDs))
	for _, id := range activityIDs {
		row := models.InterestSummary{ActivityID: id}
		if t, ok := totals[id]; ok {
			row.Entries = t.Entries
			row.Completions = t.Completions
			row.Hours = round2(t.Hours)
		}
		ref, err := r.activities.Activity(ctx, id)
		switch {
		case err == nil:
			row.ActivityName = ref.Name
		case errors.Is(err, directory.ErrNotFound):
		default:
			return nil, internal("Failed to fetch activity", err)
		}
		out = append(out, row)
	}
	return out, nil
}

// InterestSummaryByKind summarizes every activity of a kind.
func (r *Reports) InterestSummaryByKind(ctx context.Context, kind string) ([]models.InterestSummary, error) {
	refs, err := r.activities.Activities(ctx, kind)
	if err != nil {
		return nil, internal("Failed to fetch activities", err)
	}
	ids := make([]int64, 0, len(refs))
	names := make(map[int64]string, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
		names[ref.ID] = ref.Name
	}
	totals, err := r.ledger.Summarize(ctx, ids)
	if err != nil {
		return nil, internal("Failed to build summary", err)
	}

	out := make([]models.InterestSummary, 0, len(ids))
	for _, id := range ids {
		t := totals[id]
		out = append(out, models.InterestSummary{
			ActivityID:   id,
			ActivityName: names[id],
			Entries:      t.Entries,
			Completions:  t.Completions,
			Hours:        round2(t.Hours),
		})
	}
	return out, nil
}
