package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"attendance_backend/db/dbtest"
	"attendance_backend/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(dbtest.Open(t))
}

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func open(t *testing.T, s *Store, activityID, personID int64, kind string, at time.Time) models.AttendanceRecord {
	t.Helper()
	rec, err := s.CreateOpenRecord(context.Background(), OpenParams{
		ActivityID:   activityID,
		PersonID:     personID,
		ActivityKind: kind,
		EntryAt:      at,
		RegisteredBy: personID,
	})
	if err != nil {
		t.Fatalf("CreateOpenRecord(%d,%d): %v", activityID, personID, err)
	}
	return rec
}

func closeRec(t *testing.T, s *Store, activityID, personID int64, at time.Time, hours float64) models.AttendanceRecord {
	t.Helper()
	rec, err := s.CloseRecord(context.Background(), CloseParams{
		ActivityID:    activityID,
		PersonID:      personID,
		ExitAt:        at,
		RegisteredBy:  personID,
		HoursAttended: hours,
	})
	if err != nil {
		t.Fatalf("CloseRecord(%d,%d): %v", activityID, personID, err)
	}
	return rec
}

func TestGetRecordNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRecord(context.Background(), 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRecord: want ErrNotFound got=%v", err)
	}
}

func TestCreateOpenRecord(t *testing.T) {
	s := newTestStore(t)
	rec := open(t, s, 7, 42, "Lúdica", t0)

	if rec.Status != models.StatusOpen {
		t.Fatalf("status: want=%q got=%q", models.StatusOpen, rec.Status)
	}
	if rec.EntryAt == nil || !rec.EntryAt.Equal(t0) {
		t.Fatalf("entry_at: want=%s got=%v", t0, rec.EntryAt)
	}
	if rec.ExitAt != nil || rec.ExitRegisteredBy != nil {
		t.Fatalf("exit side must be empty: %+v", rec)
	}
	if rec.EntryRegisteredBy == nil || *rec.EntryRegisteredBy != 42 {
		t.Fatalf("entry_registered_by: got=%v", rec.EntryRegisteredBy)
	}
	if rec.ActivityKind != "Lúdica" {
		t.Fatalf("activity_kind: got=%q", rec.ActivityKind)
	}

	got, err := s.GetRecord(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !got.EntryAt.Equal(*rec.EntryAt) || got.Status != rec.Status {
		t.Fatalf("GetRecord: want=%+v got=%+v", rec, got)
	}
}

func TestCreateOpenRecordRejectsDuplicate(t *testing.T) {
	s := newTestStore(t)
	open(t, s, 7, 42, "", t0)

	_, err := s.CreateOpenRecord(context.Background(), OpenParams{
		ActivityID: 7, PersonID: 42, EntryAt: t0.Add(time.Hour), RegisteredBy: 1,
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("CreateOpenRecord: want ErrAlreadyExists got=%v", err)
	}
	got, err := s.GetRecord(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !got.EntryAt.Equal(t0) || *got.EntryRegisteredBy != 42 {
		t.Fatalf("entry overwritten: %+v", got)
	}
}

func TestCloseRecord(t *testing.T) {
	s := newTestStore(t)
	open(t, s, 7, 42, "", t0)

	t1 := t0.Add(90 * time.Minute)
	rec := closeRec(t, s, 7, 42, t1, 1.5)
	if rec.Status != models.StatusComplete {
		t.Fatalf("status: want=%q got=%q", models.StatusComplete, rec.Status)
	}
	if rec.ExitAt == nil || !rec.ExitAt.Equal(t1) {
		t.Fatalf("exit_at: want=%s got=%v", t1, rec.ExitAt)
	}
	if rec.HoursAttended != 1.5 {
		t.Fatalf("hours: want=%v got=%v", 1.5, rec.HoursAttended)
	}
}

func TestCloseRecordErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CloseRecord(ctx, CloseParams{ActivityID: 1, PersonID: 2, ExitAt: t0})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CloseRecord missing: want ErrNotFound got=%v", err)
	}

	open(t, s, 1, 2, "", t0)
	closeRec(t, s, 1, 2, t0.Add(time.Hour), 1)

	_, err = s.CloseRecord(ctx, CloseParams{ActivityID: 1, PersonID: 2, ExitAt: t0.Add(2 * time.Hour), HoursAttended: 2})
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("CloseRecord twice: want ErrAlreadyClosed got=%v", err)
	}
	got, err := s.GetRecord(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.HoursAttended != 1 || !got.ExitAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("closed record mutated: %+v", got)
	}

	open(t, s, 1, 3, "", t0)
	if _, err := s.CloseRecord(ctx, CloseParams{ActivityID: 1, PersonID: 3, ExitAt: t0, HoursAttended: -1}); err == nil {
		t.Fatalf("CloseRecord negative hours: expected error")
	}
}

func TestConcurrentCloseCompletesOnce(t *testing.T) {
	s := newTestStore(t)
	open(t, s, 9, 1, "", t0)

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		closed  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CloseRecord(context.Background(), CloseParams{
				ActivityID: 9, PersonID: 1, ExitAt: t0.Add(time.Duration(i+1) * time.Minute), HoursAttended: 0.5,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrAlreadyClosed):
				closed++
			default:
				t.Errorf("CloseRecord: unexpected error %v", err)
			}
		}(i)
	}
	wg.Wait()

	if success != 1 || closed != n-1 {
		t.Fatalf("want 1 success and %d already closed, got success=%d closed=%d", n-1, success, closed)
	}
}

func TestListAndSums(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	open(t, s, 1, 10, "Lúdica", t0)
	closeRec(t, s, 1, 10, t0.Add(time.Hour), 1.25)
	open(t, s, 1, 11, "Lúdica", t0)
	closeRec(t, s, 1, 11, t0.Add(2*time.Hour), 2)
	open(t, s, 1, 12, "Lúdica", t0) // open records never count towards hours
	open(t, s, 2, 10, "Actividad", t0)
	closeRec(t, s, 2, 10, t0.Add(30*time.Minute), 0.5)

	byActivity, err := s.ListByActivity(ctx, 1)
	if err != nil {
		t.Fatalf("ListByActivity: %v", err)
	}
	if len(byActivity) != 3 {
		t.Fatalf("ListByActivity: want=3 got=%d", len(byActivity))
	}

	all, err := s.ListByPerson(ctx, 10, "")
	if err != nil {
		t.Fatalf("ListByPerson: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListByPerson all: want=2 got=%d", len(all))
	}
	ludicas, err := s.ListByPerson(ctx, 10, "Lúdica")
	if err != nil {
		t.Fatalf("ListByPerson kind: %v", err)
	}
	if len(ludicas) != 1 || ludicas[0].ActivityID != 1 {
		t.Fatalf("ListByPerson kind: got=%+v", ludicas)
	}

	sum, err := s.SumHoursByActivity(ctx, 1)
	if err != nil {
		t.Fatalf("SumHoursByActivity: %v", err)
	}
	var want float64
	for _, r := range byActivity {
		if r.IsComplete() {
			want += r.HoursAttended
		}
	}
	if sum != want || sum != 3.25 {
		t.Fatalf("SumHoursByActivity: want=%v got=%v", want, sum)
	}

	empty, err := s.SumHoursByActivity(ctx, 99)
	if err != nil {
		t.Fatalf("SumHoursByActivity empty: %v", err)
	}
	if empty != 0 {
		t.Fatalf("SumHoursByActivity empty: want=0 got=%v", empty)
	}

	person, err := s.SumHoursByPerson(ctx, 10, "")
	if err != nil {
		t.Fatalf("SumHoursByPerson: %v", err)
	}
	if person != 1.75 {
		t.Fatalf("SumHoursByPerson: want=1.75 got=%v", person)
	}
	personKind, err := s.SumHoursByPerson(ctx, 10, "Actividad")
	if err != nil {
		t.Fatalf("SumHoursByPerson kind: %v", err)
	}
	if personKind != 0.5 {
		t.Fatalf("SumHoursByPerson kind: want=0.5 got=%v", personKind)
	}
}

func TestSummarize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	open(t, s, 1, 10, "", t0)
	closeRec(t, s, 1, 10, t0.Add(time.Hour), 1)
	open(t, s, 1, 11, "", t0)

	got, err := s.Summarize(ctx, []int64{1, 2})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := models.ActivityTotals{Entries: 2, Completions: 1, Hours: 1}
	if got[1] != want {
		t.Fatalf("Summarize[1]: want=%+v got=%+v", want, got[1])
	}
	if _, ok := got[2]; ok {
		t.Fatalf("Summarize[2]: expected no row, got=%+v", got[2])
	}

	none, err := s.Summarize(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("Summarize(nil): got=%v err=%v", none, err)
	}
}
