package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance_backend/db"
	"attendance_backend/models"
)

const recordColumns = `activity_id, person_id, activity_kind, entry_at, exit_at,
	entry_registered_by, exit_registered_by, status, hours_attended, created_at`

// Store is the SQL ledger. It works against Postgres and SQLite.
type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d, now: time.Now}
}

var _ Ledger = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.AttendanceRecord, error) {
	var (
		rec             models.AttendanceRecord
		entryAt, exitAt sql.NullInt64
		entryBy, exitBy sql.NullInt64
		status          string
		createdAt       int64
	)
	if err := row.Scan(
		&rec.ActivityID,
		&rec.PersonID,
		&rec.ActivityKind,
		&entryAt,
		&exitAt,
		&entryBy,
		&exitBy,
		&status,
		&rec.HoursAttended,
		&createdAt,
	); err != nil {
		return models.AttendanceRecord{}, err
	}
	if entryAt.Valid {
		t := fromMillis(entryAt.Int64)
		rec.EntryAt = &t
	}
	if exitAt.Valid {
		t := fromMillis(exitAt.Int64)
		rec.ExitAt = &t
	}
	if entryBy.Valid {
		v := entryBy.Int64
		rec.EntryRegisteredBy = &v
	}
	if exitBy.Valid {
		v := exitBy.Int64
		rec.ExitRegisteredBy = &v
	}
	rec.Status = models.AttendanceStatus(status)
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

func (s *Store) GetRecord(ctx context.Context, activityID, personID int64) (models.AttendanceRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE activity_id = ? AND person_id = ?`,
		activityID, personID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.AttendanceRecord{}, ErrNotFound
	}
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("get attendance record: %w", err)
	}
	return rec, nil
}

func (s *Store) CreateOpenRecord(ctx context.Context, p OpenParams) (models.AttendanceRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (
			activity_id, person_id, activity_kind, entry_at, entry_registered_by,
			status, hours_attended, created_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT (activity_id, person_id) DO NOTHING
		RETURNING `+recordColumns,
		p.ActivityID,
		p.PersonID,
		p.ActivityKind,
		toMillis(p.EntryAt),
		p.RegisteredBy,
		string(models.StatusOpen),
		toMillis(s.now()),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.AttendanceRecord{}, ErrAlreadyExists
	}
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("create attendance record: %w", err)
	}
	return rec, nil
}

// CloseRecord sets the exit side only if the entry is set and the exit is not.
func (s *Store) CloseRecord(ctx context.Context, p CloseParams) (models.AttendanceRecord, error) {
	if p.HoursAttended < 0 {
		return models.AttendanceRecord{}, fmt.Errorf("close attendance record: negative hours %v", p.HoursAttended)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET exit_at = ?, exit_registered_by = ?, hours_attended = ?, status = ?
		WHERE activity_id = ? AND person_id = ?
		  AND entry_at IS NOT NULL AND exit_at IS NULL
		RETURNING `+recordColumns,
		toMillis(p.ExitAt),
		p.RegisteredBy,
		p.HoursAttended,
		string(models.StatusComplete),
		p.ActivityID,
		p.PersonID,
	))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.AttendanceRecord{}, fmt.Errorf("close attendance record: %w", err)
	}

	current, getErr := s.GetRecord(ctx, p.ActivityID, p.PersonID)
	if getErr != nil {
		return models.AttendanceRecord{}, getErr
	}
	if current.ExitAt != nil {
		return models.AttendanceRecord{}, ErrAlreadyClosed
	}
	return models.AttendanceRecord{}, fmt.Errorf("close attendance record: record has no entry")
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]models.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) ListByActivity(ctx context.Context, activityID int64) ([]models.AttendanceRecord, error) {
	records, err := s.list(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE activity_id = ?
		 ORDER BY created_at DESC, person_id ASC`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance by activity: %w", err)
	}
	return records, nil
}

func (s *Store) ListByPerson(ctx context.Context, personID int64, kind string) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE person_id = ?`
	args := []any{personID}
	if kind != "" {
		query += ` AND activity_kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, activity_id ASC`

	records, err := s.list(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance by person: %w", err)
	}
	return records, nil
}

func (s *Store) SumHoursByActivity(ctx context.Context, activityID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(hours_attended), 0.0) FROM attendance_records
		 WHERE activity_id = ? AND status = ?`,
		activityID, string(models.StatusComplete),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum hours by activity: %w", err)
	}
	return total, nil
}

func (s *Store) SumHoursByPerson(ctx context.Context, personID int64, kind string) (float64, error) {
	query := `SELECT COALESCE(SUM(hours_attended), 0.0) FROM attendance_records
		WHERE person_id = ? AND status = ?`
	args := []any{personID, string(models.StatusComplete)}
	if kind != "" {
		query += ` AND activity_kind = ?`
		args = append(args, kind)
	}
	var total float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum hours by person: %w", err)
	}
	return total, nil
}

// Summarize returns totals only for activities that have records.
func (s *Store) Summarize(ctx context.Context, activityIDs []int64) (map[int64]models.ActivityTotals, error) {
	out := make(map[int64]models.ActivityTotals, len(activityIDs))
	if len(activityIDs) == 0 {
		return out, nil
	}
	args := []any{string(models.StatusComplete), string(models.StatusComplete)}
	marks := make([]string, 0, len(activityIDs))
	for _, id := range activityIDs {
		marks = append(marks, "?")
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT activity_id,
		       COUNT(entry_at),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN hours_attended ELSE 0.0 END), 0.0)
		FROM attendance_records
		WHERE activity_id IN (`+strings.Join(marks, ", ")+`)
		GROUP BY activity_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			totals models.ActivityTotals
		)
		if err := rows.Scan(&id, &totals.Entries, &totals.Completions, &totals.Hours); err != nil {
			return nil, fmt.Errorf("summarize attendance: %w", err)
		}
		out[id] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	return out, nil
}
