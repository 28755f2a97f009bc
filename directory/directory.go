// Package directory reads the activity, event and user tables owned by the
// management side of the platform. It never writes to them.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"attendance_backend/db"
	"attendance_backend/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db         *db.DB
	staffRoles []string
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d, staffRoles: db.StaffRoles}
}

const activitySelect = `
	SELECT a.id, a.name, a.kind, COALESCE(e.name, '')
	FROM activities a
	LEFT JOIN events e ON e.id = a.event_id`

func (s *Store) Activity(ctx context.Context, id int64) (models.ActivityRef, error) {
	var ref models.ActivityRef
	err := s.db.QueryRowContext(ctx, activitySelect+` WHERE a.id = ?`, id).
		Scan(&ref.ID, &ref.Name, &ref.Kind, &ref.EventName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ActivityRef{}, ErrNotFound
	}
	if err != nil {
		return models.ActivityRef{}, fmt.Errorf("get activity: %w", err)
	}
	return ref, nil
}

// Activities lists activities of one kind, or all of them when kind is empty.
func (s *Store) Activities(ctx context.Context, kind string) ([]models.ActivityRef, error) {
	query := activitySelect
	var args []any
	if kind != "" {
		query += ` WHERE a.kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY a.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	refs := []models.ActivityRef{}
	for rows.Next() {
		var ref models.ActivityRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Kind, &ref.EventName); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Person returns display attributes, including the learner profile when one exists.
func (s *Store) Person(ctx context.Context, id int64) (models.PersonProfile, error) {
	var (
		p                      models.PersonProfile
		cohort, program, shift sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email,
		       lp.cohort, lp.program, lp.shift
		FROM users u
		LEFT JOIN learner_profiles lp ON lp.user_id = u.id
		WHERE u.id = ?`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &cohort, &program, &shift)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PersonProfile{}, ErrNotFound
	}
	if err != nil {
		return models.PersonProfile{}, fmt.Errorf("get person: %w", err)
	}
	if cohort.Valid || program.Valid || shift.Valid {
		p.Learner = &models.LearnerProfile{
			Cohort:  cohort.String,
			Program: program.String,
			Shift:   shift.String,
		}
	}
	return p, nil
}

// IsStaff reports whether the user holds a role allowed to register
// attendance for someone else.
func (s *Store) IsStaff(ctx context.Context, userID int64) (bool, error) {
	if len(s.staffRoles) == 0 {
		return false, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(s.staffRoles)), ", ")
	args := []any{userID}
	for _, r := range s.staffRoles {
		args = append(args, r)
	}

	var hasPermission bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = ?
			AND r.role IN (`+marks+`)
		)`, args...,
	).Scan(&hasPermission)
	if err != nil {
		return false, fmt.Errorf("check staff role: %w", err)
	}
	return hasPermission, nil
}

// Roles lists the role names a user holds, alphabetically.
func (s *Store) Roles(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.role FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.role ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
