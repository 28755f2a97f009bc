package db

import (
	"context"
	"fmt"
)

// StaffRoles may register attendance on behalf of someone else.
var StaffRoles = []string{"Admin", "Instructor"}

// SeedData populates the database with initial data
func SeedData(ctx context.Context, d *DB) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	roles := append(append([]string{}, StaffRoles...), "Aprendiz")
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, d.Rebind("INSERT INTO roles (role) VALUES (?) ON CONFLICT DO NOTHING"), role); err != nil {
			return fmt.Errorf("error seeding roles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
