package db

import (
	"context"
	"fmt"
)

// Timestamps in attendance_records are unix milliseconds so both drivers
// scan them identically.
const postgresSchema = `
-- Create users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    first_name VARCHAR(50) NOT NULL,
    last_name VARCHAR(50) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

-- Create roles table
CREATE TABLE IF NOT EXISTS roles (
    id SERIAL PRIMARY KEY,
    role VARCHAR(255) UNIQUE NOT NULL
);

-- Create user_roles table
CREATE TABLE IF NOT EXISTS user_roles (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role_id INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(user_id, role_id)
);

-- Create learner_profiles table
CREATE TABLE IF NOT EXISTS learner_profiles (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    cohort VARCHAR(50) NOT NULL DEFAULT '',
    program VARCHAR(255) NOT NULL DEFAULT '',
    shift VARCHAR(50) NOT NULL DEFAULT ''
);

-- Create events table
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);

-- Create activities table
CREATE TABLE IF NOT EXISTS activities (
    id SERIAL PRIMARY KEY,
    event_id INTEGER REFERENCES events(id) ON DELETE SET NULL,
    name VARCHAR(255) NOT NULL,
    kind VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

-- Create attendance_records table
CREATE TABLE IF NOT EXISTS attendance_records (
    activity_id BIGINT NOT NULL,
    person_id BIGINT NOT NULL,
    activity_kind VARCHAR(100) NOT NULL DEFAULT '',
    entry_at BIGINT,
    exit_at BIGINT,
    entry_registered_by BIGINT,
    exit_registered_by BIGINT,
    status VARCHAR(20) NOT NULL,
    hours_attended DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    PRIMARY KEY (activity_id, person_id),
    CHECK (exit_at IS NULL OR entry_at IS NOT NULL),
    CHECK (hours_attended >= 0)
);

CREATE INDEX IF NOT EXISTS attendance_records_person_idx ON attendance_records (person_id, activity_kind);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT UNIQUE NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    role TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role_id INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(user_id, role_id)
);

CREATE TABLE IF NOT EXISTS learner_profiles (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    cohort TEXT NOT NULL DEFAULT '',
    program TEXT NOT NULL DEFAULT '',
    shift TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id INTEGER REFERENCES events(id) ON DELETE SET NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT '',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attendance_records (
    activity_id INTEGER NOT NULL,
    person_id INTEGER NOT NULL,
    activity_kind TEXT NOT NULL DEFAULT '',
    entry_at INTEGER,
    exit_at INTEGER,
    entry_registered_by INTEGER,
    exit_registered_by INTEGER,
    status TEXT NOT NULL,
    hours_attended REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (activity_id, person_id),
    CHECK (exit_at IS NULL OR entry_at IS NOT NULL),
    CHECK (hours_attended >= 0)
);

CREATE INDEX IF NOT EXISTS attendance_records_person_idx ON attendance_records (person_id, activity_kind);
`

// InitSchema initializes the database schema
func InitSchema(ctx context.Context, d *DB) error {
	schema := postgresSchema
	if d.Dialect == SQLite {
		schema = sqliteSchema
	}
	if _, err := d.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error initializing database schema: %w", err)
	}
	return nil
}
