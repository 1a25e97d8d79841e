package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Open connects to Postgres through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open > %w", err)
	}
	// interactive traffic, a handful of rps at most
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping > %w", err)
	}
	return db, nil
}

var schema = []string{
	`create table if not exists math_problem_sessions (
  id           uuid primary key,
  created_at   timestamptz not null default now(),
  problem_text text not null,
  final_answer bigint not null
)`,
	`create table if not exists math_problem_submissions (
  id          uuid primary key,
  created_at  timestamptz not null default now(),
  session_id  uuid not null references math_problem_sessions(id),
  user_answer text not null,
  is_correct  boolean not null,
  feedback    text not null
)`,
	`create index if not exists math_problem_submissions_session_id_idx
  on math_problem_submissions (session_id, created_at)`,
}

// Migrate creates the session and submission tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d > %w", i+1, err)
		}
	}
	return nil
}
