package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"geo-tutor/api/internal/tutor"
)

// SessionRepo stores problem sessions and their submissions in Postgres.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// InsertSession assigns a new id and stores the session.
func (r *SessionRepo) InsertSession(ctx context.Context, problemText string, finalAnswer int64) (tutor.ProblemSession, error) {
	id := uuid.NewString()
	const q = `
insert into math_problem_sessions (id, problem_text, final_answer)
values ($1, $2, $3)
returning created_at`
	var ts time.Time
	if err := r.DB.QueryRowContext(ctx, q, id, problemText, finalAnswer).Scan(&ts); err != nil {
		return tutor.ProblemSession{}, fmt.Errorf("db.QueryRowContext(insert session) > %w", err)
	}
	return tutor.ProblemSession{
		ID:          id,
		ProblemText: problemText,
		FinalAnswer: finalAnswer,
		CreatedAt:   ts,
	}, nil
}

// GetSessionByID returns tutor.ErrSessionNotFound for unknown and malformed ids.
func (r *SessionRepo) GetSessionByID(ctx context.Context, id string) (tutor.ProblemSession, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return tutor.ProblemSession{}, tutor.ErrSessionNotFound
	}
	const q = `
select id, problem_text, final_answer, created_at
from math_problem_sessions
where id = $1`
	var s tutor.ProblemSession
	// uuid.Parse accepts urn and braced forms that Postgres does not
	err = r.DB.QueryRowContext(ctx, q, u.String()).Scan(&s.ID, &s.ProblemText, &s.FinalAnswer, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tutor.ProblemSession{}, tutor.ErrSessionNotFound
	}
	if err != nil {
		return tutor.ProblemSession{}, fmt.Errorf("db.QueryRowContext(get session) > %w", err)
	}
	return s, nil
}

// InsertSubmission assigns a new id and stores the graded attempt.
func (r *SessionRepo) InsertSubmission(ctx context.Context, sub tutor.Submission) (tutor.Submission, error) {
	sub.ID = uuid.NewString()
	const q = `
insert into math_problem_submissions (id, session_id, user_answer, is_correct, feedback)
values ($1, $2, $3, $4, $5)
returning created_at`
	err := r.DB.QueryRowContext(ctx, q, sub.ID, sub.SessionID, sub.UserAnswer, sub.IsCorrect, sub.Feedback).
		Scan(&sub.CreatedAt)
	if err != nil {
		return tutor.Submission{}, fmt.Errorf("db.QueryRowContext(insert submission) > %w", err)
	}
	return sub, nil
}

// ListSubmissions returns the attempts for a session, oldest first.
func (r *SessionRepo) ListSubmissions(ctx context.Context, sessionID string) ([]tutor.Submission, error) {
	u, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, nil
	}
	const q = `
select id, session_id, user_answer, is_correct, feedback, created_at
from math_problem_submissions
where session_id = $1
order by created_at`
	rows, err := r.DB.QueryContext(ctx, q, u.String())
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext(list submissions) > %w", err)
	}
	defer rows.Close()

	var out []tutor.Submission
	for rows.Next() {
		var s tutor.Submission
		if err := rows.Scan(&s.ID, &s.SessionID, &s.UserAnswer, &s.IsCorrect, &s.Feedback, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan(submission) > %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err(list submissions) > %w", err)
	}
	return out, nil
}

func (r *SessionRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
