// Package tutor implements the problem session lifecycle: a geometry problem is
// generated and stored as a session, then answers are graded against it.
package tutor

import (
	"context"
	"time"
)

// ProblemSession is a generated problem awaiting (or having received) answers.
// ProblemText and FinalAnswer never change after creation.
type ProblemSession struct {
	ID          string    `json:"id"`
	ProblemText string    `json:"problem_text"`
	FinalAnswer int64     `json:"final_answer"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is one graded answer attempt. It is written once and never updated.
type Submission struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
	Feedback   string    `json:"feedback"`
	CreatedAt  time.Time `json:"created_at"`
}

// Grade is what the caller gets back after a submission was recorded.
type Grade struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// Generator produces free text for a prompt (an LLM in production).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Store persists sessions and submissions.
// GetSessionByID must return an error matching ErrSessionNotFound when the id is unknown.
type Store interface {
	InsertSession(ctx context.Context, problemText string, finalAnswer int64) (ProblemSession, error)
	GetSessionByID(ctx context.Context, id string) (ProblemSession, error)
	InsertSubmission(ctx context.Context, sub Submission) (Submission, error)
}
