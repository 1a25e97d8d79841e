package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"geo-tutor/api/internal/tutor"
)

// Memory is a process-local store for development and tests. Data is lost on exit.
type Memory struct {
	mu          sync.Mutex
	sessions    map[string]tutor.ProblemSession
	submissions []tutor.Submission
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]tutor.ProblemSession),
		now:      time.Now,
	}
}

func (m *Memory) InsertSession(_ context.Context, problemText string, finalAnswer int64) (tutor.ProblemSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := tutor.ProblemSession{
		ID:          uuid.NewString(),
		ProblemText: problemText,
		FinalAnswer: finalAnswer,
		CreatedAt:   m.now().UTC(),
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *Memory) GetSessionByID(_ context.Context, id string) (tutor.ProblemSession, error) {
	if u, err := uuid.Parse(id); err == nil {
		id = u.String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return tutor.ProblemSession{}, tutor.ErrSessionNotFound
	}
	return s, nil
}

// InsertSubmission rejects submissions for unknown sessions, like the foreign key does in Postgres.
func (m *Memory) InsertSubmission(_ context.Context, sub tutor.Submission) (tutor.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sub.SessionID]; !ok {
		return tutor.Submission{}, fmt.Errorf("insert submission: session %q does not exist", sub.SessionID)
	}
	sub.ID = uuid.NewString()
	sub.CreatedAt = m.now().UTC()
	m.submissions = append(m.submissions, sub)
	return sub, nil
}

func (m *Memory) ListSubmissions(_ context.Context, sessionID string) ([]tutor.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tutor.Submission
	for _, s := range m.submissions {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

// SessionCount is the number of stored sessions.
func (m *Memory) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Memory) Ping(context.Context) error { return nil }
