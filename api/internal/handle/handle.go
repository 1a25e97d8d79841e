package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"geo-tutor/api/internal/tutor"
)

// Sessions is the tutor surface the HTTP handlers need.
type Sessions interface {
	CreateSession(ctx context.Context) (tutor.ProblemSession, error)
	CreateSessionFor(ctx context.Context, topic tutor.Topic) (tutor.ProblemSession, error)
	GradeSubmission(ctx context.Context, sessionID, userAnswer string) (tutor.Grade, error)
}

type Handle struct {
	svc Sessions
	log *zap.Logger
}

func New(svc Sessions, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		svc: svc,
		log: log,
	}
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
