package handle

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"geo-tutor/api/internal/tutor"
)

const (
	maxBody = 64 << 10

	msgGenerateFailed = "Failed to generate problem"
	msgSubmitFailed   = "Submission failed"
)

type generateReq struct {
	Topic string `json:"topic,omitempty"`
}

type generateResp struct {
	Session tutor.ProblemSession `json:"session"`
}

// GenerateProblem creates a new session. The body is optional; {"topic": "..."} pins the topic.
func (h *Handle) GenerateProblem(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: msgGenerateFailed})
		return
	}
	var req generateReq
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: msgGenerateFailed})
			return
		}
	}

	var sess tutor.ProblemSession
	if req.Topic != "" {
		sess, err = h.svc.CreateSessionFor(r.Context(), tutor.Topic(req.Topic))
	} else {
		sess, err = h.svc.CreateSession(r.Context())
	}
	if err != nil {
		h.log.Error("generate problem failed",
			zap.String("kind", tutor.Kind(err)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: msgGenerateFailed})
		return
	}
	writeJSON(w, http.StatusOK, generateResp{Session: sess})
}

type submitReq struct {
	SessionID  string          `json:"sessionId"`
	UserAnswer json.RawMessage `json:"userAnswer"`
}

type submitResp struct {
	Feedback  string `json:"feedback"`
	IsCorrect bool   `json:"isCorrect"`
}

// SubmitAnswer grades {"sessionId", "userAnswer"}; the answer may be a JSON string or number.
func (h *Handle) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		h.log.Warn("bad submit body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResp{Error: msgSubmitFailed})
		return
	}

	g, err := h.svc.GradeSubmission(r.Context(), req.SessionID, answerText(req.UserAnswer))
	if err != nil {
		h.log.Error("submit answer failed",
			zap.String("session_id", req.SessionID),
			zap.String("kind", tutor.Kind(err)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: msgSubmitFailed})
		return
	}
	writeJSON(w, http.StatusOK, submitResp{Feedback: g.Feedback, IsCorrect: g.IsCorrect})
}

// answerText keeps the answer as received: JSON strings are unquoted,
// any other literal (number, bool) is kept as written.
func answerText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
