package handle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"geo-tutor/api/internal/tutor"
)

type fakeSessions struct {
	createFn    func(ctx context.Context) (tutor.ProblemSession, error)
	createForFn func(ctx context.Context, topic tutor.Topic) (tutor.ProblemSession, error)
	gradeFn     func(ctx context.Context, sessionID, userAnswer string) (tutor.Grade, error)
}

func (f *fakeSessions) CreateSession(ctx context.Context) (tutor.ProblemSession, error) {
	return f.createFn(ctx)
}

func (f *fakeSessions) CreateSessionFor(ctx context.Context, topic tutor.Topic) (tutor.ProblemSession, error) {
	return f.createForFn(ctx, topic)
}

func (f *fakeSessions) GradeSubmission(ctx context.Context, sessionID, userAnswer string) (tutor.Grade, error) {
	return f.gradeFn(ctx, sessionID, userAnswer)
}

func newObservedHandle(svc Sessions) (*Handle, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return New(svc, zap.New(core)), logs
}

func TestGenerateProblem(t *testing.T) {
	sess := tutor.ProblemSession{ID: "s-1", ProblemText: "Find x.", FinalAnswer: 40}

	tests := []struct {
		name      string
		body      string
		svc       *fakeSessions
		wantCode  int
		wantBody  string
		wantTopic tutor.Topic
	}{
		{
			name: "random topic",
			svc: &fakeSessions{createFn: func(context.Context) (tutor.ProblemSession, error) {
				return sess, nil
			}},
			wantCode: http.StatusOK,
		},
		{
			name: "pinned topic",
			body: `{"topic":"rhombus"}`,
			svc: &fakeSessions{createForFn: func(_ context.Context, topic tutor.Topic) (tutor.ProblemSession, error) {
				if topic != tutor.TopicRhombus {
					return tutor.ProblemSession{}, fmt.Errorf("unexpected topic %q", topic)
				}
				return sess, nil
			}},
			wantCode: http.StatusOK,
		},
		{
			name: "format error is generic",
			svc: &fakeSessions{createFn: func(context.Context) (tutor.ProblemSession, error) {
				return tutor.ProblemSession{}, fmt.Errorf("%w: bad JSON", tutor.ErrGenerationFormat)
			}},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Failed to generate problem"}`,
		},
		{
			name: "persistence error is generic",
			svc: &fakeSessions{createFn: func(context.Context) (tutor.ProblemSession, error) {
				return tutor.ProblemSession{}, fmt.Errorf("%w: insert", tutor.ErrPersistence)
			}},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Failed to generate problem"}`,
		},
		{
			name:     "bad body",
			body:     `{"topic":`,
			svc:      &fakeSessions{},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Failed to generate problem"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newObservedHandle(tt.svc)
			rr := httptest.NewRecorder()
			h.GenerateProblem(rr, httptest.NewRequest(http.MethodPost, "/api/generate-problem", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
				return
			}
			var got generateResp
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, sess, got.Session)
		})
	}
}

func TestGenerateProblem_LogsKind(t *testing.T) {
	h, logs := newObservedHandle(&fakeSessions{createFn: func(context.Context) (tutor.ProblemSession, error) {
		return tutor.ProblemSession{}, fmt.Errorf("%w: insert", tutor.ErrPersistence)
	}})
	h.GenerateProblem(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate-problem", nil))

	entries := logs.FilterMessage("generate problem failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "persistence", entries[0].ContextMap()["kind"])
}

func TestSubmitAnswer(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		grade      tutor.Grade
		gradeErr   error
		wantAnswer string
		wantCode   int
		wantBody   string
	}{
		{
			name:       "string answer",
			body:       `{"sessionId":"s-1","userAnswer":"40"}`,
			grade:      tutor.Grade{IsCorrect: true, Feedback: "Great job!"},
			wantAnswer: "40",
			wantCode:   http.StatusOK,
			wantBody:   `{"feedback":"Great job!","isCorrect":true}`,
		},
		{
			name:       "number answer",
			body:       `{"sessionId":"s-1","userAnswer":12.0}`,
			grade:      tutor.Grade{IsCorrect: false, Feedback: "Not quite."},
			wantAnswer: "12.0",
			wantCode:   http.StatusOK,
			wantBody:   `{"feedback":"Not quite.","isCorrect":false}`,
		},
		{
			name:       "missing answer",
			body:       `{"sessionId":"s-1"}`,
			grade:      tutor.Grade{Feedback: "Try again."},
			wantAnswer: "",
			wantCode:   http.StatusOK,
			wantBody:   `{"feedback":"Try again.","isCorrect":false}`,
		},
		{
			name:       "unknown session",
			body:       `{"sessionId":"nope","userAnswer":"1"}`,
			gradeErr:   fmt.Errorf("grade: %w", tutor.ErrSessionNotFound),
			wantAnswer: "1",
			wantCode:   http.StatusInternalServerError,
			wantBody:   `{"error":"Submission failed"}`,
		},
		{
			name:     "bad json",
			body:     `not json`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Submission failed"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAnswer string
			h, _ := newObservedHandle(&fakeSessions{gradeFn: func(_ context.Context, id, answer string) (tutor.Grade, error) {
				gotAnswer = answer
				return tt.grade, tt.gradeErr
			}})
			rr := httptest.NewRecorder()
			h.SubmitAnswer(rr, httptest.NewRequest(http.MethodPost, "/api/submit-answer", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			assert.Equal(t, tt.wantAnswer, gotAnswer)
		})
	}
}

func TestAnswerText(t *testing.T) {
	assert.Equal(t, "", answerText(nil))
	assert.Equal(t, "", answerText(json.RawMessage("null")))
	assert.Equal(t, "12", answerText(json.RawMessage(`"12"`)))
	assert.Equal(t, "12", answerText(json.RawMessage(`12`)))
	assert.Equal(t, "true", answerText(json.RawMessage(`true`)))
	assert.Equal(t, `a "b"`, answerText(json.RawMessage(`"a \"b\""`)))
}
