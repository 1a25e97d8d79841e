package tutor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geo-tutor/api/internal/store"
	"geo-tutor/api/internal/tutor"
)

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func isProblemPrompt(topic tutor.Topic) any {
	return mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, `"`+string(topic)+`"`) && strings.Contains(p, "final_answer")
	})
}

var isFeedbackPrompt = mock.MatchedBy(func(p string) bool {
	return strings.Contains(p, "Provide short feedback")
})

// brokenStore fails the configured operations and delegates the rest.
type brokenStore struct {
	*store.Memory
	failInsertSession    bool
	failGet              bool
	failInsertSubmission bool
}

func (b *brokenStore) InsertSession(ctx context.Context, text string, ans int64) (tutor.ProblemSession, error) {
	if b.failInsertSession {
		return tutor.ProblemSession{}, errors.New("connection reset")
	}
	return b.Memory.InsertSession(ctx, text, ans)
}

func (b *brokenStore) GetSessionByID(ctx context.Context, id string) (tutor.ProblemSession, error) {
	if b.failGet {
		return tutor.ProblemSession{}, errors.New("connection reset")
	}
	return b.Memory.GetSessionByID(ctx, id)
}

func (b *brokenStore) InsertSubmission(ctx context.Context, s tutor.Submission) (tutor.Submission, error) {
	if b.failInsertSubmission {
		return tutor.Submission{}, errors.New("connection reset")
	}
	return b.Memory.InsertSubmission(ctx, s)
}

func fixedTopic(t tutor.Topic) tutor.Option {
	return tutor.WithTopicPicker(func() tutor.Topic { return t })
}

func TestCreateSession_AllTopics(t *testing.T) {
	for _, topic := range tutor.Topics {
		t.Run(string(topic), func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, isProblemPrompt(topic)).
				Return(`{"problem_text":"A problem about `+string(topic)+`.","final_answer":30}`, nil).Once()
			mem := store.NewMemory()

			sess, err := tutor.New(gen, mem, fixedTopic(topic)).CreateSession(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, sess.ID)
			assert.NotEmpty(t, sess.ProblemText)
			assert.Equal(t, int64(30), sess.FinalAnswer)
			assert.Equal(t, 1, mem.SessionCount())
			gen.AssertExpectations(t)
		})
	}
}

func TestCreateSession_FencedReply(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("```json\n{\"problem_text\":\"Two angles on a line...\",\"final_answer\":7}\n```", nil)
	mem := store.NewMemory()

	sess, err := tutor.New(gen, mem).CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Two angles on a line...", sess.ProblemText)
	assert.Equal(t, int64(7), sess.FinalAnswer)
}

func TestCreateSession_Failures(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		genErr    error
		failStore bool
		wantErr   error
	}{
		{name: "prose reply", reply: "Here is a nice problem for you!", wantErr: tutor.ErrGenerationFormat},
		{name: "missing field", reply: `{"problem_text":"Find x."}`, wantErr: tutor.ErrGenerationFormat},
		{name: "generator down", genErr: errors.New("503"), wantErr: tutor.ErrGeneration},
		{name: "store down", reply: `{"problem_text":"Find x.","final_answer":7}`, failStore: true, wantErr: tutor.ErrPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything).Return(tt.reply, tt.genErr)
			st := &brokenStore{Memory: store.NewMemory(), failInsertSession: tt.failStore}

			sess, err := tutor.New(gen, st).CreateSession(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, sess.ID)
			assert.Equal(t, 0, st.SessionCount())
		})
	}
}

func TestCreateSessionFor_UnknownTopic(t *testing.T) {
	gen := &mockGenerator{}
	_, err := tutor.New(gen, store.NewMemory()).CreateSessionFor(context.Background(), "circle")
	assert.ErrorIs(t, err, tutor.ErrUnknownTopic)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGradeSubmission(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"12", true},
		{"12.0", true},
		{"abc", false},
		{"11", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemory()
			sess, err := mem.InsertSession(ctx, "Find x.", 12)
			require.NoError(t, err)

			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "Problem: Find x.") &&
					strings.Contains(p, "Correct Answer: 12") &&
					strings.Contains(p, "User Answer: "+tt.answer)
			})).Return("  Nice try.\n", nil).Once()

			g, err := tutor.New(gen, mem).GradeSubmission(ctx, sess.ID, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.IsCorrect)
			assert.Equal(t, "Nice try.", g.Feedback)

			subs, err := mem.ListSubmissions(ctx, sess.ID)
			require.NoError(t, err)
			require.Len(t, subs, 1)
			assert.Equal(t, tt.answer, subs[0].UserAnswer)
			assert.Equal(t, tt.want, subs[0].IsCorrect)
			assert.Equal(t, "Nice try.", subs[0].Feedback)
			gen.AssertExpectations(t)
		})
	}
}

func TestGradeSubmission_UnknownSession(t *testing.T) {
	gen := &mockGenerator{}
	mem := store.NewMemory()

	_, err := tutor.New(gen, mem).GradeSubmission(context.Background(), "5f1c7a52-9c1b-4c39-9d0e-1f2b3c4d5e6f", "12")
	assert.ErrorIs(t, err, tutor.ErrSessionNotFound)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGradeSubmission_Failures(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		genErr   error
		failGet  bool
		failIns  bool
		wantErr  error
	}{
		{name: "store read fails", failGet: true, wantErr: tutor.ErrPersistence},
		{name: "feedback call fails", genErr: errors.New("timeout"), wantErr: tutor.ErrGeneration},
		{name: "empty feedback", feedback: " \n", wantErr: tutor.ErrGenerationFormat},
		{name: "store write fails", feedback: "Great!", failIns: true, wantErr: tutor.ErrPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := &brokenStore{Memory: store.NewMemory(), failGet: tt.failGet, failInsertSubmission: tt.failIns}
			sess, err := st.Memory.InsertSession(ctx, "Find x.", 12)
			require.NoError(t, err)

			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything).Return(tt.feedback, tt.genErr)

			g, err := tutor.New(gen, st).GradeSubmission(ctx, sess.ID, "12")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tutor.Grade{}, g)

			subs, err := st.ListSubmissions(ctx, sess.ID)
			require.NoError(t, err)
			assert.Empty(t, subs)
		})
	}
}

func TestRegradingAppendsSubmissions(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess, err := mem.InsertSession(ctx, "Find x.", 12)
	require.NoError(t, err)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("Feedback.", nil)
	svc := tutor.New(gen, mem)

	for i := 0; i < 3; i++ {
		g, err := svc.GradeSubmission(ctx, sess.ID, "12")
		require.NoError(t, err)
		assert.True(t, g.IsCorrect)
	}
	subs, err := mem.ListSubmissions(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 3)
}

type countingRecorder struct {
	created, correct, incorrect int
	failures                    []string
}

func (r *countingRecorder) SessionCreated(tutor.Topic) { r.created++ }
func (r *countingRecorder) SubmissionGraded(ok bool) {
	if ok {
		r.correct++
	} else {
		r.incorrect++
	}
}
func (r *countingRecorder) Failed(op string, err error) {
	r.failures = append(r.failures, op+":"+tutor.Kind(err))
}

func TestEndToEnd_IsoscelesTriangle(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	rec := &countingRecorder{}

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, isProblemPrompt(tutor.TopicIsosceles)).
		Return(`{"problem_text":"An isosceles triangle has a vertex angle of 100 degrees. Find one base angle.","final_answer":40}`, nil).Once()
	gen.On("Generate", mock.Anything, isFeedbackPrompt).
		Return("Excellent! The base angles are equal, so (180 - 100) / 2 = 40.", nil).Once()

	svc := tutor.New(gen, mem, fixedTopic(tutor.TopicIsosceles), tutor.WithRecorder(rec))

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sess.FinalAnswer)

	g, err := svc.GradeSubmission(ctx, sess.ID, "40")
	require.NoError(t, err)
	assert.True(t, g.IsCorrect)
	assert.NotEmpty(t, g.Feedback)

	subs, err := mem.ListSubmissions(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sess.ID, subs[0].SessionID)
	assert.True(t, subs[0].IsCorrect)

	_, err = svc.GradeSubmission(ctx, "unknown", "40")
	require.ErrorIs(t, err, tutor.ErrSessionNotFound)

	assert.Equal(t, 1, rec.created)
	assert.Equal(t, 1, rec.correct)
	assert.Equal(t, []string{"grade_submission:session_not_found"}, rec.failures)
	gen.AssertExpectations(t)
}
