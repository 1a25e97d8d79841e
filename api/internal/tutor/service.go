package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Recorder receives lifecycle events, e.g. for metrics.
type Recorder interface {
	SessionCreated(topic Topic)
	SubmissionGraded(correct bool)
	Failed(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) SessionCreated(Topic)  {}
func (nopRecorder) SubmissionGraded(bool) {}
func (nopRecorder) Failed(string, error)  {}

// Service runs the two-step protocol: CreateSession, then GradeSubmission.
// It holds no state of its own; the store is the only shared state.
type Service struct {
	gen   Generator
	store Store
	log   *zap.Logger
	rec   Recorder
	pick  func() Topic
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }

// WithTopicPicker replaces the uniform random topic choice.
func WithTopicPicker(pick func() Topic) Option { return func(s *Service) { s.pick = pick } }

func New(gen Generator, store Store, opts ...Option) *Service {
	s := &Service{
		gen:   gen,
		store: store,
		log:   zap.NewNop(),
		rec:   nopRecorder{},
		pick:  RandomTopic,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateSession generates a problem on a random topic and stores it.
func (s *Service) CreateSession(ctx context.Context) (ProblemSession, error) {
	return s.CreateSessionFor(ctx, s.pick())
}

// CreateSessionFor generates a problem on the given topic and stores it.
// Nothing is stored unless the model reply parses completely.
func (s *Service) CreateSessionFor(ctx context.Context, topic Topic) (ProblemSession, error) {
	if t, ok := ParseTopic(string(topic)); ok {
		topic = t
	}
	sess, err := s.createSession(ctx, topic)
	if err != nil {
		s.rec.Failed("create_session", err)
		return ProblemSession{}, err
	}
	s.rec.SessionCreated(topic)
	s.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("topic", string(topic)),
	)
	return sess, nil
}

func (s *Service) createSession(ctx context.Context, topic Topic) (ProblemSession, error) {
	if _, ok := ParseTopic(string(topic)); !ok {
		return ProblemSession{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	raw, err := s.gen.Generate(ctx, problemPrompt(topic))
	if err != nil {
		return ProblemSession{}, fmt.Errorf("%w: problem: %w", ErrGeneration, err)
	}
	text, answer, err := ParseProblem(raw)
	if err != nil {
		s.log.Debug("unusable problem reply", zap.String("raw", raw))
		return ProblemSession{}, err
	}

	sess, err := s.store.InsertSession(ctx, text, answer)
	if err != nil {
		return ProblemSession{}, fmt.Errorf("%w: insert session: %w", ErrPersistence, err)
	}
	return sess, nil
}

// GradeSubmission grades userAnswer against the stored session, asks the
// model for feedback and records the submission. The grade is returned only
// if the submission was recorded.
func (s *Service) GradeSubmission(ctx context.Context, sessionID, userAnswer string) (Grade, error) {
	g, err := s.gradeSubmission(ctx, sessionID, userAnswer)
	if err != nil {
		s.rec.Failed("grade_submission", err)
		return Grade{}, err
	}
	s.rec.SubmissionGraded(g.IsCorrect)
	s.log.Info("submission graded",
		zap.String("session_id", sessionID),
		zap.Bool("is_correct", g.IsCorrect),
	)
	return g, nil
}

func (s *Service) gradeSubmission(ctx context.Context, sessionID, userAnswer string) (Grade, error) {
	sess, err := s.store.GetSessionByID(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return Grade{}, fmt.Errorf("grade %q: %w", sessionID, err)
	}
	if err != nil {
		return Grade{}, fmt.Errorf("%w: get session: %w", ErrPersistence, err)
	}

	correct := IsCorrect(userAnswer, sess.FinalAnswer)

	feedback, err := s.gen.Generate(ctx, feedbackPrompt(sess, userAnswer))
	if err != nil {
		return Grade{}, fmt.Errorf("%w: feedback: %w", ErrGeneration, err)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return Grade{}, fmt.Errorf("%w: empty feedback", ErrGenerationFormat)
	}

	_, err = s.store.InsertSubmission(ctx, Submission{
		SessionID:  sess.ID,
		UserAnswer: userAnswer,
		IsCorrect:  correct,
		Feedback:   feedback,
	})
	if err != nil {
		return Grade{}, fmt.Errorf("%w: insert submission: %w", ErrPersistence, err)
	}
	return Grade{IsCorrect: correct, Feedback: feedback}, nil
}
