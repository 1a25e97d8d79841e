package tutor

import "errors"

var (
	// ErrGenerationFormat: the model answered, but not with a usable problem.
	ErrGenerationFormat = errors.New("generation format error")
	// ErrGeneration: the text-generation call itself failed.
	ErrGeneration = errors.New("generation error")
	// ErrPersistence: a store read or write failed.
	ErrPersistence = errors.New("persistence error")
	// ErrSessionNotFound: grading was requested for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownTopic: the requested topic is not in Topics.
	ErrUnknownTopic = errors.New("unknown topic")
)

// Kind returns a stable label for err, used in logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGenerationFormat):
		return "generation_format"
	case errors.Is(err, ErrGeneration):
		return "generation"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrUnknownTopic):
		return "unknown_topic"
	default:
		return "unknown"
	}
}
