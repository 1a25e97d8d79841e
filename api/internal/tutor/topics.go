package tutor

import (
	"math/rand/v2"
	"strings"
)

type Topic string

const (
	TopicAnglesOnLine       Topic = "angles on a straight line"
	TopicAnglesAtPoint      Topic = "angles at a point"
	TopicVerticallyOpposite Topic = "vertically opposite angles"
	TopicIsosceles          Topic = "isosceles triangle"
	TopicEquilateral        Topic = "equilateral triangle"
	TopicRightAngled        Topic = "right-angled triangle"
	TopicParallelogram      Topic = "parallelogram"
	TopicRhombus            Topic = "rhombus"
	TopicTrapezium          Topic = "trapezium"
)

// Topics is the closed set of subjects a problem can be generated for.
var Topics = []Topic{
	TopicAnglesOnLine,
	TopicAnglesAtPoint,
	TopicVerticallyOpposite,
	TopicIsosceles,
	TopicEquilateral,
	TopicRightAngled,
	TopicParallelogram,
	TopicRhombus,
	TopicTrapezium,
}

// RandomTopic picks one of Topics uniformly.
func RandomTopic() Topic {
	return Topics[rand.IntN(len(Topics))]
}

// ParseTopic matches s against Topics, ignoring case and surrounding spaces.
// Underscores and dashes are accepted in place of spaces ("angles_at_a_point").
func ParseTopic(s string) (Topic, bool) {
	norm := func(v string) string {
		v = strings.ToLower(strings.TrimSpace(v))
		return strings.NewReplacer("_", " ", "-", " ").Replace(v)
	}
	want := norm(s)
	for _, t := range Topics {
		if norm(string(t)) == want {
			return t, true
		}
	}
	return "", false
}
