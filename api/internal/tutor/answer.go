package tutor

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"geo-tutor/api/internal/util"
)

// plain decimal notation only; ParseFloat alone would also take "1_2" and hex floats
var reDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseAnswer converts a raw answer to a number. Anything that is not a
// decimal number (including "") becomes NaN, which equals nothing.
func ParseAnswer(raw string) float64 {
	s := strings.TrimSpace(raw)
	if !reDecimal.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsCorrect reports whether userAnswer is numerically equal to finalAnswer.
func IsCorrect(userAnswer string, finalAnswer int64) bool {
	return ParseAnswer(userAnswer) == float64(finalAnswer)
}

type generatedProblem struct {
	ProblemText *string  `json:"problem_text"`
	FinalAnswer *float64 `json:"final_answer"`
}

// ParseProblem extracts problem text and integer answer from a model reply.
// Code fences around the JSON are tolerated; every other defect is ErrGenerationFormat.
func ParseProblem(raw string) (problemText string, finalAnswer int64, err error) {
	var p generatedProblem
	if err := json.Unmarshal([]byte(util.StripCodeFences(raw)), &p); err != nil {
		return "", 0, fmt.Errorf("%w: bad JSON: %w", ErrGenerationFormat, err)
	}
	if p.ProblemText == nil || strings.TrimSpace(*p.ProblemText) == "" {
		return "", 0, fmt.Errorf("%w: problem_text is missing", ErrGenerationFormat)
	}
	if p.FinalAnswer == nil {
		return "", 0, fmt.Errorf("%w: final_answer is missing", ErrGenerationFormat)
	}
	f := *p.FinalAnswer
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return "", 0, fmt.Errorf("%w: final_answer %v is not an integer", ErrGenerationFormat, f)
	}
	return strings.TrimSpace(*p.ProblemText), int64(f), nil
}
