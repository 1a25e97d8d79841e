package tutor

import "fmt"

func problemPrompt(topic Topic) string {
	return fmt.Sprintf(`You are a math teacher for 13-year-old students.
Create one geometry question about %q.
The problem should be realistic, clearly described, and solvable with integer answers.
Return ONLY raw JSON:
{
  "problem_text": "the question text",
  "final_answer": number
}`, string(topic))
}

func feedbackPrompt(s ProblemSession, userAnswer string) string {
	return fmt.Sprintf(`The user solved this math problem:
Problem: %s
Correct Answer: %d
User Answer: %s

Provide short feedback (1-2 sentences).
If correct, praise them; if incorrect, gently explain why.`, s.ProblemText, s.FinalAnswer, userAnswer)
}
