package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"geo-tutor/api/internal/tutor"
)

const callbackNewPrefix = "new:"

// topic buttons, two per row; callback data carries the index into tutor.Topics
func makeTopicsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, t := range tutor.Topics {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(titleCase(string(t)), callbackNewPrefix+strconv.Itoa(i)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func topicFromCallback(data string) (tutor.Topic, bool) {
	s, ok := strings.CutPrefix(data, callbackNewPrefix)
	if !ok {
		return "", false
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(tutor.Topics) {
		return "", false
	}
	return tutor.Topics[i], true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func topicsText() string {
	var b strings.Builder
	b.WriteString("Topics:\n")
	for _, t := range tutor.Topics {
		b.WriteString("• ")
		b.WriteString(string(t))
		b.WriteString("\n")
	}
	b.WriteString("\nTap one below or send /new <topic>.")
	return b.String()
}

func problemText(s tutor.ProblemSession, topic tutor.Topic) string {
	var b strings.Builder
	b.WriteString("📐 ")
	if topic != "" {
		b.WriteString(titleCase(string(topic)))
		b.WriteString("\n\n")
	}
	b.WriteString(s.ProblemText)
	b.WriteString("\n\nReply with your answer as a number.")
	return b.String()
}

func gradeText(g tutor.Grade) string {
	if g.IsCorrect {
		return "✅ Correct!\n\n" + g.Feedback + "\n\nSend /new for another problem."
	}
	return "❌ Not quite.\n\n" + g.Feedback + "\n\nSend /new to try another problem."
}

// Telegram messages are limited to 4096 characters
func clip(text string) string {
	const limit = 3900
	if r := []rune(text); len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return text
}
