// Package telegram is the chat front end: a problem per /new, graded by the next text reply.
package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"geo-tutor/api/internal/tutor"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Tutor interface {
	CreateSession(ctx context.Context) (tutor.ProblemSession, error)
	CreateSessionFor(ctx context.Context, topic tutor.Topic) (tutor.ProblemSession, error)
	GradeSubmission(ctx context.Context, sessionID, userAnswer string) (tutor.Grade, error)
}

type Router struct {
	Bot   Sender
	Tutor Tutor
	State ChatState
	Log   *zap.Logger
}

func (r *Router) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(ctx, upd.Message)
		return
	}
	if text := strings.TrimSpace(upd.Message.Text); text != "" {
		r.handleAnswer(ctx, upd.Message.Chat.ID, text)
	}
}

func (r *Router) HandleCommand(ctx context.Context, m *tgbotapi.Message) {
	cid := m.Chat.ID
	switch m.Command() {
	case "start", "help":
		r.send(cid, "Hi! I set short geometry problems and check your answers.\n"+
			"Commands:\n/new [topic] - a new problem\n/topics - list topics")
	case "topics":
		msg := tgbotapi.NewMessage(cid, topicsText())
		msg.ReplyMarkup = makeTopicsKeyboard()
		r.sendMsg(msg)
	case "new":
		arg := strings.TrimSpace(m.CommandArguments())
		if arg == "" {
			r.newProblem(ctx, cid, "")
			return
		}
		topic, ok := tutor.ParseTopic(arg)
		if !ok {
			r.send(cid, "Unknown topic \""+arg+"\".\n\n"+topicsText())
			return
		}
		r.newProblem(ctx, cid, topic)
	default:
		r.send(cid, "Unknown command. Try /new or /topics.")
	}
}

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	topic, ok := topicFromCallback(cb.Data)
	if !ok {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	_, _ = r.Bot.Send(edit)
	r.newProblem(ctx, cid, topic)
}

// newProblem creates a session (random topic when topic is empty) and makes it the chat's current one.
func (r *Router) newProblem(ctx context.Context, chatID int64, topic tutor.Topic) {
	var (
		sess tutor.ProblemSession
		err  error
	)
	if topic == "" {
		sess, err = r.Tutor.CreateSession(ctx)
	} else {
		sess, err = r.Tutor.CreateSessionFor(ctx, topic)
	}
	if err != nil {
		r.log().Error("create session failed",
			zap.Int64("chat_id", chatID),
			zap.String("kind", tutor.Kind(err)),
			zap.Error(err),
		)
		r.send(chatID, "Sorry, I couldn't come up with a problem right now. Please try /new again.")
		return
	}
	if err := r.State.SetSession(ctx, chatID, sess.ID); err != nil {
		r.log().Error("save chat state failed", zap.Int64("chat_id", chatID), zap.Error(err))
		r.send(chatID, "Sorry, something went wrong. Please try /new again.")
		return
	}
	r.send(chatID, problemText(sess, topic))
}

// handleAnswer grades text against the chat's current session. A graded session is
// cleared; a failed grading keeps it so the student can resend.
func (r *Router) handleAnswer(ctx context.Context, chatID int64, text string) {
	sid, ok, err := r.State.Session(ctx, chatID)
	if err != nil {
		r.log().Error("load chat state failed", zap.Int64("chat_id", chatID), zap.Error(err))
		r.send(chatID, "Sorry, something went wrong. Please try again.")
		return
	}
	if !ok {
		r.send(chatID, "There is no open problem. Send /new to get one.")
		return
	}

	g, err := r.Tutor.GradeSubmission(ctx, sid, text)
	if err != nil {
		r.log().Error("grade submission failed",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", sid),
			zap.String("kind", tutor.Kind(err)),
			zap.Error(err),
		)
		if errors.Is(err, tutor.ErrSessionNotFound) {
			_ = r.State.Clear(ctx, chatID)
			r.send(chatID, "That problem is no longer available. Send /new to get another one.")
			return
		}
		r.send(chatID, "Sorry, I couldn't check your answer right now. Please send it again.")
		return
	}
	if err := r.State.Clear(ctx, chatID); err != nil {
		r.log().Warn("clear chat state failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	r.send(chatID, gradeText(g))
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, clip(text)))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().Warn("telegram send failed", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}
