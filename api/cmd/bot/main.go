package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"geo-tutor/api/internal/app"
	"geo-tutor/api/internal/config"
	"geo-tutor/api/internal/httpserver"
	"geo-tutor/api/internal/telegram"
	"geo-tutor/api/internal/util"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := util.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logger.Fatal("missing required env TELEGRAM_BOT_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("telegram init failed", zap.Error(err))
	}
	bot.Debug = false

	state, closeState := chatState(cfg, logger)
	defer func() {
		if err := closeState(); err != nil {
			logger.Warn("close chat state failed", zap.Error(err))
		}
	}()

	r := &telegram.Router{
		Bot:   bot,
		Tutor: a.Tutor,
		State: state,
		Log:   logger.Named("bot"),
	}

	base := httpserver.NewBase(httpserver.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		DB:             a.Store,
		Log:            logger.Named("access"),
	})
	addr := "0.0.0.0:" + cfg.Port

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		err = runWebhook(ctx, addr, bot, base, r, webhookURL, logger)
	} else {
		err = runPollingMode(ctx, addr, bot, base, r, logger)
	}
	if err != nil {
		logger.Error("bot stopped", zap.Error(err))
	}
}

// chatState picks redis when REDIS_ADDR is set; the returned func closes its client.
func chatState(cfg *config.Config, log *zap.Logger) (telegram.ChatState, func() error) {
	if cfg.RedisAddr == "" {
		return &telegram.MemoryState{}, func() error { return nil }
	}
	log.Info("chat state in redis", zap.String("addr", cfg.RedisAddr))
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return telegram.NewRedisState(rdb, telegram.DefaultStateTTL), rdb.Close
}

// ---------------- Modes -----------------

func runWebhook(ctx context.Context, addr string, bot *tgbotapi.BotAPI, base http.Handler, r *telegram.Router, baseURL string, log *zap.Logger) error {
	// secret path derived from the token
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	updates := make(chan tgbotapi.Update, 100)
	mux := http.NewServeMux()
	mux.Handle("/", base)
	mux.HandleFunc("POST "+path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("bad webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		select {
		case updates <- *upd:
		case <-req.Context().Done():
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				r.HandleUpdate(ctx, upd)
			}
		}
	}()

	log.Info("webhook mode", zap.String("path", path))
	return httpserver.Run(ctx, addr, mux, log)
}

func runPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, base http.Handler, r *telegram.Router, log *zap.Logger) error {
	// health and metrics stay up in polling mode too
	go func() {
		if err := httpserver.Run(ctx, addr, base, log); err != nil {
			log.Error("health server failed", zap.Error(err))
		}
	}()

	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn("delete webhook failed", zap.Error(err))
	}
	runPolling(ctx, bot, log, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
	return nil
}
