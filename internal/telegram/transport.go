// Package telegram connects the message-handling core to the Telegram Bot
// API over long polling. Each update is handled on its own goroutine, with
// a per-chat mutex keeping messages from the same chat in order.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/session"
)

// Handler processes one incoming chat message and returns the reply text.
// An empty reply means nothing is sent back.
type Handler interface {
	HandleMessage(ctx context.Context, chatID int64, text string) string
}

// Transport long-polls Telegram for updates and dispatches them to the
// handler.
type Transport struct {
	api         *tgbotapi.BotAPI
	handler     Handler
	log         zerolog.Logger
	pollTimeout time.Duration

	chats *session.KeyedMutex
	wg    sync.WaitGroup
}

// New authenticates against the Telegram Bot API and returns a transport
// ready to run.
func New(token string, handler Handler, pollTimeout time.Duration, log zerolog.Logger) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	log.Info().Str("bot_username", api.Self.UserName).Msg("Connected to Telegram")

	return &Transport{
		api:         api,
		handler:     handler,
		log:         log,
		pollTimeout: pollTimeout,
		chats:       session.NewKeyedMutex(),
	}, nil
}

// Run polls for updates until ctx is canceled, then waits for in-flight
// messages to finish before returning.
func (t *Transport) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(t.pollTimeout.Seconds())
	updates := t.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			t.wg.Add(1)
			go t.dispatch(ctx, update.Message)
		}
	}
}

// dispatch runs one message through the handler and sends the reply. Every
// message gets a correlation id so its log lines can be tied together.
func (t *Transport) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	defer t.wg.Done()

	log := t.log.With().
		Str("correlation_id", uuid.NewString()).
		Int64("chat_id", msg.Chat.ID).
		Logger()
	ctx = logger.WithContext(ctx, log)

	unlock := t.chats.Lock(msg.Chat.ID)
	defer unlock()

	started := time.Now()
	reply := t.handler.HandleMessage(ctx, msg.Chat.ID, msg.Text)
	log.Debug().Dur("duration", time.Since(started)).Msg("Handled message")

	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	// Fenced replies (listings, balance tables) need Markdown rendering.
	if strings.Contains(reply, "```") {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := t.api.Send(out); err != nil {
		log.Error().Err(err).Msg("Failed to send reply")
	}
}
