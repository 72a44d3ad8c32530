// Package bot is the message-handling core: it routes each incoming chat
// message through the session state machine to either the onboarding flow,
// an informational command, or the transaction parser, and composes the
// reply. All failures are turned into reply text here; nothing propagates
// past HandleMessage.
package bot

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/firefly"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/message"
	"github.com/dvloznov/ledgerbot/internal/session"
)

// Gateway is the ledger surface the bot depends on.
type Gateway interface {
	CreateTransaction(ctx context.Context, sess *session.Session, intent message.Intent) (string, firefly.TransactionRow, error)
	ListRecentTransactions(ctx context.Context, sess *session.Session) ([]firefly.TransactionRow, error)
	GetBalances(ctx context.Context, sess *session.Session) ([]firefly.AccountBalance, error)
	ListAccounts(ctx context.Context, sess *session.Session) (firefly.Accounts, error)
	ListCategories(ctx context.Context, sess *session.Session) ([]string, error)
}

// Bot wires the session store and the ledger gateway into the message
// handling state machine.
type Bot struct {
	store   session.Store
	gateway Gateway
	log     zerolog.Logger
}

// New creates a bot.
func New(store session.Store, gateway Gateway, log zerolog.Logger) *Bot {
	return &Bot{
		store:   store,
		gateway: gateway,
		log:     log,
	}
}

// HandleMessage processes one incoming message for a chat identity and
// returns the reply text. It never returns an error: parser, grammar, and
// gateway failures all become human-readable replies, and the session is
// left in a consistent state for the next message.
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) string {
	log := logger.FromContext(ctx)

	text = strings.TrimSpace(text)
	if text == "" {
		return replyInvalidInput
	}

	sess, err := b.store.Get(ctx, chatID)
	if errors.Is(err, session.ErrNotFound) {
		sess = session.New(chatID)
	} else if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load session")
		return replyInternalError
	}

	if cmd, ok := command(text); ok {
		return b.handleCommand(ctx, sess, cmd)
	}

	switch sess.Stage {
	case session.StageAwaitingURL:
		return b.processURL(ctx, sess, text)
	case session.StageAwaitingAPIKey:
		return b.processAPIKey(ctx, sess, text)
	case session.StageAwaitingDefaultAccount:
		return b.processDefaultAccount(ctx, sess, text)
	case session.StageAwaitingConfirmation:
		return b.processConfirmation(ctx, sess, text)
	case session.StageReady:
		return b.handleTransaction(ctx, sess, text)
	default:
		// Unconfigured: nothing but onboarding is accepted.
		return replyRunStartFirst
	}
}

// command extracts a leading slash command, tolerating the @botname suffix
// Telegram appends in group chats.
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd, true
}

func (b *Bot) handleCommand(ctx context.Context, sess *session.Session, cmd string) string {
	switch cmd {
	case "/start":
		return b.handleStart(ctx, sess)
	case "/help":
		return replyHelp
	case "/update":
		if sess.Stage != session.StageReady {
			return replyRunStartFirst
		}
		return b.handleUpdate(ctx, sess)
	case "/transactions":
		if sess.Stage != session.StageReady {
			return replyRunStartFirst
		}
		return b.handleTransactions(ctx, sess)
	case "/balance":
		if sess.Stage != session.StageReady {
			return replyRunStartFirst
		}
		return b.handleBalance(ctx, sess)
	default:
		return replyUnknownCommand
	}
}

// handleStart begins onboarding. A session that is already fully set up
// gets one confirmation message before its credentials are wiped.
func (b *Bot) handleStart(ctx context.Context, sess *session.Session) string {
	if sess.Stage == session.StageReady {
		sess.Stage = session.StageAwaitingConfirmation
		if reply := b.save(ctx, sess); reply != "" {
			return reply
		}
		return replyConfirmRestart
	}

	sess.Reset()
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replyAskURL
}

// processConfirmation resolves the transient confirmation sub-state. It
// lasts exactly one message: anything but an explicit yes keeps the
// existing setup.
func (b *Bot) processConfirmation(ctx context.Context, sess *session.Session, text string) string {
	if !strings.EqualFold(text, "yes") {
		sess.Stage = session.StageReady
		if reply := b.save(ctx, sess); reply != "" {
			return reply
		}
		return replyKeptSetup
	}

	sess.Reset()
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replyAskURL
}

// processURL consumes the message as the ledger base URL. The trailing
// slash is trimmed and the API prefix appended, matching what the ledger
// client expects. A malformed URL keeps the stage unchanged.
func (b *Bot) processURL(ctx context.Context, sess *session.Session, text string) string {
	parsed, err := url.Parse(text)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return replyBadURL
	}

	sess.LedgerURL = strings.TrimRight(text, "/") + "/api/v1/"
	sess.Stage = session.StageAwaitingAPIKey
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replyAskAPIKey
}

// processAPIKey consumes the message as the API key, verifies it by
// fetching the ledger's accounts, and caches the name lists used for token
// resolution. A rejected key keeps the stage unchanged.
func (b *Bot) processAPIKey(ctx context.Context, sess *session.Session, text string) string {
	log := logger.FromContext(ctx)

	sess.APIKey = text

	accounts, err := b.gateway.ListAccounts(ctx, sess)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", sess.ChatID).Msg("Ledger rejected onboarding credentials")
		sess.APIKey = ""
		return gatewayReply(err) + "\n\n" + replyAskAPIKeyAgain
	}
	if len(accounts.Asset) == 0 {
		sess.APIKey = ""
		return replyNoAssetAccounts
	}

	categories, err := b.gateway.ListCategories(ctx, sess)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", sess.ChatID).Msg("Failed to fetch categories during onboarding")
		sess.APIKey = ""
		return gatewayReply(err) + "\n\n" + replyAskAPIKeyAgain
	}

	sess.AssetAccounts = accounts.Asset
	sess.ExpenseAccounts = accounts.Expense
	sess.RevenueAccounts = accounts.Revenue
	sess.Categories = categories
	sess.Stage = session.StageAwaitingDefaultAccount
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replyAskDefaultAccount(accounts.Asset)
}

// processDefaultAccount consumes the message as the default asset account.
// It must name one of the ledger's asset accounts; anything else keeps the
// stage unchanged.
func (b *Bot) processDefaultAccount(ctx context.Context, sess *session.Session, text string) string {
	name, ok := resolveName(text, sess.AssetAccounts)
	if !ok {
		return replyUnknownDefaultAccount(sess.AssetAccounts)
	}

	sess.DefaultAccount = name
	sess.Stage = session.StageReady
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replySetupDone
}

func (b *Bot) handleUpdate(ctx context.Context, sess *session.Session) string {
	accounts, err := b.gateway.ListAccounts(ctx, sess)
	if err != nil {
		return gatewayReply(err)
	}
	categories, err := b.gateway.ListCategories(ctx, sess)
	if err != nil {
		return gatewayReply(err)
	}

	sess.AssetAccounts = accounts.Asset
	sess.ExpenseAccounts = accounts.Expense
	sess.RevenueAccounts = accounts.Revenue
	sess.Categories = categories
	if reply := b.save(ctx, sess); reply != "" {
		return reply
	}
	return replyUpdated
}

func (b *Bot) handleTransactions(ctx context.Context, sess *session.Session) string {
	rows, err := b.gateway.ListRecentTransactions(ctx, sess)
	if err != nil {
		return gatewayReply(err)
	}
	return formatTransactionList(rows)
}

func (b *Bot) handleBalance(ctx context.Context, sess *session.Session) string {
	balances, err := b.gateway.GetBalances(ctx, sess)
	if err != nil {
		return gatewayReply(err)
	}
	return formatBalances(balances)
}

// handleTransaction runs the interpretation pipeline: tokenize, evaluate,
// build the intent, resolve token spelling against the cached ledger names,
// and create the transaction. Failures reply and leave the session Ready.
func (b *Bot) handleTransaction(ctx context.Context, sess *session.Session, text string) string {
	log := logger.FromContext(ctx)

	split, amt, err := message.Tokenize(text)
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", sess.ChatID).Msg("Message did not tokenize")
		return tokenizeReply(err)
	}

	intent, err := message.BuildIntent(split, amt, sess.DefaultAccount)
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", sess.ChatID).Msg("Message did not match a transaction shape")
		return intentReply(err)
	}

	intent, reply := b.resolveIntent(sess, intent)
	if reply != "" {
		return reply
	}

	id, row, err := b.gateway.CreateTransaction(ctx, sess, intent)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", sess.ChatID).Msg("Failed to create transaction")
		return gatewayReply(err)
	}

	log.Info().
		Int64("chat_id", sess.ChatID).
		Str("transaction_id", id).
		Str("type", string(intent.Type)).
		Msg("Transaction recorded")

	return formatTransactionReply(row)
}

// save persists the session and returns a non-empty reply only on failure.
func (b *Bot) save(ctx context.Context, sess *session.Session) string {
	if err := b.store.Put(ctx, sess); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Int64("chat_id", sess.ChatID).Msg("Failed to save session")
		return replyInternalError
	}
	return ""
}
