// Package session holds per-chat-identity state: ledger credentials,
// onboarding progress, and the account/category names cached from the
// ledger for token resolution.
package session

import "time"

// Stage is the onboarding position of a chat identity.
type Stage string

const (
	// StageUnconfigured is the initial stage for any new chat identity.
	StageUnconfigured Stage = "unconfigured"
	// StageAwaitingURL means the next message is consumed as the ledger URL.
	StageAwaitingURL Stage = "awaiting_url"
	// StageAwaitingAPIKey means the next message is consumed as the API key.
	StageAwaitingAPIKey Stage = "awaiting_api_key"
	// StageAwaitingDefaultAccount means the next message picks the default
	// asset account.
	StageAwaitingDefaultAccount Stage = "awaiting_default_account"
	// StageAwaitingConfirmation is the transient sub-state of Ready used
	// when a destructive action needs a yes/no. It lasts exactly one message.
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	// StageReady is the steady state: messages are parsed as transactions.
	StageReady Stage = "ready"
)

// Session is the per-chat-identity record. It is created on the first
// interaction and mutated only by the onboarding flow and /update.
type Session struct {
	ChatID         int64
	LedgerURL      string
	APIKey         string
	DefaultAccount string
	Stage          Stage

	// Name lists cached from the ledger, refreshed by /update.
	AssetAccounts   []string
	ExpenseAccounts []string
	RevenueAccounts []string
	Categories      []string

	UpdatedAt time.Time
}

// New returns an unconfigured session for the given chat identity.
func New(chatID int64) *Session {
	return &Session{
		ChatID: chatID,
		Stage:  StageUnconfigured,
	}
}

// Configured reports whether the session can authenticate against a ledger.
// Both the URL and the API key must be non-empty before any transaction
// message is accepted.
func (s *Session) Configured() bool {
	return s.LedgerURL != "" && s.APIKey != ""
}

// Reset clears credentials and cached data and restarts onboarding.
func (s *Session) Reset() {
	s.LedgerURL = ""
	s.APIKey = ""
	s.DefaultAccount = ""
	s.AssetAccounts = nil
	s.ExpenseAccounts = nil
	s.RevenueAccounts = nil
	s.Categories = nil
	s.Stage = StageAwaitingURL
}
