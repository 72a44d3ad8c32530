package firefly

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRow is one transaction as reported by the ledger.
type TransactionRow struct {
	Date           time.Time
	Description    string
	Amount         decimal.Decimal
	CurrencySymbol string
	Source         string
	Destination    string
	Category       string
}

// AccountBalance is the current balance of one asset account.
type AccountBalance struct {
	Name           string
	Balance        decimal.Decimal
	CurrencySymbol string
}

// Accounts groups the ledger's account names by type.
type Accounts struct {
	Asset   []string
	Expense []string
	Revenue []string
}

// Wire types below mirror the ledger's JSON:API-ish envelope. Amounts come
// over the wire as strings and dates as RFC 3339 timestamps.

type txSplit struct {
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	SourceName      string `json:"source_name,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	CurrencySymbol  string `json:"currency_symbol,omitempty"`
}

type txRequest struct {
	Transactions []txSplit `json:"transactions"`
}

type txGroup struct {
	ID         string `json:"id"`
	Attributes struct {
		Transactions []txSplit `json:"transactions"`
	} `json:"attributes"`
}

type txCreateResponse struct {
	Data txGroup `json:"data"`
}

type txListResponse struct {
	Data []txGroup `json:"data"`
	Meta meta      `json:"meta"`
}

type accountItem struct {
	ID         string `json:"id"`
	Attributes struct {
		Name            string `json:"name"`
		Type            string `json:"type"`
		CurrentBalance  string `json:"current_balance"`
		CurrencySymbol  string `json:"currency_symbol"`
		Active          bool   `json:"active"`
		IncludeNetWorth bool   `json:"include_net_worth"`
	} `json:"attributes"`
}

type accountsResponse struct {
	Data []accountItem `json:"data"`
	Meta meta          `json:"meta"`
}

type categoryItem struct {
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

type categoriesResponse struct {
	Data []categoryItem `json:"data"`
	Meta meta           `json:"meta"`
}

type meta struct {
	Pagination struct {
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}
