// Package firefly is the HTTP gateway to a Firefly III compatible ledger.
//
// Every call authenticates with the session's API key against the session's
// ledger URL, is bounded by the configured request timeout, and surfaces a
// *GatewayError whose Kind distinguishes unauthorized, not-found, timeout,
// and malformed-response failures. A timed-out request is retried exactly
// once before the error is surfaced.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/message"
	"github.com/dvloznov/ledgerbot/internal/session"
)

const recentTransactionsWindow = 30 * 24 * time.Hour

// Client talks to the ledger on behalf of a session.
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a ledger client with the given per-request timeout.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// CreateTransaction stores the intent in the ledger and returns the new
// transaction id together with the row the ledger reports back.
func (c *Client) CreateTransaction(ctx context.Context, sess *session.Session, intent message.Intent) (string, TransactionRow, error) {
	body := txRequest{
		Transactions: []txSplit{{
			Type:            string(intent.Type),
			Amount:          intent.Amount.Value.StringFixed(2),
			Date:            time.Now().Format(time.RFC3339),
			Description:     intent.Description,
			SourceName:      intent.Source,
			DestinationName: intent.Destination,
			CategoryName:    intent.Category,
		}},
	}

	var resp txCreateResponse
	if err := c.do(ctx, sess, http.MethodPost, "transactions", nil, body, &resp); err != nil {
		return "", TransactionRow{}, err
	}
	if len(resp.Data.Attributes.Transactions) == 0 {
		return "", TransactionRow{}, &GatewayError{Kind: KindMalformed, Op: "create transaction", Err: errors.New("response carries no transaction split")}
	}

	row := splitToRow(resp.Data.Attributes.Transactions[0])
	c.log.Info().
		Str("transaction_id", resp.Data.ID).
		Str("type", string(intent.Type)).
		Msg("Transaction created")

	return resp.Data.ID, row, nil
}

// DeleteTransaction removes a transaction from the ledger.
func (c *Client) DeleteTransaction(ctx context.Context, sess *session.Session, id string) error {
	return c.do(ctx, sess, http.MethodDelete, "transactions/"+id, nil, nil, nil)
}

// ListRecentTransactions returns the last 30 days of transactions, oldest
// first.
func (c *Client) ListRecentTransactions(ctx context.Context, sess *session.Session) ([]TransactionRow, error) {
	now := time.Now()
	query := url.Values{
		"start": {now.Add(-recentTransactionsWindow).Format("2006-01-02")},
		"end":   {now.Format("2006-01-02")},
	}

	var resp txListResponse
	if err := c.do(ctx, sess, http.MethodGet, "transactions", query, nil, &resp); err != nil {
		return nil, err
	}

	// The ledger lists newest first; replies read better oldest first.
	rows := make([]TransactionRow, 0, len(resp.Data))
	for i := len(resp.Data) - 1; i >= 0; i-- {
		group := resp.Data[i]
		if len(group.Attributes.Transactions) == 0 {
			continue
		}
		rows = append(rows, splitToRow(group.Attributes.Transactions[0]))
	}
	return rows, nil
}

// GetBalances returns the balances of active asset accounts that count
// towards net worth.
func (c *Client) GetBalances(ctx context.Context, sess *session.Session) ([]AccountBalance, error) {
	items, err := c.listAccountItems(ctx, sess)
	if err != nil {
		return nil, err
	}

	var balances []AccountBalance
	for _, item := range items {
		attr := item.Attributes
		if attr.Type != "asset" || !attr.Active || !attr.IncludeNetWorth {
			continue
		}
		balance, err := decimal.NewFromString(attr.CurrentBalance)
		if err != nil {
			return nil, &GatewayError{Kind: KindMalformed, Op: "get balances", Err: fmt.Errorf("balance %q of account %q: %w", attr.CurrentBalance, attr.Name, err)}
		}
		balances = append(balances, AccountBalance{
			Name:           attr.Name,
			Balance:        balance,
			CurrencySymbol: attr.CurrencySymbol,
		})
	}
	return balances, nil
}

// ListAccounts returns the ledger's account names grouped by type.
func (c *Client) ListAccounts(ctx context.Context, sess *session.Session) (Accounts, error) {
	items, err := c.listAccountItems(ctx, sess)
	if err != nil {
		return Accounts{}, err
	}

	var accounts Accounts
	for _, item := range items {
		switch item.Attributes.Type {
		case "asset":
			accounts.Asset = append(accounts.Asset, item.Attributes.Name)
		case "expense":
			accounts.Expense = append(accounts.Expense, item.Attributes.Name)
		case "revenue":
			accounts.Revenue = append(accounts.Revenue, item.Attributes.Name)
		}
	}
	return accounts, nil
}

// ListCategories returns all category names known to the ledger.
func (c *Client) ListCategories(ctx context.Context, sess *session.Session) ([]string, error) {
	var names []string
	page := 1
	for {
		query := url.Values{"page": {strconv.Itoa(page)}}
		var resp categoriesResponse
		if err := c.do(ctx, sess, http.MethodGet, "categories", query, nil, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Data {
			names = append(names, item.Attributes.Name)
		}
		if page >= resp.Meta.Pagination.TotalPages {
			return names, nil
		}
		page++
	}
}

func (c *Client) listAccountItems(ctx context.Context, sess *session.Session) ([]accountItem, error) {
	var items []accountItem
	page := 1
	for {
		query := url.Values{"page": {strconv.Itoa(page)}}
		var resp accountsResponse
		if err := c.do(ctx, sess, http.MethodGet, "accounts", query, nil, &resp); err != nil {
			return nil, err
		}
		items = append(items, resp.Data...)
		if page >= resp.Meta.Pagination.TotalPages {
			return items, nil
		}
		page++
	}
}

// do performs one authenticated request against the session's ledger and
// decodes the response into out (which may be nil for bodyless replies).
// A request that times out is retried once.
func (c *Client) do(ctx context.Context, sess *session.Session, method, path string, query url.Values, body, out interface{}) error {
	op := method + " " + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &GatewayError{Kind: KindMalformed, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
	}

	endpoint := sess.LedgerURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	resp, err := c.send(ctx, sess, method, endpoint, payload)
	if isTimeout(err) {
		c.log.Warn().Str("op", op).Msg("Ledger request timed out, retrying once")
		resp, err = c.send(ctx, sess, method, endpoint, payload)
	}
	if err != nil {
		kind := KindMalformed
		if isTimeout(err) {
			kind = KindTimeout
		}
		return &GatewayError{Kind: kind, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &GatewayError{Kind: KindUnauthorized, Op: op}
	case resp.StatusCode == http.StatusNotFound:
		return &GatewayError{Kind: KindNotFound, Op: op}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &GatewayError{Kind: KindMalformed, Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, snippet)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Kind: KindMalformed, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, sess *session.Session, method, endpoint string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func splitToRow(split txSplit) TransactionRow {
	row := TransactionRow{
		Description:    split.Description,
		CurrencySymbol: split.CurrencySymbol,
		Source:         split.SourceName,
		Destination:    split.DestinationName,
		Category:       split.CategoryName,
	}
	if v, err := decimal.NewFromString(split.Amount); err == nil {
		row.Amount = v
	}
	if ts, err := time.Parse(time.RFC3339, split.Date); err == nil {
		row.Date = ts
	} else if ts, err := time.Parse("2006-01-02", split.Date); err == nil {
		row.Date = ts
	}
	return row
}
