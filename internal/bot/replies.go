package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ledgerbot/internal/amount"
	"github.com/dvloznov/ledgerbot/internal/firefly"
	"github.com/dvloznov/ledgerbot/internal/message"
)

const (
	replyAskURL             = "Enter your Firefly III URL."
	replyBadURL             = "That does not look like a valid URL. Send the full address of your Firefly III instance, including http:// or https://."
	replyAskAPIKey          = "Please enter your Firefly III API key."
	replyAskAPIKeyAgain     = "Send the API key again."
	replyNoAssetAccounts    = "Your ledger has no asset accounts yet. Create one in Firefly III, then send the API key again."
	replySetupDone          = "Setup completed. Run /help to see the commands."
	replyConfirmRestart     = "You are already set up. Send `yes` to start over and replace your configuration; anything else keeps it."
	replyKeptSetup          = "Keeping your current setup."
	replyRunStartFirst      = "Run /start first!"
	replyInvalidInput       = "Invalid Input! Run /help to see the message format."
	replyUnknownCommand     = "Unknown command. Run /help to see what I understand."
	replyUpdated            = "Categories and accounts updated!"
	replyInternalError      = "Something went wrong on my side. Please try again."
	replyNoTransactions     = "No transactions in the last 30 days."
	replyUnknownCategory    = "Add the category to Firefly III and run /update first!"
	replyUnknownSource      = "Add the source account to Firefly III and run /update first!"
	replyUnknownDestination = "Add the destination account to Firefly III and run /update first!"
	replyNoDefaultAccount   = "Name the asset account in the message, or run /start to pick a default one."
)

const replyHelp = "Welcome to the Firefly III bot!\n\n" +
	"Available commands:\n" +
	"- /start: Set URL, API key, and default account.\n" +
	"- /help: Display this help message.\n" +
	"- /update: Refresh your categories and accounts.\n" +
	"- /transactions: View recent entries.\n" +
	"- /balance: Check your account balances.\n\n" +
	"To add an expense send a message like:\n" +
	"``` Description 100 [Category] [AssetAccount] [ExpenseAccount]```\n" +
	"To add a revenue send a message like:\n" +
	"``` Description +100 [Category] [RevenueAccount] [AssetAccount]```\n" +
	"To add a transfer send a message like:\n" +
	"``` 100 Account1 Account2```\n\n" +
	"The numbers can be simple equations too:\n" +
	"``` Dinner (100 + 5) / 2 Restaurant```\n\n" +
	"Fields in brackets are optional."

func replyAskDefaultAccount(assetAccounts []string) string {
	return "Choose your default asset account:\n- " + strings.Join(assetAccounts, "\n- ")
}

func replyUnknownDefaultAccount(assetAccounts []string) string {
	return "I don't know that account. Pick one of:\n- " + strings.Join(assetAccounts, "\n- ")
}

// tokenizeReply maps tokenizer failures to user-facing text.
func tokenizeReply(err error) string {
	var evalErr *amount.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Sprintf("I couldn't evaluate the amount: %s.", evalErr.Reason)
	}
	return replyInvalidInput
}

// intentReply maps grammar failures to user-facing text.
func intentReply(err error) string {
	if errors.Is(err, message.ErrUnresolvedAccount) {
		return replyNoDefaultAccount
	}
	return replyInvalidInput
}

// gatewayReply maps ledger failures to user-facing text. Unauthorized adds
// a hint to re-run onboarding without resetting any state.
func gatewayReply(err error) string {
	switch {
	case firefly.IsKind(err, firefly.KindUnauthorized):
		return "The ledger rejected your API key. If it expired, run /start to reconfigure."
	case firefly.IsKind(err, firefly.KindNotFound):
		return "The ledger could not find that. Run /update and try again."
	case firefly.IsKind(err, firefly.KindTimeout):
		return "The ledger did not respond in time. Please try again."
	default:
		return "The ledger returned an unexpected response. Please try again later."
	}
}

// formatTransactionReply echoes a stored transaction, e.g.
// "52.50€ Checking → Restaurant (Food)".
func formatTransactionReply(row firefly.TransactionRow) string {
	reply := fmt.Sprintf("%s%s %s → %s", row.Amount.StringFixed(2), row.CurrencySymbol, row.Source, row.Destination)
	if row.Category != "" {
		reply += fmt.Sprintf(" (%s)", row.Category)
	}
	return reply
}

// formatTransactionList renders the 30-day listing, one fenced block per
// transaction, oldest first.
func formatTransactionList(rows []firefly.TransactionRow) string {
	if len(rows) == 0 {
		return replyNoTransactions
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		line := fmt.Sprintf("``` %s %s → %s\n %s %s", row.Date.Format("06-01-02"), row.Source, row.Destination, row.Amount.StringFixed(2), row.Description)
		if row.Category != "" {
			line += fmt.Sprintf(" (%s)", row.Category)
		}
		lines = append(lines, line+" ```")
	}
	return strings.Join(lines, "\n")
}

// formatBalances renders the asset account table with a total line.
func formatBalances(balances []firefly.AccountBalance) string {
	if len(balances) == 0 {
		return "No active asset accounts found. Run /update and try again."
	}

	var b strings.Builder
	b.WriteString("```\n")
	symbol := ""
	total := decimal.Zero
	for _, bal := range balances {
		if symbol == "" {
			symbol = bal.CurrencySymbol
		}
		total = total.Add(bal.Balance)
		fmt.Fprintf(&b, "%-12s %10s%s\n", bal.Name+":", bal.Balance.StringFixed(2), bal.CurrencySymbol)
	}
	fmt.Fprintf(&b, "%-12s %10s%s", "TOTAL:", total.StringFixed(2), symbol)
	b.WriteString("\n```")
	return b.String()
}
