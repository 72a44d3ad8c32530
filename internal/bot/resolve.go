package bot

import (
	"strings"
	"unicode"

	"github.com/dvloznov/ledgerbot/internal/message"
	"github.com/dvloznov/ledgerbot/internal/session"
)

// slug normalizes a name for comparison: lowercase, with every run of
// non-alphanumeric characters collapsed into a single dash.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		} else {
			dash = true
		}
	}
	return b.String()
}

// resolveName matches token against known ledger names by slug and returns
// the canonical spelling.
func resolveName(token string, known []string) (string, bool) {
	want := slug(token)
	for _, name := range known {
		if slug(name) == want {
			return name, true
		}
	}
	return "", false
}

// resolveIntent checks the intent's category and account tokens against the
// session's cached ledger names and rewrites them to their canonical
// spelling. Unknown tokens produce a reply telling the user to add the
// entity to the ledger and run /update; an empty cache list skips the check
// for that field. The second return value is non-empty on failure.
func (b *Bot) resolveIntent(sess *session.Session, intent message.Intent) (message.Intent, string) {
	if intent.Category != "" && len(sess.Categories) > 0 {
		name, ok := resolveName(intent.Category, sess.Categories)
		if !ok {
			return intent, replyUnknownCategory
		}
		intent.Category = name
	}

	// Money can come from asset or revenue accounts and go to asset or
	// expense accounts, for all three transaction types.
	sources := append(append([]string{}, sess.AssetAccounts...), sess.RevenueAccounts...)
	destinations := append(append([]string{}, sess.AssetAccounts...), sess.ExpenseAccounts...)

	if len(sources) > 0 {
		name, ok := resolveName(intent.Source, sources)
		if !ok {
			return intent, replyUnknownSource
		}
		intent.Source = name
	}
	if len(destinations) > 0 {
		name, ok := resolveName(intent.Destination, destinations)
		if !ok {
			return intent, replyUnknownDestination
		}
		intent.Destination = name
	}

	return intent, ""
}
