package replies

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"outreach-engine/internal/config"
	"outreach-engine/internal/followup"
	"outreach-engine/internal/lifecycle"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"
)

var unsubscribePhrases = []string{
	"unsubscribe",
	"stop emailing",
	"stop contacting",
	"remove me",
	"take me off",
	"not interested, stop",
}

const snippetMax = 500

// RunOnce polls the inbox once, records replies against matching leads,
// and retires leads that asked to stop hearing from us. Returns the
// number of replies recorded.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config) (int, error) {
	if !cfg.Replies.Enabled {
		return 0, nil
	}

	byEmail, err := store.ContactableEmails(ctx, db)
	if err != nil {
		return 0, err
	}
	if len(byEmail) == 0 {
		return 0, nil
	}

	account := secrets.IMAPKeyringAccount(cfg.Replies.Username, cfg.Replies.IMAPHost)
	password, err := secrets.GetIMAPPassword(account)
	if err != nil {
		return 0, err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Replies.IMAPHost, cfg.Replies.IMAPPort)
	c, err := dialAndLogin(ctx, addr, cfg.Replies.Username, password)
	if err != nil {
		return 0, err
	}
	defer logoutAndClose(c)

	if err := selectMailbox(c, cfg.Replies.Mailbox); err != nil {
		return 0, err
	}

	lookback := cfg.Replies.LookbackDays
	if lookback <= 0 {
		lookback = 14
	}
	msgs, err := fetchUnseen(ctx, c, time.Now().AddDate(0, 0, -lookback), 200)
	if err != nil {
		return 0, err
	}

	recorded := 0
	var handled []imap.UID
	for _, m := range msgs {
		entityID, ok := byEmail[m.From]
		if !ok {
			continue
		}

		snippet := Snippet(m.Body)
		if IsUnsubscribe(m.Subject, snippet) {
			if err := lifecycle.MarkUnsubscribed(ctx, db, entityID); err != nil {
				log.Printf("[replies] %s: mark unsubscribed: %v", entityID, err)
				continue
			}
			log.Printf("[replies] %s: unsubscribed via %s", entityID, m.From)
		} else {
			if err := followup.RecordReply(ctx, db, entityID, snippet); err != nil {
				log.Printf("[replies] %s: record reply: %v", entityID, err)
				continue
			}
			log.Printf("[replies] %s: reply recorded from %s", entityID, m.From)
			recorded++
		}
		handled = append(handled, m.UID)
		delete(byEmail, m.From)
	}

	if err := markSeen(c, handled); err != nil {
		log.Printf("[replies] mark seen: %v", err)
	}
	return recorded, nil
}

// Snippet extracts a short plain-text excerpt from a raw RFC822
// message for the event thread.
func Snippet(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	text := string(raw)
	if msg, err := mail.ReadMessage(strings.NewReader(text)); err == nil {
		var b strings.Builder
		buf := make([]byte, snippetMax)
		n, _ := msg.Body.Read(buf)
		b.Write(buf[:n])
		text = b.String()
	}
	text = strings.TrimSpace(text)
	if len(text) > snippetMax {
		text = text[:snippetMax]
	}
	return text
}

// IsUnsubscribe reports whether an inbound message reads as an opt-out.
func IsUnsubscribe(subject, body string) bool {
	haystack := strings.ToLower(subject + "\n" + body)
	for _, p := range unsubscribePhrases {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}
