package dispatch

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/secrets"
)

// Mailer sends outreach mail, rotating across the configured sender
// identities so no single mailbox carries the whole volume.
type Mailer struct {
	host    string
	port    int
	senders []config.Sender

	mu   sync.Mutex
	next int
}

func NewMailer(cfg config.Config) (*Mailer, error) {
	if !cfg.Dispatch.Enabled {
		return nil, &domain.ConfigError{Field: "dispatch.enabled", Err: fmt.Errorf("dispatch is disabled")}
	}
	if len(cfg.Dispatch.Senders) == 0 {
		return nil, &domain.ConfigError{Field: "dispatch.senders", Err: fmt.Errorf("no senders configured")}
	}
	return &Mailer{
		host:    cfg.Dispatch.SMTPHost,
		port:    cfg.Dispatch.SMTPPort,
		senders: cfg.Dispatch.Senders,
	}, nil
}

func (m *Mailer) pick() config.Sender {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.senders[m.next%len(m.senders)]
	m.next++
	return s
}

// Send delivers one message from the next sender in rotation and
// returns the sender used.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) (config.Sender, error) {
	sender := m.pick()
	if err := ctx.Err(); err != nil {
		return sender, err
	}

	account := sender.KeyringAccount
	if account == "" {
		account = secrets.SMTPKeyringAccount(sender.Username, m.host)
	}
	password, err := secrets.GetSMTPPassword(account)
	if err != nil {
		return sender, &domain.ConfigError{Field: "dispatch.senders", Err: err}
	}

	msg := buildMessage(sender, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", sender.Username, password, m.host)
	if err := smtp.SendMail(addr, auth, sender.Email, []string{to}, msg); err != nil {
		return sender, classifySMTP(err)
	}
	return sender, nil
}

func buildMessage(sender config.Sender, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", sender.Name, sender.Email)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// classifySMTP sorts delivery failures. Permanent 5xx rejections are
// not worth retrying; everything else gets another attempt.
func classifySMTP(err error) error {
	msg := err.Error()
	if len(msg) >= 3 && msg[0] == '5' {
		return &domain.PermanentError{Op: "smtp-send", Err: err}
	}
	return &domain.TransientError{Op: "smtp-send", Err: err}
}
