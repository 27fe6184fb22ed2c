// Package email sends transactional email through the SES SMTP interface.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

const (
	headerTags             = "X-SES-MESSAGE-TAGS"
	headerConfigurationSet = "X-SES-CONFIGURATION-SET"
)

// Message is one email to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Mailer sends one message per call.
type Mailer struct {
	from      string
	configSet string
	timeout   time.Duration
	send      func(*gomail.Message) error
	logger    *slog.Logger
}

// NewMailer creates a mailer for the given SMTP endpoint.
func NewMailer(host string, port int, username, password, from, configSet string, timeout time.Duration, logger *slog.Logger) *Mailer {
	dialer := gomail.NewDialer(host, port, username, password)
	return newMailer(from, configSet, timeout, func(m *gomail.Message) error { return dialer.DialAndSend(m) }, logger)
}

func newMailer(from, configSet string, timeout time.Duration, send func(*gomail.Message) error, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Mailer{
		from:      from,
		configSet: configSet,
		timeout:   timeout,
		send:      send,
		logger:    logger,
	}
}

// Send delivers msg and returns its Message-ID. The SMTP exchange is bounded
// by the mailer timeout and by ctx.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("send email: empty recipient")
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), senderDomain(m.from))

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", messageID)
	if tags := formatTags(msg.Tags); tags != "" {
		gm.SetHeader(headerTags, tags)
	}
	if m.configSet != "" {
		gm.SetHeader(headerConfigurationSet, m.configSet)
	}
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.send(gm) }()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("send email to %s: %w", msg.To, err)
		}
	case <-ctx.Done():
		return "", fmt.Errorf("send email to %s: %w", msg.To, ctx.Err())
	}

	m.logger.Debug("Email sent", "to", msg.To, "message_id", messageID)
	return messageID, nil
}

// formatTags renders tags as "k1=v1, k2=v2" in key order.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ", ")
}

func senderDomain(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "localhost"
	}
	if at := strings.LastIndex(addr.Address, "@"); at >= 0 && at < len(addr.Address)-1 {
		return addr.Address[at+1:]
	}
	return "localhost"
}
