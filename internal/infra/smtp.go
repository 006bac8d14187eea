package infra

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerNotConfigured is returned while SMTP credentials or recipients are missing.
var ErrMailerNotConfigured = errors.New("email not configured")

// ReorderMessage is a fully formatted reorder e-mail.
type ReorderMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer sends reorder e-mails through an authenticated SMTP relay
// (Gmail with an app password in the default deployment).
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	fromName string
	to       []string
	breaker  *Breaker

	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     strings.TrimSpace(cfg.SMTPUser),
		password: strings.TrimSpace(cfg.SMTPPassword),
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		fromName: strings.TrimSpace(cfg.ReorderFromName),
		to:       SplitRecipients(cfg.ReorderTo),
		breaker:  NewBreaker(DefaultBreakerConfig()),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SplitRecipients accepts "a@x.com", "a@x.com,b@y.com" or "a@x.com;b@y.com".
func SplitRecipients(raw string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(raw, ";", ","), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CheckConfigured returns an error naming every missing SMTP setting.
func (m *Mailer) CheckConfigured() error {
	var missing []string
	if m.user == "" {
		missing = append(missing, "SMTP_USER")
	}
	if m.password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if len(m.to) == 0 {
		missing = append(missing, "REORDER_TO_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w, missing: %s", ErrMailerNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// SendReorder delivers msg to the configured reorder recipients.
// Calls fail fast while the SMTP breaker is open.
func (m *Mailer) SendReorder(msg ReorderMessage) error {
	if err := m.CheckConfigured(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", m.fromName, m.user)
	e.To = m.to
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.breaker.Execute(func() error {
		if err := m.send(e, m.addr, auth); err != nil {
			return fmt.Errorf("mailer: send: %w", err)
		}
		return nil
	})
}

// BreakerState exposes the SMTP breaker state for /health.
func (m *Mailer) BreakerState() BreakerState { return m.breaker.State() }
