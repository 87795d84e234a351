package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"github.com/peacewatch/peacewatch/config"
	apperrors "github.com/peacewatch/peacewatch/internal/errors"
	"github.com/peacewatch/peacewatch/internal/logger"
)

// Sender delivers one notification over a single channel. Implementations
// that are not configured log the message instead of failing.
type Sender interface {
	Channel() string
	Send(ctx context.Context, to, subject, body string) error
}

// EmailSender delivers via SMTP
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailSender creates an SMTP-backed sender
func NewEmailSender(cfg config.NotifierConfig) *EmailSender {
	return &EmailSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.FromAddress,
	}
}

func (s *EmailSender) Channel() string { return "email" }

// Send delivers an email, or logs it when SMTP is unconfigured
func (s *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.host == "" {
		logger.Info("SMTP not configured; logging email instead",
			"to", to, "subject", subject)
		return nil
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return apperrors.SendError{Channel: "email", Recipient: to, Err: err}
	}
	return nil
}

// WhatsAppSender delivers via an HTTP messaging API
type WhatsAppSender struct {
	apiURL string
	token  string
	client *http.Client
}

// NewWhatsAppSender creates a messaging-API-backed sender
func NewWhatsAppSender(cfg config.NotifierConfig) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL: cfg.WhatsAppAPIURL,
		token:  cfg.WhatsAppToken,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WhatsAppSender) Channel() string { return "whatsapp" }

// Send posts the message to the messaging API, or logs it when unconfigured
func (s *WhatsAppSender) Send(ctx context.Context, to, subject, body string) error {
	if s.apiURL == "" {
		logger.Info("WhatsApp API not configured; logging message instead",
			"to", to, "subject", subject)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":   to,
		"body": subject + "\n\n" + body,
	})
	if err != nil {
		return apperrors.SendError{Channel: "whatsapp", Recipient: to, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return apperrors.SendError{Channel: "whatsapp", Recipient: to, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.SendError{Channel: "whatsapp", Recipient: to, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.SendError{
			Channel:   "whatsapp",
			Recipient: to,
			Err:       fmt.Errorf("messaging API returned %d", resp.StatusCode),
		}
	}
	return nil
}

// SMSSender is a mock: it logs instead of sending. No SMS provider is wired.
type SMSSender struct{}

// NewSMSSender creates the mock SMS sender
func NewSMSSender() *SMSSender { return &SMSSender{} }

func (s *SMSSender) Channel() string { return "sms" }

// Send logs the message that would have been sent
func (s *SMSSender) Send(ctx context.Context, to, subject, body string) error {
	logger.Info("SMS send (mock)", "to", to, "subject", subject)
	return nil
}
