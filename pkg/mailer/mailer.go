package mailer

import (
	"context"
	"fmt"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Config holds the SMTP configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// SMTPMailer implements domain.EmailSender over SMTP
type SMTPMailer struct {
	config   *Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// NewTestSMTPMailer creates a mailer in test mode: messages are accepted and
// assigned IDs without connecting to an SMTP server.
func NewTestSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config, testMode: true}
}

// Send delivers one rendered email and returns the generated message ID
func (m *SMTPMailer) Send(ctx context.Context, email *domain.OutboundEmail) (string, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	from := email.From
	if from == "" {
		from = m.config.FromEmail
	}
	if err := msg.FromFormat(m.config.FromName, from); err != nil {
		return "", fmt.Errorf("failed to set email from address: %w", err)
	}

	if err := msg.To(email.To); err != nil {
		return "", fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	if email.Text != "" {
		msg.AddAlternativeString(mail.TypeTextPlain, email.Text)
	}

	messageID := uuid.NewString()
	msg.SetMessageIDWithValue(messageID)

	if m.testMode {
		return messageID, nil
	}

	client, err := m.createSMTPClient()
	if err != nil {
		return "", err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return messageID, nil
}

func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if m.config.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client, nil
}
