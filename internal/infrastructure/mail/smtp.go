package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
	"github.com/rs/zerolog"
)

const verificationSubject = "Verify your Sunflower account"

// Config holds SMTP settings. Email is disabled when Host, User or Password is empty.
type Config struct {
	Host       string
	User       string
	Password   string
	From       string
	SkipVerify bool
}

// Mailer sends verification emails over SMTP.
type Mailer struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
	log         zerolog.Logger
}

// NewMailer returns a Mailer. A disabled mailer accepts every message and
// only logs that nothing was sent.
func NewMailer(cfg Config, log zerolog.Logger) (*Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		log.Warn().Msg("smtp not configured, verification emails disabled")
		return &Mailer{disabled: true, log: log}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host))
	if err != nil {
		return nil, fmt.Errorf("parse smtp host: %w", err)
	}

	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse sender address: %w", err)
	}

	client, err := goemail.NewSMTP(u.String(), &tls.Config{InsecureSkipVerify: cfg.SkipVerify})
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Mailer{
		client:      client,
		mailName:    from.Name,
		mailAddress: from.Address,
		log:         log,
	}, nil
}

// IsEnabled reports whether the mailer actually delivers messages.
func (m *Mailer) IsEnabled() bool {
	return !m.disabled
}

// SendVerificationEmail delivers the verification link to a single recipient.
func (m *Mailer) SendVerificationEmail(_ context.Context, to, verificationLink string) error {
	if m.disabled {
		m.log.Debug().Str("to", to).Msg("email disabled, verification email not sent")
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, verificationSubject, verificationBody(verificationLink))
	msg.SetName(m.mailName)
	msg.AddTo(to)

	if err := m.client.Send(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func verificationBody(link string) string {
	return "Hello,\n\n" +
		"Please open the link below to verify your email address:\n\n" +
		link + "\n\n" +
		"If you didn't create a Sunflower account, please ignore this email.\n\n" +
		"The Sunflower Team\n"
}
