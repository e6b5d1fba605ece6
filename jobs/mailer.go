package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Mailer delivers plain text email.
type Mailer interface {
	Send(ctx context.Context, msg SendEmailPayload) error
}

// SMTPConfig locates the relay. Username empty means no authentication.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	// TLS is "none", "opportunistic" or "mandatory".
	TLS     string
	Timeout time.Duration
}

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends mail through an SMTP relay such as Mailpit in development
// or the company MTA in production.
type SMTPMailer struct {
	client smtpSender
	from   string
	now    func() time.Time
}

func tlsPolicy(raw string) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return mail.NoTLS, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	}
	return mail.NoTLS, fmt.Errorf("mailer: unknown tls policy %q", raw)
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From, now: time.Now}, nil
}

// Send composes msg and delivers it, honouring ctx while dialing and writing.
func (m *SMTPMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("mailer: recipient required")
	}
	out, err := m.compose(to, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) compose(to string, msg SendEmailPayload) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("mailer: from %q: %w", m.from, err)
	}
	if err := out.To(to); err != nil {
		return nil, fmt.Errorf("mailer: to %q: %w", to, err)
	}
	out.Subject(msg.Subject)
	out.SetDateWithValue(m.now())
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}
