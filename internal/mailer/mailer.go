// Package mailer delivers transactional and campaign email through a
// configured SMTP relay, optionally DKIM-signing messages on the way out.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/trinexa/trinexa-web/internal/config"
	"github.com/trinexa/trinexa-web/internal/dkim"
)

// Mailer sends assembled email messages.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// DeliveryError carries whether a failed delivery is worth retrying.
type DeliveryError struct {
	Temporary bool
	Message   string
}

func (e *DeliveryError) Error() string { return e.Message }

// IsTemporary reports whether err is a retryable delivery failure.
// Unknown errors count as temporary.
func IsTemporary(err error) bool {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Temporary
	}
	return true
}

// Relay sends mail through a single upstream SMTP relay.
type Relay struct {
	cfg    config.MailConfig
	signer *dkim.Signer
	logger *slog.Logger
}

// New builds a Mailer from configuration. With mail disabled it returns a
// discard mailer that logs instead of sending.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	if !cfg.Enabled {
		return &Discard{logger: logger}, nil
	}

	r := &Relay{cfg: cfg, logger: logger}
	if cfg.DKIM.Enabled {
		signer, err := dkim.NewSignerFromFile(cfg.DKIM.KeyFile, cfg.DKIM.Domain, cfg.DKIM.Selector)
		if err != nil {
			return nil, fmt.Errorf("dkim signer: %w", err)
		}
		r.signer = signer
	}
	return r, nil
}

// Send assembles, signs, and delivers one message through the relay.
func (r *Relay) Send(ctx context.Context, e Email) error {
	if err := e.Validate(); err != nil {
		return &DeliveryError{Temporary: false, Message: err.Error()}
	}

	data, err := e.Build(r.cfg.From, r.cfg.FromName, heloDomain(r.cfg.From))
	if err != nil {
		return &DeliveryError{Temporary: false, Message: fmt.Sprintf("message assembly: %v", err)}
	}

	if r.signer != nil {
		signed, err := r.signer.Sign(data)
		if err != nil {
			r.logger.Warn("dkim signing failed, sending unsigned",
				"domain", r.signer.Domain(), "error", err)
		} else {
			data = signed
		}
	}

	if err := r.deliver(ctx, e.To, data); err != nil {
		return err
	}

	r.logger.Info("message delivered", "to", e.To, "subject", e.Subject)
	return nil
}

func (r *Relay) deliver(ctx context.Context, to string, data []byte) error {
	timeout := r.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &DeliveryError{Temporary: true, Message: fmt.Sprintf("connect %s: %v", addr, err)}
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	client := smtp.NewClient(conn)
	defer client.Close()

	if err := client.Hello(heloDomain(r.cfg.From)); err != nil {
		return categorize(err, "HELO")
	}

	if r.cfg.StartTLS {
		if err := client.StartTLS(nil); err != nil {
			return categorize(err, "STARTTLS")
		}
	}

	if r.cfg.Username != "" {
		auth := sasl.NewPlainClient("", r.cfg.Username, r.cfg.Password)
		if err := client.Auth(auth); err != nil {
			return categorize(err, "AUTH")
		}
	}

	if err := client.Mail(r.cfg.From, nil); err != nil {
		return categorize(err, "MAIL FROM")
	}
	if err := client.Rcpt(to, nil); err != nil {
		return categorize(err, "RCPT TO")
	}

	wc, err := client.Data()
	if err != nil {
		return categorize(err, "DATA")
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return &DeliveryError{Temporary: true, Message: fmt.Sprintf("write message: %v", err)}
	}
	if err := wc.Close(); err != nil {
		return categorize(err, "DATA close")
	}

	client.Quit()
	return nil
}

// categorize maps an SMTP failure to temporary or permanent. 5xx replies are
// permanent, 4xx temporary, anything else assumed temporary.
func categorize(err error, stage string) *DeliveryError {
	msg := fmt.Sprintf("%s failed: %v", stage, err)
	var se *smtp.SMTPError
	if errors.As(err, &se) && se.Code >= 500 {
		return &DeliveryError{Temporary: false, Message: msg}
	}
	return &DeliveryError{Temporary: true, Message: msg}
}

func heloDomain(from string) string {
	for i := len(from) - 1; i >= 0; i-- {
		if from[i] == '@' {
			return from[i+1:]
		}
	}
	return "localhost"
}

// Discard is the mailer used when outbound mail is disabled. It accepts
// every message and records it in the log instead of delivering.
type Discard struct {
	logger *slog.Logger
}

func (d *Discard) Send(ctx context.Context, e Email) error {
	d.logger.Info("mail disabled, discarding message", "to", e.To, "subject", e.Subject)
	return nil
}
