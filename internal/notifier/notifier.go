// Package notifier emails meal plans through an SMTP relay.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NutriAssist/internal/config"
	emailverifier "github.com/AfterShip/email-verifier"
	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"
)

// TriggerPhrase in a prompt asks for the reply to be emailed.
const TriggerPhrase = "meal plan"

const bodyTemplate = `Hello!

Here's your meal plan for today:

%s

Enjoy your meals!
`

// Notifier delivers a reply to an email address.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

// ShouldNotify reports whether a turn's reply must be emailed: the prompt
// mentions a meal plan (any case) and an address was given.
func ShouldNotify(prompt, email string) bool {
	return email != "" && strings.Contains(strings.ToLower(prompt), TriggerPhrase)
}

// Dialer opens an authenticated relay connection and sends the messages.
// *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends each meal plan in exactly one attempt.
type Mailer struct {
	smtp     config.SMTP
	dialer   Dialer
	verifier *emailverifier.Verifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewMailer dials the configured relay. Port 465 uses implicit TLS.
func NewMailer(cfg config.SMTP, log zerolog.Logger) *Mailer {
	return NewMailerWithDialer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), log)
}

func NewMailerWithDialer(cfg config.SMTP, d Dialer, log zerolog.Logger) *Mailer {
	return &Mailer{
		smtp:     cfg,
		dialer:   d,
		verifier: emailverifier.NewVerifier(),
		now:      time.Now,
		log:      log.With().Str("component", "notifier").Logger(),
	}
}

// Send composes the meal plan email and hands it to the relay. There is no
// timeout and no retry.
func (m *Mailer) Send(ctx context.Context, to, body string) error {
	if !m.smtp.Configured() {
		return fmt.Errorf("SMTP configuration missing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// The address is free text; a bad syntax check is only worth a warning.
	if syntax := m.verifier.ParseAddress(to); !syntax.Valid {
		m.log.Warn().Str("to", to).Msg("Recipient address does not look valid, sending anyway")
	}

	if err := m.dialer.DialAndSend(m.compose(to, body)); err != nil {
		m.log.Error().Err(err).Str("to", to).Msg("Failed to send meal plan email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info().Str("to", to).Msg("Meal plan sent")
	return nil
}

func (m *Mailer) compose(to, mealPlan string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.smtp.Sender())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", Subject(m.now()))
	msg.SetBody("text/plain", fmt.Sprintf(bodyTemplate, mealPlan))
	return msg
}

// Subject is the date-stamped subject line for a given day.
func Subject(t time.Time) string {
	return fmt.Sprintf("Your Daily Meal Plan - %s", t.Format("2006-01-02"))
}
