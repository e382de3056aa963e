package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"NutriAssist/internal/config"
	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

var testSMTP = config.SMTP{
	Host:     "smtp.example.com",
	Port:     465,
	User:     "bot@example.com",
	Password: "secret",
}

func TestShouldNotify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		prompt string
		email  string
		want   bool
	}{
		{"phrase and email", "Give me a meal plan for today", "user@example.com", true},
		{"mixed case phrase", "Weekly MEAL Plan please", "user@example.com", true},
		{"phrase missing", "What is a good snack?", "user@example.com", false},
		{"email empty", "Give me a meal plan for today", "", false},
		{"words split", "a meal, then a plan", "user@example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldNotify(tc.prompt, tc.email))
		})
	}
}

func TestSubject(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.March, 7, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "Your Daily Meal Plan - 2026-03-07", Subject(day))
}

func TestMailer_Send(t *testing.T) {
	d := &recordingDialer{}
	m := NewMailerWithDialer(testSMTP, d, zerolog.Nop())
	m.now = func() time.Time { return time.Date(2026, time.January, 2, 8, 0, 0, 0, time.UTC) }

	err := m.Send(context.Background(), "user@example.com", "Breakfast: porridge")
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"bot@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"user@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your Daily Meal Plan - 2026-01-02"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "Breakfast: porridge")
	assert.Contains(t, buf.String(), "Enjoy your meals!")
}

func TestMailer_SendFailureIsReturnedOnce(t *testing.T) {
	d := &recordingDialer{err: errors.New("535 authentication failed")}
	m := NewMailerWithDialer(testSMTP, d, zerolog.Nop())

	err := m.Send(context.Background(), "user@example.com", "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 authentication failed")
	assert.Len(t, d.sent, 1)
}

func TestMailer_MissingCredentials(t *testing.T) {
	d := &recordingDialer{}
	m := NewMailerWithDialer(config.SMTP{Host: "smtp.example.com", Port: 465}, d, zerolog.Nop())

	require.Error(t, m.Send(context.Background(), "user@example.com", "plan"))
	assert.Empty(t, d.sent)
}

func TestMailer_SendsToOddAddress(t *testing.T) {
	d := &recordingDialer{}
	m := NewMailerWithDialer(testSMTP, d, zerolog.Nop())

	require.NoError(t, m.Send(context.Background(), "not-an-address", "plan"))
	assert.Len(t, d.sent, 1)
}
