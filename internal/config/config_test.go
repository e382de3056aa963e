package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestFromLookup_Defaults(t *testing.T) {
	t.Parallel()

	cfg := FromLookup(lookup(nil))

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1024, cfg.MaxSessions)
	assert.Equal(t, ProviderOpenAI, cfg.Completion.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Completion.Model)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Configured())
}

func TestFromLookup_Overrides(t *testing.T) {
	t.Parallel()

	cfg := FromLookup(lookup(map[string]string{
		"APP_ENV":             "production",
		"PORT":                "9090",
		"COMPLETION_PROVIDER": "Gemini",
		"GEMINI_API_KEY":      "g-key",
		"SMTP_HOST":           "mail.example.com",
		"SMTP_PORT":           "587",
		"SMTP_USER":           "bot@example.com",
		"SMTP_PASS":           "secret",
		"MAX_SESSIONS":        "3",
	}))

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.Completion.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Completion.Model)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.True(t, cfg.SMTP.Configured())
	assert.Equal(t, "bot@example.com", cfg.SMTP.Sender())
}

func TestSMTP_SenderPrefersFrom(t *testing.T) {
	t.Parallel()

	s := SMTP{User: "login@example.com", From: "Meals <meals@example.com>"}
	assert.Equal(t, "Meals <meals@example.com>", s.Sender())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.Error(t, FromLookup(lookup(nil)).Validate(), "missing OpenAI key")

	cfg := FromLookup(lookup(map[string]string{"OPENAI_API_KEY": "sk-test"}))
	require.NoError(t, cfg.Validate())

	cfg = FromLookup(lookup(map[string]string{"COMPLETION_PROVIDER": "gemini", "OPENAI_API_KEY": "sk-test"}))
	require.Error(t, cfg.Validate(), "gemini selected without its key")

	cfg = FromLookup(lookup(map[string]string{"COMPLETION_PROVIDER": "llama", "OPENAI_API_KEY": "sk-test"}))
	require.Error(t, cfg.Validate())
}
