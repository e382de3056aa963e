/*
Package config loads process-wide settings and secrets once at startup.
Values come from the environment, optionally seeded from a .env file.
The returned Config is never mutated or written back.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 465
	defaultPort        = 8080
	defaultMaxSessions = 1024
)

// Config is the read-only configuration surface of the process.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     int

	// SessionSecret signs the browser session cookie.
	SessionSecret string
	MaxSessions   int

	Completion Completion
	SMTP       SMTP
}

// Completion selects and authenticates the completion service.
type Completion struct {
	Provider      string
	Model         string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiBaseURL string
}

// SMTP holds the mail relay endpoint and credentials.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Configured reports whether credentials for the relay are present.
func (s SMTP) Configured() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

// Sender is the From address, falling back to the login user.
func (s SMTP) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read .env: %w", err)
		}
		log.Debug().Msg("No .env file found, reading from environment")
	}

	cfg := FromLookup(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromLookup builds a Config from a getenv-style function and applies defaults.
func FromLookup(getenv func(string) string) Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV"),
		LogLevel:      getenv("LOG_LEVEL"),
		Port:          atoiDefault(getenv("PORT"), defaultPort),
		SessionSecret: getenv("SESSION_SECRET"),
		MaxSessions:   atoiDefault(getenv("MAX_SESSIONS"), defaultMaxSessions),
		Completion: Completion{
			Provider:      strings.ToLower(strings.TrimSpace(getenv("COMPLETION_PROVIDER"))),
			Model:         getenv("COMPLETION_MODEL"),
			OpenAIAPIKey:  getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: getenv("OPENAI_BASE_URL"),
			GeminiAPIKey:  getenv("GEMINI_API_KEY"),
			GeminiBaseURL: getenv("GEMINI_BASE_URL"),
		},
		SMTP: SMTP{
			Host:     getenv("SMTP_HOST"),
			Port:     atoiDefault(getenv("SMTP_PORT"), defaultSMTPPort),
			User:     getenv("SMTP_USER"),
			Password: getenv("SMTP_PASS"),
			From:     getenv("SMTP_FROM"),
		},
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = defaultSMTPHost
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = ProviderOpenAI
	}
	if cfg.Completion.Model == "" {
		switch cfg.Completion.Provider {
		case ProviderGemini:
			cfg.Completion.Model = defaultGeminiModel
		default:
			cfg.Completion.Model = defaultOpenAIModel
		}
	}
	return cfg
}

// Validate checks that the selected completion provider can authenticate.
// Mail credentials are optional; sends fail at delivery time without them.
func (c Config) Validate() error {
	switch c.Completion.Provider {
	case ProviderOpenAI:
		if c.Completion.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY must be set")
		}
	case ProviderGemini:
		if c.Completion.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set")
		}
	default:
		return fmt.Errorf("unsupported COMPLETION_PROVIDER %q", c.Completion.Provider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive")
	}
	return nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 {
		return def
	}
	return n
}
