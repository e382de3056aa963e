/*
Package completion talks to the external text-completion service. A request
carries one system message and one user message and yields a live stream of
text fragments.
*/
package completion

import (
	"context"
	"fmt"
	"strings"

	"NutriAssist/internal/config"
	"github.com/openai/openai-go/packages/ssestream"
)

// Client starts one streaming completion per call.
type Client interface {
	Stream(ctx context.Context, systemInstruction, userMessage string) (Stream, error)
}

// Stream is a producible-once sequence of text fragments in arrival order.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// New builds the client for the configured provider.
func New(cfg config.Completion) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL), nil
	case config.ProviderGemini:
		return NewGemini(cfg.GeminiAPIKey, cfg.Model, cfg.GeminiBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}

// Collect hands every fragment to render as it arrives and returns the whole
// reply after the stream ends. On error nothing is returned, even if some
// fragments were already rendered.
func Collect(stream Stream, render func(fragment string)) (string, error) {
	defer stream.Close()

	var reply strings.Builder
	for stream.Next() {
		fragment := stream.Current()
		if render != nil {
			render(fragment)
		}
		reply.WriteString(fragment)
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return reply.String(), nil
}

// sseStream adapts a decoded event stream to Stream, skipping events that
// carry no text.
type sseStream[T any] struct {
	events *ssestream.Stream[T]
	text   func(T) string
	cur    string
}

func newSSEStream[T any](events *ssestream.Stream[T], text func(T) string) *sseStream[T] {
	return &sseStream[T]{events: events, text: text}
}

func (s *sseStream[T]) Next() bool {
	for s.events.Next() {
		if fragment := s.text(s.events.Current()); fragment != "" {
			s.cur = fragment
			return true
		}
	}
	return false
}

func (s *sseStream[T]) Current() string { return s.cur }

func (s *sseStream[T]) Err() error { return s.events.Err() }

func (s *sseStream[T]) Close() error { return s.events.Close() }
