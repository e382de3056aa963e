/*
Package chat runs prompt/reply turns for a session. It ties the preference
store, the transcript, the completion client and the notifier together.
*/
package chat

import (
	"context"
	"sync"
	"sync/atomic"

	"NutriAssist/internal/completion"
	"NutriAssist/internal/conversation"
	"NutriAssist/internal/notifier"
	"NutriAssist/internal/preferences"
	"github.com/rs/zerolog"
)

// State is the coarse position of a session in its turn cycle.
type State int32

const (
	StateIdle State = iota
	StateAwaitingPrompt
	StateStreamingReply
	StateNotifyingEmail
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPrompt:
		return "awaiting_prompt"
	case StateStreamingReply:
		return "streaming_reply"
	case StateNotifyingEmail:
		return "notifying_email"
	default:
		return "unknown"
	}
}

// Turn is the outcome of one submitted prompt.
type Turn struct {
	Prompt    string
	Reply     string
	Notified  bool
	NotifyErr error
}

// Session is one user's isolated chat: its own preferences and transcript.
// Interactions run one at a time.
type Session struct {
	ID string

	prefs     *preferences.Store
	log       *conversation.Log
	completer completion.Client
	notifier  notifier.Notifier
	logger    zerolog.Logger

	mu    sync.Mutex
	state atomic.Int32
}

func NewSession(id string, completer completion.Client, n notifier.Notifier, logger zerolog.Logger) *Session {
	return &Session{
		ID:        id,
		prefs:     preferences.NewStore(),
		log:       conversation.NewLog(),
		completer: completer,
		notifier:  n,
		logger:    logger.With().Str("session_id", id).Logger(),
	}
}

// State reports where the session is in its turn cycle.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Preferences returns a snapshot of the current preferences.
func (s *Session) Preferences() preferences.UserPreferences {
	return s.prefs.Get()
}

// UpdatePreferences applies a form change. It waits for any running turn.
func (s *Session) UpdatePreferences(u preferences.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Apply(u)
}

// Messages returns the transcript in display order.
func (s *Session) Messages() []conversation.Message {
	return s.log.Messages()
}

// Submit runs a full turn for prompt. Every fragment is passed to render as it
// arrives. A completion failure returns a *CompletionError and leaves only the
// user message in the transcript. A mail failure is reported in Turn.NotifyErr
// and keeps the recorded reply.
func (s *Session) Submit(ctx context.Context, prompt string, render func(fragment string)) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.setState(StateIdle)

	s.setState(StateAwaitingPrompt)
	turn := Turn{Prompt: prompt}

	s.log.Append(conversation.RoleUser, prompt)
	prefs := s.prefs.Get()

	s.setState(StateStreamingReply)
	reply, err := s.streamReply(ctx, preferences.SystemInstruction(prefs), prompt, render)
	if err != nil {
		s.logger.Error().Err(err).Msg("Completion request failed")
		return turn, &CompletionError{Err: err}
	}

	turn.Reply = reply
	s.log.Append(conversation.RoleAssistant, reply)
	s.logger.Info().Int("reply_len", len(reply)).Msg("Assistant reply recorded")

	if !notifier.ShouldNotify(prompt, prefs.Email) {
		return turn, nil
	}

	s.setState(StateNotifyingEmail)
	if err := s.notifier.Send(ctx, prefs.Email, reply); err != nil {
		s.logger.Warn().Err(err).Msg("Meal plan email failed")
		turn.NotifyErr = &NotificationError{To: prefs.Email, Err: err}
		return turn, nil
	}
	turn.Notified = true
	return turn, nil
}

func (s *Session) streamReply(ctx context.Context, instruction, prompt string, render func(string)) (string, error) {
	stream, err := s.completer.Stream(ctx, instruction, prompt)
	if err != nil {
		return "", err
	}
	return completion.Collect(stream, render)
}
