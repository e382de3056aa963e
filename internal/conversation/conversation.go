// Package conversation keeps the ordered chat transcript of a session.
package conversation

import (
	"sync"
	"time"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. It is never edited after it is appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is an append-only transcript. Order of Append calls is display order.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

func NewLog() *Log {
	return &Log{}
}

// Append records a message and returns it.
func (l *Log) Append(role Role, content string) Message {
	msg := Message{Role: role, Content: content, CreatedAt: time.Now()}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	return msg
}

// Messages returns a copy of the transcript in arrival order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
