package chat

import "fmt"

// CompletionError wraps any failure while requesting or streaming a reply.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// NotificationError wraps any failure while composing or delivering the email.
type NotificationError struct {
	To  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("Failed to send email: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
