package utility

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader turns chat requests into websocket connections.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow CORS for development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is one server-to-client websocket message.
type Frame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Frame types sent during a chat turn.
const (
	FrameFragment   = "fragment"
	FrameDone       = "done"
	FrameError      = "error"
	FrameEmailSent  = "email_sent"
	FrameEmailError = "email_error"
)

// WriteFrame sends a JSON frame as a text message.
func WriteFrame(conn *websocket.Conn, frameType, content string) error {
	return conn.WriteJSON(Frame{Type: frameType, Content: content})
}
