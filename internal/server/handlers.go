package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"NutriAssist/internal/chat"
	"NutriAssist/internal/conversation"
	"NutriAssist/internal/preferences"
	"NutriAssist/internal/utility"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// ChatRequest is the prompt submitted from the chat box.
type ChatRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

// ChatResponse is returned once a turn has finished.
type ChatResponse struct {
	Reply      string `json:"reply"`
	EmailSent  bool   `json:"email_sent"`
	EmailError string `json:"email_error,omitempty"`
}

type pageData struct {
	Options     preferences.Options
	Preferences preferences.UserPreferences
	Messages    []conversation.Message
}

/*=================================================================================
									HANDLERS
=================================================================================*/

func (s *Server) indexHandler(c echo.Context) error {
	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}
	return c.Render(http.StatusOK, "index.html", pageData{
		Options:     preferences.AvailableOptions(),
		Preferences: session.Preferences(),
		Messages:    session.Messages(),
	})
}

func (s *Server) optionsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, preferences.AvailableOptions())
}

func (s *Server) getPreferencesHandler(c echo.Context) error {
	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session.Preferences())
}

// updatePreferencesHandler applies a partial update. Fields left out of the
// body keep their value.
func (s *Server) updatePreferencesHandler(c echo.Context) error {
	logger := utility.Logger(c)

	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}

	var req preferences.Update
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind preferences body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	if err := session.UpdatePreferences(req); err != nil {
		if errors.Is(err, preferences.ErrUnknownOption) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.Error().Err(err).Msg("Failed to update preferences")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update preferences"})
	}

	logger.Info().Str("session_id", session.ID).Msg("Preferences updated")
	return c.JSON(http.StatusOK, session.Preferences())
}

func (s *Server) messagesHandler(c echo.Context) error {
	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, session.Messages())
}

// chatHandler runs a whole turn and answers once the reply is complete.
func (s *Server) chatHandler(c echo.Context) error {
	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "prompt is required"})
	}

	turn, err := session.Submit(c.Request().Context(), req.Prompt, nil)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	resp := ChatResponse{Reply: turn.Reply, EmailSent: turn.Notified}
	if turn.NotifyErr != nil {
		resp.EmailError = turn.NotifyErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// chatSocketHandler reads one prompt per text frame and streams the reply
// back as fragment frames. Errors are reported as frames and the socket stays open.
func (s *Server) chatSocketHandler(c echo.Context) error {
	logger := utility.Logger(c)

	session, err := s.chatSession(c)
	if err != nil {
		return s.sessionError(c, err)
	}

	// The handshake response is written by the upgrader, so a fresh session
	// cookie has to travel with it.
	header := http.Header{}
	for _, v := range c.Response().Header().Values("Set-Cookie") {
		header.Add("Set-Cookie", v)
	}

	ws, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), header)
	if err != nil {
		return err
	}
	defer ws.Close()

	logger.Info().Str("session_id", session.ID).Msg("Chat socket connected")

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			logger.Info().Str("session_id", session.ID).Msg("Chat socket closed")
			return nil
		}

		prompt := strings.TrimSpace(string(data))
		if prompt == "" {
			if err := utility.WriteFrame(ws, utility.FrameError, "prompt is required"); err != nil {
				return nil
			}
			continue
		}

		if err := streamTurn(c.Request().Context(), ws, session, prompt); err != nil {
			logger.Warn().Err(err).Msg("Chat socket write failed")
			return nil
		}
	}
}

// streamTurn runs one turn over the socket. If the client goes away mid-reply
// the completion is cancelled, so no assistant message is recorded.
func streamTurn(ctx context.Context, ws *websocket.Conn, session *chat.Session, prompt string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var writeErr error
	turn, err := session.Submit(ctx, prompt, func(fragment string) {
		if writeErr != nil {
			return
		}
		if writeErr = utility.WriteFrame(ws, utility.FrameFragment, fragment); writeErr != nil {
			cancel()
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return utility.WriteFrame(ws, utility.FrameError, err.Error())
	}

	if err := utility.WriteFrame(ws, utility.FrameDone, turn.Reply); err != nil {
		return err
	}
	switch {
	case turn.Notified:
		return utility.WriteFrame(ws, utility.FrameEmailSent, "Meal plan sent to your email!")
	case turn.NotifyErr != nil:
		return utility.WriteFrame(ws, utility.FrameEmailError, turn.NotifyErr.Error())
	}
	return nil
}

func (s *Server) healthHandler(c echo.Context) error {
	stats := map[string]string{
		"status":   "up",
		"sessions": strconv.Itoa(s.sessions.Len()),
	}

	if v, err := mem.VirtualMemory(); err == nil {
		stats["mem_used_percent"] = fmt.Sprintf("%.1f", v.UsedPercent)
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		stats["cpu_percent"] = fmt.Sprintf("%.1f", cpuPercent[0])
	}

	return c.JSON(http.StatusOK, stats)
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// chatSession resolves the caller's session, issuing a cookie on first visit.
func (s *Server) chatSession(c echo.Context) (*chat.Session, error) {
	cookie, err := s.cookies.Get(c.Request(), cookieName)
	if err != nil {
		// Unreadable cookies (for example after a secret rotation) start over.
		utility.Logger(c).Debug().Err(err).Msg("Discarding session cookie")
	}

	id, _ := cookie.Values[sessionIDKey].(string)
	if id == "" {
		id = uuid.New().String()
		cookie.Values[sessionIDKey] = id
		if err := cookie.Save(c.Request(), c.Response()); err != nil {
			return nil, fmt.Errorf("failed to save session cookie: %w", err)
		}
	}

	return s.sessions.GetOrCreate(id), nil
}

func (s *Server) sessionError(c echo.Context, err error) error {
	utility.Logger(c).Error().Err(err).Msg("Failed to resolve chat session")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Session unavailable"})
}
