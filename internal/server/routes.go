package server

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"slices"

	"NutriAssist/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

var templateFuncs = template.FuncMap{
	"has": func(list []string, v string) bool { return slices.Contains(list, v) },
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)

	e.Renderer = &TemplateRenderer{
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
	}

	e.GET("/", s.indexHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/options", s.optionsHandler)

	e.GET("/preferences", s.getPreferencesHandler)
	e.PUT("/preferences", s.updatePreferencesHandler)

	e.GET("/messages", s.messagesHandler)
	e.POST("/chat", s.chatHandler)
	e.GET("/chat/ws", s.chatSocketHandler)

	return e
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("ip", utility.GetRealIP(c)).
			Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}
