package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NutriAssist/internal/chat"
	"NutriAssist/internal/completion"
	"NutriAssist/internal/config"
	"NutriAssist/internal/notifier"
	"NutriAssist/internal/terminal"
	"NutriAssist/internal/utility"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	utility.SetupLogger(cfg.AppEnv, cfg.LogLevel)

	completer, err := completion.New(cfg.Completion)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create completion client")
	}
	mailer := notifier.NewMailer(cfg.SMTP, log.Logger)
	session := chat.NewSession(uuid.New().String(), completer, mailer, log.Logger)

	var markdown terminal.MarkdownRenderer
	if term.IsTerminal(int(os.Stdout.Fd())) {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			log.Warn().Err(err).Msg("markdown rendering disabled")
		} else {
			markdown = renderer.Render
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := terminal.New(session, line, os.Stdout, markdown).Run(ctx); err != nil {
		log.Error().Err(err).Msg("chat ended with an error")
	}
}
