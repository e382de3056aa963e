// Package terminal is a single-user chat REPL on top of a chat.Session.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"NutriAssist/internal/chat"
	"NutriAssist/internal/conversation"
	"NutriAssist/internal/preferences"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// LineReader reads one edited input line. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// MarkdownRenderer turns a markdown reply into terminal output.
type MarkdownRenderer func(markdown string) (string, error)

// REPL drives one chat session from a terminal.
type REPL struct {
	session  *chat.Session
	input    LineReader
	out      io.Writer
	markdown MarkdownRenderer
}

// New returns a REPL. markdown may be nil, in which case the transcript is
// printed as plain text.
func New(session *chat.Session, input LineReader, out io.Writer, markdown MarkdownRenderer) *REPL {
	return &REPL{
		session:  session,
		input:    input,
		out:      out,
		markdown: markdown,
	}
}

// Run reads prompts until /quit, Ctrl-C or end of input.
func (r *REPL) Run(ctx context.Context) error {
	r.printWelcome()

	for {
		line, err := r.input.Prompt(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.input.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			keepGoing, err := r.handleCommand(line)
			if err != nil {
				r.printError(err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		r.submit(ctx, line)
	}
}

// submit runs one turn, printing fragments as they arrive.
func (r *REPL) submit(ctx context.Context, prompt string) {
	fmt.Fprint(r.out, assistantStyle.Render("assistant> "))
	turn, err := r.session.Submit(ctx, prompt, func(fragment string) {
		fmt.Fprint(r.out, fragment)
	})
	fmt.Fprintln(r.out)
	if err != nil {
		r.printError(err)
		return
	}

	switch {
	case turn.Notified:
		fmt.Fprintln(r.out, noticeStyle.Render("Meal plan sent to your email!"))
	case turn.NotifyErr != nil:
		r.printError(turn.NotifyErr)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand processes a slash command. It returns false when the REPL
// should exit.
func (r *REPL) handleCommand(line string) (bool, error) {
	command, rest, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)
	rest = strings.TrimSpace(rest)

	switch command {
	case "/help", "/h", "/?":
		r.printHelp()
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/prefs":
		fmt.Fprint(r.out, preferences.BuildContext(r.session.Preferences()))
		fmt.Fprintf(r.out, "- Email: %s\n", r.session.Preferences().Email)
		return true, nil

	case "/history":
		return true, r.printHistory()

	case "/diet":
		values := splitList(rest)
		return true, r.update(preferences.Update{DietaryRestrictions: &values})

	case "/allergies":
		values := splitList(rest)
		return true, r.update(preferences.Update{Allergies: &values})

	case "/cuisines":
		values := splitList(rest)
		return true, r.update(preferences.Update{FavoriteCuisines: &values})

	case "/religion":
		if rest == "" {
			return true, fmt.Errorf("usage: /religion <%s>", strings.Join(preferences.ReligiousOptions, "|"))
		}
		return true, r.update(preferences.Update{ReligiousRestriction: &rest})

	case "/email":
		return true, r.update(preferences.Update{Email: &rest})

	case "/meal":
		return true, r.toggleMeal(rest)

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func (r *REPL) update(u preferences.Update) error {
	if err := r.session.UpdatePreferences(u); err != nil {
		return err
	}
	fmt.Fprintln(r.out, dimStyle.Render("[Preferences updated]"))
	return nil
}

func (r *REPL) toggleMeal(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: /meal <breakfast|lunch|dinner|snacks> on|off")
	}

	meal, err := preferences.ParseMeal(fields[0])
	if err != nil {
		return err
	}

	var enabled bool
	switch strings.ToLower(fields[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("usage: /meal %s on|off", meal)
	}

	return r.update(preferences.Update{MealPreferences: map[preferences.Meal]bool{meal: enabled}})
}

// splitList parses "a, b, c". An empty argument clears the selection.
func splitList(s string) []string {
	values := []string{}
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, titleStyle.Render("Nutritional Assistant"))
	fmt.Fprintln(r.out, "Ask me about nutrition, recipes, or meal planning. Type /help for commands.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, titleStyle.Render("Commands"))
	fmt.Fprintf(r.out, "  /diet <a, b>            Dietary restrictions (%s)\n", strings.Join(preferences.DietaryOptions, ", "))
	fmt.Fprintf(r.out, "  /allergies <a, b>       Allergies (%s)\n", strings.Join(preferences.AllergyOptions, ", "))
	fmt.Fprintf(r.out, "  /cuisines <a, b>        Favorite cuisines (%s)\n", strings.Join(preferences.CuisineOptions, ", "))
	fmt.Fprintf(r.out, "  /religion <option>      Religious restriction (%s)\n", strings.Join(preferences.ReligiousOptions, ", "))
	fmt.Fprintln(r.out, "  /email <address>        Email for meal plans (empty disables)")
	fmt.Fprintln(r.out, "  /meal <name> on|off     Toggle breakfast, lunch, dinner or snacks")
	fmt.Fprintln(r.out, "  /prefs                  Show current preferences")
	fmt.Fprintln(r.out, "  /history                Show the conversation")
	fmt.Fprintln(r.out, "  /quit                   Exit")
	fmt.Fprintln(r.out, dimStyle.Render("List commands without values clear the selection."))
}

func (r *REPL) printHistory() error {
	messages := r.session.Messages()
	if len(messages) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("[No messages yet]"))
		return nil
	}

	for _, m := range messages {
		label := promptStyle.Render("you:")
		if m.Role == conversation.RoleAssistant {
			label = assistantStyle.Render("assistant:")
		}
		fmt.Fprintln(r.out, label)

		content := m.Content
		if r.markdown != nil && m.Role == conversation.RoleAssistant {
			rendered, err := r.markdown(content)
			if err != nil {
				return fmt.Errorf("failed to render reply: %w", err)
			}
			content = rendered
		}
		fmt.Fprintln(r.out, content)
	}
	return nil
}

func (r *REPL) printError(err error) {
	fmt.Fprintf(r.out, "%s %v\n", errorStyle.Render("[Error]"), err)
}
