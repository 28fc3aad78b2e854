package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
)

// NewPlayCmd runs one quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			rt, err := loadRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			g := &game{quizzes: rt.quizzes, history: rt.history, out: cmd.OutOrStdout()}
			return g.play(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type game struct {
	quizzes *app.QuizService
	history *app.HistoryService
	out     io.Writer
}

// play drives the name prompt, the question loop and the summary. End of input quits.
func (g *game) play(ctx context.Context, in io.Reader) error {
	lines := bufio.NewScanner(in)

	session, err := g.start(ctx, lines)
	if err != nil || session == nil {
		return err
	}

	renderQuestion(g.out, session.Snapshot())
	for lines.Scan() {
		switch input := strings.TrimSpace(lines.Text()); input {
		case "q":
			return nil
		case "n":
			if !session.HasSelection() {
				fmt.Fprintln(g.out, "Select at least one answer first.")
				continue
			}
			if session.Advance() {
				renderQuestion(g.out, session.Snapshot())
				continue
			}
			done, err := g.summary(ctx, session, lines)
			if done || err != nil {
				return err
			}
			renderQuestion(g.out, session.Snapshot())
		case "p":
			if session.Retreat() {
				renderQuestion(g.out, session.Snapshot())
				continue
			}
			fmt.Fprint(g.out, "Abandon this quiz? [y/N]: ")
			if !lines.Scan() || strings.EqualFold(strings.TrimSpace(lines.Text()), "y") {
				fmt.Fprintln(g.out, "Quiz abandoned.")
				return nil
			}
			renderQuestion(g.out, session.Snapshot())
		default:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Fprintln(g.out, "Unknown command.")
				continue
			}
			state, err := session.Select(n - 1)
			if err != nil {
				fmt.Fprintf(g.out, "No choice %d.\n", n)
				continue
			}
			renderQuestion(g.out, state)
		}
	}
	return lines.Err()
}

// start asks for a name until the quiz can start. A nil session means the input ended.
func (g *game) start(ctx context.Context, lines *bufio.Scanner) (*app.Session, error) {
	for {
		fmt.Fprint(g.out, "Enter your name: ")
		if !lines.Scan() {
			return nil, lines.Err()
		}
		session, err := g.quizzes.StartQuiz(ctx, lines.Text())
		if errors.Is(err, domain.ErrInvalidPlayerName) {
			fmt.Fprintf(g.out, "Name must have at least %d characters.\n", domain.MinPlayerNameLength)
			continue
		}
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// summary shows the answers and waits for save, back or quit. It reports whether the game is over.
func (g *game) summary(ctx context.Context, session *app.Session, lines *bufio.Scanner) (bool, error) {
	payload, err := app.EncodeHandoff(session.Quiz())
	if err != nil {
		return true, err
	}
	quiz, err := app.DecodeHandoff(payload)
	if err != nil {
		return true, err
	}

	renderSummary(g.out, quiz)
	for {
		fmt.Fprint(g.out, "Save this game? y save, p back, q quit: ")
		if !lines.Scan() {
			return true, lines.Err()
		}
		switch strings.TrimSpace(lines.Text()) {
		case "y":
			stored, err := g.history.AppendAsync(ctx, quiz).Wait(ctx)
			if err != nil {
				fmt.Fprintln(g.out, "Could not save the game, history is unavailable.")
				return true, nil
			}
			fmt.Fprintf(g.out, "Saved as game %d.\n", stored.ID)
			return true, nil
		case "p":
			return false, nil
		case "q":
			return true, nil
		}
	}
}
