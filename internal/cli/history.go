package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
)

type historyLister interface {
	ListAll(ctx context.Context) ([]domain.Quiz, error)
}

// NewHistoryCmd prints the stored games.
func NewHistoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show previously played games",
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
			return printHistory(cmd.Context(), rt.history, cmd.OutOrStdout(), cmd.ErrOrStderr(), time.Local)
		},
	}
}

// printHistory renders the listing on out. A storage failure is reported on errOut
// and returned, so it is never mistaken for an empty history.
func printHistory(ctx context.Context, history historyLister, out, errOut io.Writer, loc *time.Location) error {
	quizzes, err := history.ListAll(ctx)
	if err != nil {
		fmt.Fprintln(errOut, "Could not load quiz history, try again later.")
		return err
	}
	renderHistory(out, quizzes, loc)
	return nil
}
