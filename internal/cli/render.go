package cli

import (
	"fmt"
	"io"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

const historyTimeLayout = "02 Jan 2006 03:04"

func renderQuestion(w io.Writer, state app.State) {
	mode := "choose one"
	if state.Question.AllowsMultipleSelection {
		mode = "choose any"
	}
	fmt.Fprintf(w, "\nQuestion %d/%d (%s)\n%s\n", state.Index+1, state.Total, mode, state.Question.Text)
	for i, c := range state.Question.Choices {
		mark := " "
		if c.IsSelected {
			mark = "x"
		}
		fmt.Fprintf(w, "  %d) [%s] %s\n", i+1, mark, c.Value)
	}
	fmt.Fprintln(w, "Enter a number to select, n next, p previous, q quit.")
}

func renderAnswers(w io.Writer, questions []domain.Question) {
	for _, q := range questions {
		fmt.Fprintf(w, "%s\nAnswers : %s\n", q.Text, q.Answers())
	}
}

func renderSummary(w io.Writer, quiz domain.Quiz) {
	fmt.Fprintf(w, "\nHello %s,\nHere are the answers selected:\n", quiz.PlayerName)
	renderAnswers(w, quiz.Questions)
}

// renderHistory prints every stored game, oldest first.
func renderHistory(w io.Writer, quizzes []domain.Quiz, loc *time.Location) {
	if len(quizzes) == 0 {
		fmt.Fprintln(w, "No quiz history yet.")
		return
	}
	for i, quiz := range quizzes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "GAME %d : %s\n", quiz.ID, quiz.StartedTime().In(loc).Format(historyTimeLayout))
		fmt.Fprintf(w, "Player : %s\n", quiz.PlayerName)
		renderAnswers(w, quiz.Questions)
	}
}
