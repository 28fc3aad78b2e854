package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinPlayerNameLength is the shortest trimmed name accepted before a quiz starts.
const MinPlayerNameLength = 3

// Choice is one selectable answer of a question.
type Choice struct {
	Value      string `json:"value"`
	IsSelected bool   `json:"isSelected"`
}

// Question holds a prompt and its ordered choices.
type Question struct {
	Text                    string   `json:"question"`
	Choices                 []Choice `json:"choices"`
	AllowsMultipleSelection bool     `json:"isMultipleSelectionAllowed"`
}

// Quiz is one attempt of a player. ID stays zero until the history store assigns one.
type Quiz struct {
	ID         int64      `json:"id,omitempty"`
	PlayerName string     `json:"playerName"`
	StartedAt  int64      `json:"timeInMills"` // epoch milliseconds
	Questions  []Question `json:"questions"`
}

// HasSelection reports whether at least one choice is selected.
func (q Question) HasSelection() bool {
	for _, c := range q.Choices {
		if c.IsSelected {
			return true
		}
	}
	return false
}

// Answers joins the selected choice values with commas, in choice order.
func (q Question) Answers() string {
	selected := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		if c.IsSelected {
			selected = append(selected, c.Value)
		}
	}
	return strings.Join(selected, ",")
}

// Select returns a new choice list with choice i picked according to the question mode:
// radio semantics for single selection, checkbox toggle for multiple selection.
func (q Question) Select(i int) ([]Choice, error) {
	if i < 0 || i >= len(q.Choices) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrChoiceNotFound, i, len(q.Choices))
	}
	choices := make([]Choice, len(q.Choices))
	copy(choices, q.Choices)
	if q.AllowsMultipleSelection {
		choices[i].IsSelected = !choices[i].IsSelected
		return choices, nil
	}
	for j := range choices {
		choices[j].IsSelected = j == i
	}
	return choices, nil
}

// Clone returns a copy that shares no choice storage with q.
func (q Question) Clone() Question {
	out := q
	out.Choices = make([]Choice, len(q.Choices))
	copy(out.Choices, q.Choices)
	return out
}

// Clone returns a deep copy of the quiz.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = CloneQuestions(q.Questions)
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}

// StartedTime converts StartedAt to a time.Time.
func (q Quiz) StartedTime() time.Time {
	return time.UnixMilli(q.StartedAt)
}

// Validate checks that the quiz can drive a session.
func (q Quiz) Validate() error {
	if strings.TrimSpace(q.PlayerName) == "" {
		return fmt.Errorf("%w: blank player name", ErrInvalidStartState)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: empty question bank", ErrInvalidStartState)
	}
	for i, question := range q.Questions {
		if len(question.Choices) == 0 {
			return fmt.Errorf("%w: question %d has no choices", ErrInvalidStartState, i)
		}
	}
	return nil
}

// ValidPlayerName reports whether name is long enough to start a quiz.
func ValidPlayerName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinPlayerNameLength
}
