package domain

import (
	"errors"
	"testing"
)

func TestSelectSingleChoiceIsExclusive(t *testing.T) {
	q := Question{
		Text: "Pick a color",
		Choices: []Choice{
			{Value: "Red", IsSelected: true},
			{Value: "Blue"},
			{Value: "Green", IsSelected: true},
		},
	}

	for i := range q.Choices {
		choices, err := q.Select(i)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		for j, c := range choices {
			if c.IsSelected != (j == i) {
				t.Fatalf("select %d: choice %d selected=%v", i, j, c.IsSelected)
			}
		}
	}
}

func TestSelectMultipleChoiceTogglesOnlyTarget(t *testing.T) {
	q := Question{
		Text: "Pick fruits",
		Choices: []Choice{
			{Value: "Apple", IsSelected: true},
			{Value: "Pear"},
			{Value: "Plum", IsSelected: true},
		},
		AllowsMultipleSelection: true,
	}

	choices, err := q.Select(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := []bool{true, true, true}
	for i, c := range choices {
		if c.IsSelected != want[i] {
			t.Fatalf("choice %d selected=%v, want %v", i, c.IsSelected, want[i])
		}
	}

	q.Choices = choices
	choices, err = q.Select(0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want = []bool{false, true, true}
	for i, c := range choices {
		if c.IsSelected != want[i] {
			t.Fatalf("after toggle: choice %d selected=%v, want %v", i, c.IsSelected, want[i])
		}
	}
}

func TestSelectDoesNotMutateReceiver(t *testing.T) {
	q := Question{Text: "Pick", Choices: []Choice{{Value: "A"}, {Value: "B"}}}
	if _, err := q.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if q.HasSelection() {
		t.Fatalf("expected receiver untouched, got %+v", q.Choices)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	q := Question{Text: "Pick", Choices: []Choice{{Value: "A"}}}
	for _, i := range []int{-1, 1} {
		if _, err := q.Select(i); !errors.Is(err, ErrChoiceNotFound) {
			t.Fatalf("select %d: expected ErrChoiceNotFound, got %v", i, err)
		}
	}
}

func TestAnswers(t *testing.T) {
	q := Question{Choices: []Choice{
		{Value: "White", IsSelected: true},
		{Value: "Yellow"},
		{Value: "Orange", IsSelected: true},
		{Value: "Green", IsSelected: true},
	}}
	if got := q.Answers(); got != "White,Orange,Green" {
		t.Fatalf("answers = %q", got)
	}
	q.Choices = q.Choices[:2]
	if got := q.Answers(); got != "White" {
		t.Fatalf("single answer = %q", got)
	}
	if got := (Question{Choices: []Choice{{Value: "x"}}}).Answers(); got != "" {
		t.Fatalf("expected empty answers, got %q", got)
	}
}

func TestQuizCloneIsDeep(t *testing.T) {
	quiz := Quiz{
		PlayerName: "Alice",
		Questions:  []Question{{Text: "Q", Choices: []Choice{{Value: "A"}}}},
	}
	clone := quiz.Clone()
	clone.Questions[0].Choices[0].IsSelected = true
	if quiz.Questions[0].Choices[0].IsSelected {
		t.Fatalf("clone shares choice storage")
	}
}

func TestQuizValidate(t *testing.T) {
	bank := []Question{{Text: "Q", Choices: []Choice{{Value: "A"}}}}
	cases := map[string]Quiz{
		"blank name": {PlayerName: "  ", Questions: bank},
		"empty bank": {PlayerName: "Alice"},
		"choiceless": {PlayerName: "Alice", Questions: []Question{{Text: "Q"}}},
	}
	for name, quiz := range cases {
		if err := quiz.Validate(); !errors.Is(err, ErrInvalidStartState) {
			t.Fatalf("%s: expected ErrInvalidStartState, got %v", name, err)
		}
	}
	if err := (Quiz{PlayerName: "Alice", Questions: bank}).Validate(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}
}

func TestValidPlayerName(t *testing.T) {
	cases := map[string]bool{
		"":       false,
		"ab":     false,
		"  ab  ": false,
		"abc":    true,
		" Bob ":  true,
		"Zoë":    true,
		"李小龍":    true,
		"\t\n  ": false,
	}
	for name, want := range cases {
		if got := ValidPlayerName(name); got != want {
			t.Fatalf("ValidPlayerName(%q) = %v, want %v", name, got, want)
		}
	}
}
