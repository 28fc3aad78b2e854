package memory

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trivia-quiz/internal/domain"
)

// DefaultBankID names the built-in question bank.
const DefaultBankID = "default"

// StaticBankLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	banks map[string][]domain.Question
}

func NewStaticBankLoader(banks map[string][]domain.Question) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) ([]domain.Question, error) {
	if questions, ok := l.banks[bankID]; ok && len(questions) > 0 {
		return questions, nil
	}
	return nil, domain.ErrBankNotFound
}

// FallbackLoader asks each loader in turn and returns the first bank found.
// Only ErrBankNotFound moves on to the next loader; other errors stop the lookup.
type FallbackLoader struct {
	loaders []BankLoader
}

func NewFallbackLoader(loaders ...BankLoader) *FallbackLoader {
	return &FallbackLoader{loaders: loaders}
}

func (l *FallbackLoader) LoadBank(ctx context.Context, bankID string) ([]domain.Question, error) {
	for _, loader := range l.loaders {
		questions, err := loader.LoadBank(ctx, bankID)
		if errors.Is(err, domain.ErrBankNotFound) {
			continue
		}
		return questions, err
	}
	return nil, domain.ErrBankNotFound
}

// DefaultBank is the hard-coded bank shipped with the game.
func DefaultBank() []domain.Question {
	return []domain.Question{
		{
			Text: "Who is the best cricketer in the world?",
			Choices: []domain.Choice{
				{Value: "Sachin Tendulkar"},
				{Value: "Virat Kolli"},
				{Value: "Adam Gilchirst"},
				{Value: "Jacques Kallis"},
			},
		},
		{
			Text: "What are the colors in the Indian national flag?",
			Choices: []domain.Choice{
				{Value: "White"},
				{Value: "Yellow"},
				{Value: "Orange"},
				{Value: "Green"},
			},
			AllowsMultipleSelection: true,
		},
	}
}

// bankFile is the on-disk layout of a question bank. JSON files parse too,
// since YAML is a superset.
type bankFile struct {
	Banks map[string][]struct {
		Question string   `yaml:"question"`
		Choices  []string `yaml:"choices"`
		Multiple bool     `yaml:"multiple"`
	} `yaml:"banks"`
}

// LoadBankFile reads question banks from a YAML or JSON file.
func LoadBankFile(path string) (*StaticBankLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bank file: %w", err)
	}

	banks := make(map[string][]domain.Question, len(file.Banks))
	for id, entries := range file.Banks {
		questions := make([]domain.Question, 0, len(entries))
		for _, e := range entries {
			if len(e.Choices) == 0 {
				return nil, fmt.Errorf("bank %q: question %q has no choices", id, e.Question)
			}
			q := domain.Question{Text: e.Question, AllowsMultipleSelection: e.Multiple}
			for _, c := range e.Choices {
				q.Choices = append(q.Choices, domain.Choice{Value: c})
			}
			questions = append(questions, q)
		}
		banks[id] = questions
	}
	return NewStaticBankLoader(banks), nil
}
