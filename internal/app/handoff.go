package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"trivia-quiz/internal/domain"
)

// EncodeHandoff serializes a completed quiz into the JSON text passed from
// the quiz flow to the summary flow.
func EncodeHandoff(quiz domain.Quiz) (string, error) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSerializationFailed, err)
	}
	return string(data), nil
}

// DecodeHandoff rebuilds a quiz from a handoff payload. Empty, malformed or
// structurally invalid payloads yield domain.ErrDeserialization, and so does a
// payload carrying an id: only the history store assigns ids.
func DecodeHandoff(payload string) (domain.Quiz, error) {
	if strings.TrimSpace(payload) == "" {
		return domain.Quiz{}, fmt.Errorf("%w: empty payload", domain.ErrDeserialization)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	if quiz.ID != 0 {
		return domain.Quiz{}, fmt.Errorf("%w: unexpected id %d", domain.ErrDeserialization, quiz.ID)
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	return quiz, nil
}
