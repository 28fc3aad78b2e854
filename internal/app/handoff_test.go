package app_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

func TestHandoffRoundTrip(t *testing.T) {
	session := mustSession(t, colorFruitQuiz())
	_, _ = session.Select(1)
	session.Advance()
	_, _ = session.Select(0)
	_, _ = session.Select(1)

	quiz := session.Quiz()
	payload, err := app.EncodeHandoff(quiz)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := app.DecodeHandoff(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, quiz) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", quiz, decoded)
	}
	if decoded.ID != 0 {
		t.Fatalf("id must stay unset before storage, got %d", decoded.ID)
	}
}

func TestHandoffWireFormat(t *testing.T) {
	payload, err := app.EncodeHandoff(colorFruitQuiz())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, field := range []string{`"playerName"`, `"timeInMills"`, `"question"`, `"choices"`, `"isMultipleSelectionAllowed"`, `"value"`, `"isSelected"`} {
		if !strings.Contains(payload, field) {
			t.Fatalf("payload missing %s: %s", field, payload)
		}
	}
	if strings.Contains(payload, `"id"`) {
		t.Fatalf("unassigned id should be omitted: %s", payload)
	}
}

func TestDecodeHandoffRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"blank":        "   ",
		"malformed":    `{"playerName": "Alice", "questions": [`,
		"wrong type":   `{"playerName": 42}`,
		"no questions": `{"playerName": "Alice", "timeInMills": 1, "questions": []}`,
		"stored id":    `{"id": 1, "playerName": "Alice", "timeInMills": 1, "questions": [{"question": "Q", "choices": [{"value": "A", "isSelected": true}]}]}`,
	}
	for name, payload := range cases {
		if _, err := app.DecodeHandoff(payload); !errors.Is(err, domain.ErrDeserialization) {
			t.Fatalf("%s: expected ErrDeserialization, got %v", name, err)
		}
	}
}
