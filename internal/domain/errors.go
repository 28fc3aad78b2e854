package domain

import "errors"

var (
	// ErrInvalidStartState is returned when a quiz cannot be started from the given input.
	ErrInvalidStartState = errors.New("invalid quiz start state")
	// ErrInvalidPlayerName is returned when the player name is too short to start a quiz.
	ErrInvalidPlayerName = errors.New("player name must have at least 3 characters")
	// ErrChoiceNotFound indicates a selected choice index is out of range.
	ErrChoiceNotFound = errors.New("choice not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrDeserialization is returned for malformed or missing quiz payloads.
	ErrDeserialization = errors.New("invalid data received")
	// ErrSerializationFailed is returned when a quiz cannot be encoded.
	ErrSerializationFailed = errors.New("quiz serialization failed")
	// ErrStorageUnavailable is returned when quiz history cannot be read or written.
	ErrStorageUnavailable = errors.New("quiz history storage unavailable")
)
