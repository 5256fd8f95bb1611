package manilaplugin

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned when a relation value cannot be decoded as
// a serialized envelope. Only this protocol's own writer produces these
// values, so a decode failure means a non-compliant peer and is fatal.
var ErrInvalidPayload = errors.New("invalid payload")

// Relation keys shared with the established peer implementation.
const (
	keyAuthenticationData = "_authentication_data"
	keyConfigurationData  = "_configuration_data"
	keyName               = "_name"
)

// envelope is the {"data": ...} wrapper applied to every structured payload
// before it is stored as relation text.
type envelope[T any] struct {
	Data T `json:"data"`
}

func encodeEnvelope[T any](payload T) (string, error) {
	raw, err := json.Marshal(envelope[T]{Data: payload})
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(raw), nil
}

func decodeEnvelope[T any](raw string) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return env.Data, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return env.Data, nil
}
