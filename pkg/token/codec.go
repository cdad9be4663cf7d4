package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aretw0/tapevm/pkg/domain"
)

// Codec converts states to opaque tokens and back.
type Codec interface {
	Encode(state *domain.State) (string, error)
	Decode(token string) (*domain.State, error)
}

// IsEmpty reports whether a token means "no prior state".
// Very short strings are treated like absent ones, as the first clients sent "" or "0".
func IsEmpty(token string) bool {
	return len(token) <= 1
}

// JSONCodec encodes a state as standard base64 over its JSON form.
type JSONCodec struct{}

// NewJSONCodec returns the default codec.
func NewJSONCodec() JSONCodec {
	return JSONCodec{}
}

func (JSONCodec) Encode(state *domain.State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (JSONCodec) Decode(token string) (*domain.State, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrInvalidToken, err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: json: %v", domain.ErrInvalidToken, err)
	}
	if err := state.Check(); err != nil {
		return nil, err
	}
	return &state, nil
}
