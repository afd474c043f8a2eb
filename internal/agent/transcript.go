package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"kaibot/internal/domain"
)

// ErrBinaryContent marks a transcript that cannot be represented by the
// JSON serialization because it carries raw attachment bytes.
var ErrBinaryContent = errors.New("transcript contains binary content")

// EncodeTranscript serializes a model exchange for storage. The encoding is
// owned by this package; callers treat the result as an opaque blob.
func EncodeTranscript(msgs []domain.ModelMessage) ([]byte, error) {
	for _, m := range msgs {
		for _, p := range m.Parts {
			if len(p.Data) > 0 {
				return nil, ErrBinaryContent
			}
		}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

// DecodeTranscript restores a model exchange serialized by EncodeTranscript.
// Nil or empty input yields an empty history.
func DecodeTranscript(raw []byte) ([]domain.ModelMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var msgs []domain.ModelMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return msgs, nil
}
