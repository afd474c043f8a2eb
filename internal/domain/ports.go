package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sender delivers a plain-text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// FileFetcher resolves an opaque file reference to raw bytes.
type FileFetcher interface {
	GetFile(ctx context.Context, fileID string) ([]byte, error)
}

// Transcriber converts voice audio to text. Implementations fail fast on
// unsupported encodings; only audio/ogg is accepted.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// MealStore is the persistence contract the meal tools pass through to.
type MealStore interface {
	SaveMeal(ctx context.Context, meal Meal) error
	UpdateMeal(ctx context.Context, id uuid.UUID, meal Meal) (Meal, error)
	DeleteMeal(ctx context.Context, id uuid.UUID) error
	ListMeals(ctx context.Context, start, end time.Time) ([]Meal, error)
}

// WorkoutStore is the persistence contract the workout tools pass through to.
type WorkoutStore interface {
	SaveWorkout(ctx context.Context, w Workout) error
	UpdateWorkout(ctx context.Context, id uuid.UUID, w Workout) (Workout, error)
	ListWorkouts(ctx context.Context, start, end time.Time) ([]Workout, error)
}

// TranscriptStore persists the serialized conversation transcript for the
// current UTC calendar day. The stored bytes are opaque to the store; the
// agent owns their structure.
type TranscriptStore interface {
	// SaveTranscript upserts today's transcript, last write wins. A nil or
	// empty raw value is a success no-op (the transcript could not be
	// represented by the active serialization).
	SaveTranscript(ctx context.Context, raw []byte) error
	// Transcript returns today's transcript, or (nil, nil) when no record
	// exists for the current date.
	Transcript(ctx context.Context) ([]byte, error)
}
