package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// dateKey is the transcript key for the current UTC calendar day. Starting a
// new day starts a new, empty transcript.
func dateKey(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// SaveTranscript upserts today's transcript, last write wins. An empty raw
// value means the transcript could not be represented by the active
// serialization; that is treated as a success no-op.
func (s *Store) SaveTranscript(ctx context.Context, raw []byte) error {
	if len(raw) == 0 {
		s.logger.Debug("transcript not serializable, skipping save")
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (date, messages, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (date) DO UPDATE
		 SET messages = excluded.messages,
		     updated_at = excluded.updated_at`,
		dateKey(time.Now()), string(raw), encodeTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Transcript returns today's transcript bytes, or (nil, nil) when no record
// exists for the current date.
func (s *Store) Transcript(ctx context.Context) ([]byte, error) {
	var messages string
	err := s.db.QueryRowContext(ctx,
		`SELECT messages FROM transcripts WHERE date = ?`,
		dateKey(time.Now()),
	).Scan(&messages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return []byte(messages), nil
}
