package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kaibot/internal/domain"
)

func (s *Store) SaveWorkout(ctx context.Context, w domain.Workout) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("save workout: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, created_at, name, type, duration, calories_burned)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID.String(), encodeTime(w.CreatedAt), string(w.Name), string(w.Type),
		nullInt(w.Duration), nullInt(w.CaloriesBurned),
	)
	if err != nil {
		return fmt.Errorf("save workout: %w", err)
	}
	return nil
}

func (s *Store) UpdateWorkout(ctx context.Context, id uuid.UUID, w domain.Workout) (domain.Workout, error) {
	if err := w.Validate(); err != nil {
		return domain.Workout{}, fmt.Errorf("update workout: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE workouts SET name = ?, type = ?, duration = ?, calories_burned = ? WHERE id = ?`,
		string(w.Name), string(w.Type), nullInt(w.Duration), nullInt(w.CaloriesBurned), id.String(),
	)
	if err != nil {
		return domain.Workout{}, fmt.Errorf("update workout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Workout{}, fmt.Errorf("update workout: %w", err)
	}
	if affected == 0 {
		return domain.Workout{}, fmt.Errorf("update workout %s: %w", id, domain.ErrNotFound)
	}

	w.ID = id
	return w, nil
}

// ListWorkouts returns workouts created within [start, end], bounds
// inclusive, newest first.
func (s *Store) ListWorkouts(ctx context.Context, start, end time.Time) ([]domain.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, name, type, duration, calories_burned
		 FROM workouts
		 WHERE created_at BETWEEN ? AND ?
		 ORDER BY created_at DESC`,
		encodeTime(start), encodeTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []domain.Workout
	for rows.Next() {
		var (
			w         domain.Workout
			idStr     string
			createdAt string
			name      string
			typ       string
			duration  sql.NullInt64
			calories  sql.NullInt64
		)
		if err := rows.Scan(&idStr, &createdAt, &name, &typ, &duration, &calories); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		if w.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("scan workout id: %w", err)
		}
		if w.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		w.Name = domain.WorkoutName(name)
		w.Type = domain.WorkoutType(typ)
		w.Duration = intPtr(duration)
		w.CaloriesBurned = intPtr(calories)
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}
