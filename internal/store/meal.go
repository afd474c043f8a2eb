package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kaibot/internal/domain"
)

func (s *Store) SaveMeal(ctx context.Context, meal domain.Meal) error {
	ingredients, err := encodeIngredients(meal.Ingredients)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meals (id, created_at, name, description, ingredients, calories, protein, carbs, fat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID.String(), encodeTime(meal.CreatedAt), meal.Name, meal.Description,
		ingredients, nullInt(meal.Calories), nullInt(meal.Protein), nullInt(meal.Carbs), nullInt(meal.Fat),
	)
	if err != nil {
		return fmt.Errorf("save meal: %w", err)
	}
	return nil
}

// UpdateMeal replaces the mutable fields of the meal with the given id.
// The creation timestamp is never touched.
func (s *Store) UpdateMeal(ctx context.Context, id uuid.UUID, meal domain.Meal) (domain.Meal, error) {
	ingredients, err := encodeIngredients(meal.Ingredients)
	if err != nil {
		return domain.Meal{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE meals
		 SET name = ?, description = ?, ingredients = ?, calories = ?, protein = ?, carbs = ?, fat = ?
		 WHERE id = ?`,
		meal.Name, meal.Description, ingredients,
		nullInt(meal.Calories), nullInt(meal.Protein), nullInt(meal.Carbs), nullInt(meal.Fat),
		id.String(),
	)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("update meal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Meal{}, fmt.Errorf("update meal: %w", err)
	}
	if affected == 0 {
		return domain.Meal{}, fmt.Errorf("update meal %s: %w", id, domain.ErrNotFound)
	}

	meal.ID = id
	return meal, nil
}

func (s *Store) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete meal %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListMeals returns meals created within [start, end], bounds inclusive,
// newest first.
func (s *Store) ListMeals(ctx context.Context, start, end time.Time) ([]domain.Meal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, name, description, ingredients, calories, protein, carbs, fat
		 FROM meals
		 WHERE created_at BETWEEN ? AND ?
		 ORDER BY created_at DESC`,
		encodeTime(start), encodeTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var meals []domain.Meal
	for rows.Next() {
		var (
			m           domain.Meal
			idStr       string
			createdAt   string
			description sql.NullString
			ingredients string
			calories    sql.NullInt64
			protein     sql.NullInt64
			carbs       sql.NullInt64
			fat         sql.NullInt64
		)
		if err := rows.Scan(&idStr, &createdAt, &m.Name, &description, &ingredients,
			&calories, &protein, &carbs, &fat); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		if m.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("scan meal id: %w", err)
		}
		if m.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		m.Description = description.String
		if err := json.Unmarshal([]byte(ingredients), &m.Ingredients); err != nil {
			return nil, fmt.Errorf("scan meal ingredients: %w", err)
		}
		m.Calories = intPtr(calories)
		m.Protein = intPtr(protein)
		m.Carbs = intPtr(carbs)
		m.Fat = intPtr(fat)
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func encodeIngredients(ingredients []domain.Ingredient) (string, error) {
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	data, err := json.Marshal(ingredients)
	if err != nil {
		return "", fmt.Errorf("encode ingredients: %w", err)
	}
	return string(data), nil
}
