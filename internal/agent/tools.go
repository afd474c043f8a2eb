package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kaibot/internal/domain"
)

// The seven capabilities the agent may invoke. Each is a direct passthrough
// to a domain store; no business logic lives here.

// RegisterDomainTools wires the fixed tool set against the given stores.
func RegisterDomainTools(reg *Registry, meals domain.MealStore, workouts domain.WorkoutStore) {
	reg.Register(&currentTimeTool{})
	reg.Register(&saveMealTool{meals: meals})
	reg.Register(&updateMealTool{meals: meals})
	reg.Register(&deleteMealTool{meals: meals})
	reg.Register(&listMealsTool{meals: meals})
	reg.Register(&saveWorkoutTool{workouts: workouts})
	reg.Register(&listWorkoutsTool{workouts: workouts})
}

func mealSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "A meal with estimated nutrition values.",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"ingredients": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"quantity": map[string]any{"type": "number"},
					},
					"required": []string{"name", "quantity"},
				},
			},
			"calories": map[string]any{"type": "integer"},
			"protein":  map[string]any{"type": "integer"},
			"carbs":    map[string]any{"type": "integer"},
			"fat":      map[string]any{"type": "integer"},
		},
		"required": []string{"name", "ingredients"},
	}
}

func workoutSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "A workout session.",
		"properties": map[string]any{
			"name": map[string]any{
				"type": "string",
				"enum": []string{"swimming", "running", "walking", "weight-lifting"},
			},
			"type": map[string]any{
				"type": "string",
				"enum": []string{"cardio", "strength", "flexibility"},
			},
			"duration":        map[string]any{"type": "integer", "description": "Duration in minutes."},
			"calories_burned": map[string]any{"type": "integer"},
		},
		"required": []string{"name", "type"},
	}
}

func timeRangeSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_time": map[string]any{"type": "string", "description": "Range start, RFC 3339, UTC. Inclusive."},
			"end_time":   map[string]any{"type": "string", "description": "Range end, RFC 3339, UTC. Inclusive."},
		},
		"required": []string{"start_time", "end_time"},
	}
}

func parseTimeRange(args map[string]any) (start, end time.Time, err error) {
	var startStr, endStr string
	if err = decodeArg(args, "start_time", &startStr); err != nil {
		return
	}
	if err = decodeArg(args, "end_time", &endStr); err != nil {
		return
	}
	if start, err = time.Parse(time.RFC3339, startStr); err != nil {
		err = fmt.Errorf("invalid start_time: %w", err)
		return
	}
	if end, err = time.Parse(time.RFC3339, endStr); err != nil {
		err = fmt.Errorf("invalid end_time: %w", err)
	}
	return
}

func parseID(args map[string]any) (uuid.UUID, error) {
	var idStr string
	if err := decodeArg(args, "id", &idStr); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", idStr, err)
	}
	return id, nil
}

// --- get_current_time ---

type currentTimeTool struct{}

func (t *currentTimeTool) Name() string { return "get_current_time" }
func (t *currentTimeTool) Description() string {
	return "Get the current UTC time. Use it for timestamps and for computing date ranges."
}
func (t *currentTimeTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *currentTimeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

// --- save_meal ---

type saveMealTool struct {
	meals domain.MealStore
}

func (t *saveMealTool) Name() string { return "save_meal" }
func (t *saveMealTool) Description() string {
	return "Save a new meal with estimated calories and macros."
}
func (t *saveMealTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"meal": mealSchema()},
		"required":   []string{"meal"},
	}
}
func (t *saveMealTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	var meal domain.Meal
	if err := decodeArg(args, "meal", &meal); err != nil {
		return "", err
	}
	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now().UTC()
	}
	if err := t.meals.SaveMeal(ctx, meal); err != nil {
		return "", err
	}
	return fmt.Sprintf("Meal saved with id %s.", meal.ID), nil
}

// --- update_meal ---

type updateMealTool struct {
	meals domain.MealStore
}

func (t *updateMealTool) Name() string { return "update_meal" }
func (t *updateMealTool) Description() string {
	return "Update an existing meal by id. Use list_meals to find the id if you don't have it."
}
func (t *updateMealTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":   map[string]any{"type": "string", "description": "The meal id (UUID)."},
			"meal": mealSchema(),
		},
		"required": []string{"id", "meal"},
	}
}
func (t *updateMealTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	id, err := parseID(args)
	if err != nil {
		return "", err
	}
	var meal domain.Meal
	if err := decodeArg(args, "meal", &meal); err != nil {
		return "", err
	}
	updated, err := t.meals.UpdateMeal(ctx, id, meal)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(updated)
	if err != nil {
		return "", fmt.Errorf("encode meal: %w", err)
	}
	return string(data), nil
}

// --- delete_meal ---

type deleteMealTool struct {
	meals domain.MealStore
}

func (t *deleteMealTool) Name() string { return "delete_meal" }
func (t *deleteMealTool) Description() string {
	return "Delete a meal by id. Use list_meals to find the id if you don't have it."
}
func (t *deleteMealTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "string", "description": "The meal id (UUID)."},
		},
		"required": []string{"id"},
	}
}
func (t *deleteMealTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	id, err := parseID(args)
	if err != nil {
		return "", err
	}
	if err := t.meals.DeleteMeal(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Meal %s deleted.", id), nil
}

// --- list_meals ---

type listMealsTool struct {
	meals domain.MealStore
}

func (t *listMealsTool) Name() string { return "list_meals" }
func (t *listMealsTool) Description() string {
	return "List meals within a UTC time range, newest first."
}
func (t *listMealsTool) Parameters() map[string]any { return timeRangeSchema() }
func (t *listMealsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	start, end, err := parseTimeRange(args)
	if err != nil {
		return "", err
	}
	meals, err := t.meals.ListMeals(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(meals) == 0 {
		return "No meals in that range.", nil
	}
	data, err := json.Marshal(meals)
	if err != nil {
		return "", fmt.Errorf("encode meals: %w", err)
	}
	return string(data), nil
}

// --- save_workout ---

type saveWorkoutTool struct {
	workouts domain.WorkoutStore
}

func (t *saveWorkoutTool) Name() string { return "save_workout" }
func (t *saveWorkoutTool) Description() string {
	return "Save a new workout with estimated duration and calories burned."
}
func (t *saveWorkoutTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"workout": workoutSchema()},
		"required":   []string{"workout"},
	}
}
func (t *saveWorkoutTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	var w domain.Workout
	if err := decodeArg(args, "workout", &w); err != nil {
		return "", err
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	if err := t.workouts.SaveWorkout(ctx, w); err != nil {
		return "", err
	}
	return fmt.Sprintf("Workout saved with id %s.", w.ID), nil
}

// --- list_workouts ---

type listWorkoutsTool struct {
	workouts domain.WorkoutStore
}

func (t *listWorkoutsTool) Name() string { return "list_workouts" }
func (t *listWorkoutsTool) Description() string {
	return "List workouts within a UTC time range, newest first."
}
func (t *listWorkoutsTool) Parameters() map[string]any { return timeRangeSchema() }
func (t *listWorkoutsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	start, end, err := parseTimeRange(args)
	if err != nil {
		return "", err
	}
	workouts, err := t.workouts.ListWorkouts(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(workouts) == 0 {
		return "No workouts in that range.", nil
	}
	data, err := json.Marshal(workouts)
	if err != nil {
		return "", fmt.Errorf("encode workouts: %w", err)
	}
	return string(data), nil
}
