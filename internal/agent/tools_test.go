package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"kaibot/internal/domain"
)

type fakeMealStore struct {
	meals map[uuid.UUID]domain.Meal
}

func newFakeMealStore() *fakeMealStore {
	return &fakeMealStore{meals: make(map[uuid.UUID]domain.Meal)}
}

func (f *fakeMealStore) SaveMeal(ctx context.Context, m domain.Meal) error {
	f.meals[m.ID] = m
	return nil
}

func (f *fakeMealStore) UpdateMeal(ctx context.Context, id uuid.UUID, m domain.Meal) (domain.Meal, error) {
	if _, ok := f.meals[id]; !ok {
		return domain.Meal{}, domain.ErrNotFound
	}
	m.ID = id
	f.meals[id] = m
	return m, nil
}

func (f *fakeMealStore) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.meals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.meals, id)
	return nil
}

func (f *fakeMealStore) ListMeals(ctx context.Context, start, end time.Time) ([]domain.Meal, error) {
	var out []domain.Meal
	for _, m := range f.meals {
		if !m.CreatedAt.Before(start) && !m.CreatedAt.After(end) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeWorkoutStore struct {
	workouts map[uuid.UUID]domain.Workout
}

func newFakeWorkoutStore() *fakeWorkoutStore {
	return &fakeWorkoutStore{workouts: make(map[uuid.UUID]domain.Workout)}
}

func (f *fakeWorkoutStore) SaveWorkout(ctx context.Context, w domain.Workout) error {
	if err := w.Validate(); err != nil {
		return err
	}
	f.workouts[w.ID] = w
	return nil
}

func (f *fakeWorkoutStore) UpdateWorkout(ctx context.Context, id uuid.UUID, w domain.Workout) (domain.Workout, error) {
	if _, ok := f.workouts[id]; !ok {
		return domain.Workout{}, domain.ErrNotFound
	}
	w.ID = id
	f.workouts[id] = w
	return w, nil
}

func (f *fakeWorkoutStore) ListWorkouts(ctx context.Context, start, end time.Time) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range f.workouts {
		if !w.CreatedAt.Before(start) && !w.CreatedAt.After(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func domainRegistry(t *testing.T) (*Registry, *fakeMealStore, *fakeWorkoutStore) {
	t.Helper()
	meals := newFakeMealStore()
	workouts := newFakeWorkoutStore()
	reg := NewRegistry(testLogger())
	RegisterDomainTools(reg, meals, workouts)
	return reg, meals, workouts
}

func TestRegisterDomainToolsOrder(t *testing.T) {
	reg, _, _ := domainRegistry(t)
	want := []string{
		"get_current_time", "save_meal", "update_meal", "delete_meal",
		"list_meals", "save_workout", "list_workouts",
	}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d tools, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCurrentTimeTool(t *testing.T) {
	reg, _, _ := domainRegistry(t)

	out, err := reg.Execute(context.Background(), "get_current_time", map[string]any{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	parsed, err := time.Parse(time.RFC3339, out)
	if err != nil {
		t.Fatalf("result %q is not RFC 3339: %v", out, err)
	}
	if parsed.Location() != time.UTC {
		t.Errorf("time not in UTC: %v", parsed)
	}
}

func TestSaveMealTool(t *testing.T) {
	reg, meals, _ := domainRegistry(t)

	args := map[string]any{
		"meal": map[string]any{
			"name":        "Oatmeal",
			"description": "60 g oats with milk",
			"ingredients": []any{
				map[string]any{"name": "oats", "quantity": float64(60)},
			},
			"calories": float64(320),
		},
	}
	out, err := reg.Execute(context.Background(), "save_meal", args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out, "Meal saved with id ") {
		t.Errorf("result = %q", out)
	}
	if len(meals.meals) != 1 {
		t.Fatalf("stored %d meals, want 1", len(meals.meals))
	}
	for _, m := range meals.meals {
		if m.ID == uuid.Nil {
			t.Error("id not assigned")
		}
		if m.CreatedAt.IsZero() {
			t.Error("created_at not assigned")
		}
		if m.Calories == nil || *m.Calories != 320 {
			t.Errorf("Calories = %v", m.Calories)
		}
	}
}

func TestUpdateMealTool(t *testing.T) {
	reg, meals, _ := domainRegistry(t)

	id := uuid.New()
	meals.meals[id] = domain.Meal{ID: id, Name: "Oatmeal", CreatedAt: time.Now().UTC()}

	args := map[string]any{
		"id": id.String(),
		"meal": map[string]any{
			"name":        "Oatmeal with banana",
			"ingredients": []any{},
		},
	}
	out, err := reg.Execute(context.Background(), "update_meal", args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Oatmeal with banana") {
		t.Errorf("result should contain the updated meal: %q", out)
	}
	if meals.meals[id].Name != "Oatmeal with banana" {
		t.Errorf("store not updated: %q", meals.meals[id].Name)
	}
}

func TestUpdateMealToolBadID(t *testing.T) {
	reg, _, _ := domainRegistry(t)

	_, err := reg.Execute(context.Background(), "update_meal", map[string]any{
		"id":   "not-a-uuid",
		"meal": map[string]any{"name": "x", "ingredients": []any{}},
	})
	if err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestDeleteMealTool(t *testing.T) {
	reg, meals, _ := domainRegistry(t)

	id := uuid.New()
	meals.meals[id] = domain.Meal{ID: id, Name: "Oatmeal"}

	out, err := reg.Execute(context.Background(), "delete_meal", map[string]any{"id": id.String()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("result = %q", out)
	}
	if len(meals.meals) != 0 {
		t.Error("meal still present after delete")
	}
}

func TestListMealsToolEmpty(t *testing.T) {
	reg, _, _ := domainRegistry(t)

	out, err := reg.Execute(context.Background(), "list_meals", map[string]any{
		"start_time": "2026-08-30T00:00:00Z",
		"end_time":   "2026-08-30T23:59:59Z",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "No meals in that range." {
		t.Errorf("result = %q", out)
	}
}

func TestListMealsToolBadRange(t *testing.T) {
	reg, _, _ := domainRegistry(t)

	_, err := reg.Execute(context.Background(), "list_meals", map[string]any{
		"start_time": "yesterday",
		"end_time":   "2026-08-30T23:59:59Z",
	})
	if err == nil {
		t.Fatal("expected error for non-RFC3339 start_time")
	}
}

func TestSaveWorkoutTool(t *testing.T) {
	reg, _, workouts := domainRegistry(t)

	out, err := reg.Execute(context.Background(), "save_workout", map[string]any{
		"workout": map[string]any{
			"name":     "running",
			"type":     "cardio",
			"duration": float64(30),
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out, "Workout saved with id ") {
		t.Errorf("result = %q", out)
	}
	if len(workouts.workouts) != 1 {
		t.Fatalf("stored %d workouts, want 1", len(workouts.workouts))
	}
}

func TestSaveWorkoutToolInvalidEnum(t *testing.T) {
	reg, _, workouts := domainRegistry(t)

	_, err := reg.Execute(context.Background(), "save_workout", map[string]any{
		"workout": map[string]any{"name": "crossfit", "type": "cardio"},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(workouts.workouts) != 0 {
		t.Error("invalid workout must not be stored")
	}
}
