package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by store operations that address a record id with
// no matching row.
var ErrNotFound = errors.New("not found")

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// Meal is a logged meal. ID and CreatedAt are assigned once at creation and
// never mutated afterwards.
type Meal struct {
	ID          uuid.UUID    `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Calories    *int         `json:"calories,omitempty"`
	Protein     *int         `json:"protein,omitempty"`
	Carbs       *int         `json:"carbs,omitempty"`
	Fat         *int         `json:"fat,omitempty"`
}

type WorkoutName string

const (
	WorkoutSwimming      WorkoutName = "swimming"
	WorkoutRunning       WorkoutName = "running"
	WorkoutWalking       WorkoutName = "walking"
	WorkoutWeightLifting WorkoutName = "weight-lifting"
)

func (n WorkoutName) Valid() bool {
	switch n {
	case WorkoutSwimming, WorkoutRunning, WorkoutWalking, WorkoutWeightLifting:
		return true
	}
	return false
}

type WorkoutType string

const (
	WorkoutCardio      WorkoutType = "cardio"
	WorkoutStrength    WorkoutType = "strength"
	WorkoutFlexibility WorkoutType = "flexibility"
)

func (t WorkoutType) Valid() bool {
	switch t {
	case WorkoutCardio, WorkoutStrength, WorkoutFlexibility:
		return true
	}
	return false
}

// Workout is a logged workout. Name and Type are restricted to the fixed
// enumerations above.
type Workout struct {
	ID             uuid.UUID   `json:"id"`
	CreatedAt      time.Time   `json:"created_at"`
	Name           WorkoutName `json:"name"`
	Type           WorkoutType `json:"type"`
	Duration       *int        `json:"duration,omitempty"`
	CaloriesBurned *int        `json:"calories_burned,omitempty"`
}

// Validate checks the enum fields before the workout reaches storage.
func (w *Workout) Validate() error {
	if !w.Name.Valid() {
		return fmt.Errorf("invalid workout name %q (want swimming, running, walking or weight-lifting)", w.Name)
	}
	if !w.Type.Valid() {
		return fmt.Errorf("invalid workout type %q (want cardio, strength or flexibility)", w.Type)
	}
	return nil
}
