// internal/models/record.go
package models

import (
	"fmt"
	"time"
)

// HabitType identifies the kind of daily habit being tracked.
type HabitType string

const (
	HabitExercise   HabitType = "exercise"
	HabitStress     HabitType = "stress"
	HabitScreenTime HabitType = "screen_time"
	HabitCaffeine   HabitType = "caffeine"
	HabitAlcohol    HabitType = "alcohol"
	HabitOther      HabitType = "other"
)

// IsValid checks if the habit type value is valid
func (t HabitType) IsValid() bool {
	switch t {
	case HabitExercise, HabitStress, HabitScreenTime, HabitCaffeine, HabitAlcohol, HabitOther:
		return true
	}
	return false
}

// BodyTypeClass is the somatotype classification used for personalization.
type BodyTypeClass string

const (
	Ectomorph BodyTypeClass = "ectomorph"
	Mesomorph BodyTypeClass = "mesomorph"
	Endomorph BodyTypeClass = "endomorph"
	Mixed     BodyTypeClass = "mixed"
)

// IsValid checks if the body type value is valid
func (b BodyTypeClass) IsValid() bool {
	switch b {
	case Ectomorph, Mesomorph, Endomorph, Mixed:
		return true
	}
	return false
}

// BodyTypeProfile is static per user and supplied by the caller.
type BodyTypeProfile struct {
	Classification  BodyTypeClass `json:"classification"`
	Characteristics []string      `json:"characteristics,omitempty"`
	UserID          string        `json:"user_id"`
}

// NutritionalInfo holds the per-serving nutrition facts for a food item.
type NutritionalInfo struct {
	Calories        float64  `json:"calories"`
	Protein         float64  `json:"protein"`       // grams
	Carbohydrates   float64  `json:"carbohydrates"` // grams
	Fat             float64  `json:"fat"`           // grams
	Sodium          float64  `json:"sodium"`        // milligrams
	Sugar           float64  `json:"sugar"`         // grams
	Fiber           float64  `json:"fiber"`         // grams
	Preservatives   []string `json:"preservatives,omitempty"`
	ProcessingLevel int      `json:"processing_level"` // 1 (minimal) to 5 (highly processed)
}

// FoodItem is immutable once classified.
type FoodItem struct {
	Name            string          `json:"name"`
	ServingSize     float64         `json:"serving_size"`
	Unit            string          `json:"unit"`
	NutritionalInfo NutritionalInfo `json:"nutritional_info"`
}

// ClockTime is a time of day without a date, used for bedtimes and habit timing.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ClockFromTime extracts the time-of-day component of t.
func ClockFromTime(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// HoursUntil returns the hours from c to later, wrapping past midnight when
// later is earlier in the day than c.
func (c ClockTime) HoursUntil(later ClockTime) float64 {
	start := c.Hour*60 + c.Minute
	end := later.Hour*60 + later.Minute
	if end < start {
		end += 24 * 60
	}
	return float64(end-start) / 60.0
}

// SleepData describes one night of sleep.
type SleepData struct {
	Duration      float64    `json:"duration"` // hours
	Quality       int        `json:"quality"`  // 1 (poor) to 10 (excellent)
	Bedtime       ClockTime  `json:"bedtime"`
	WakeTime      ClockTime  `json:"wake_time"`
	Interruptions int        `json:"interruptions"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
}

// Habit is a daily habit or activity with optional timing.
type Habit struct {
	Type      HabitType  `json:"type"`
	Intensity int        `json:"intensity"` // 1 (low) to 10 (high)
	Duration  float64    `json:"duration,omitempty"` // hours
	Timing    *ClockTime `json:"timing,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// LifestyleRecord is one user's complete lifestyle entry for a single day.
// The analysis core treats it as read-only.
type LifestyleRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Timestamp   time.Time  `json:"timestamp"`
	FoodItems   []FoodItem `json:"food_items,omitempty"`
	WaterIntake float64    `json:"water_intake"` // milliliters
	Sleep       *SleepData `json:"sleep_data,omitempty"`
	Habits      []Habit    `json:"daily_habits,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// TotalSodium sums sodium across the day's food items, in milligrams.
func (r *LifestyleRecord) TotalSodium() float64 {
	var total float64
	for _, item := range r.FoodItems {
		total += item.NutritionalInfo.Sodium
	}
	return total
}

// TotalCalories sums calories across the day's food items.
func (r *LifestyleRecord) TotalCalories() float64 {
	var total float64
	for _, item := range r.FoodItems {
		total += item.NutritionalInfo.Calories
	}
	return total
}

// TotalProtein sums protein across the day's food items, in grams.
func (r *LifestyleRecord) TotalProtein() float64 {
	var total float64
	for _, item := range r.FoodItems {
		total += item.NutritionalInfo.Protein
	}
	return total
}

// TotalCarbohydrates sums carbohydrates across the day's food items, in grams.
func (r *LifestyleRecord) TotalCarbohydrates() float64 {
	var total float64
	for _, item := range r.FoodItems {
		total += item.NutritionalInfo.Carbohydrates
	}
	return total
}

// TotalSugar sums sugar across the day's food items, in grams.
func (r *LifestyleRecord) TotalSugar() float64 {
	var total float64
	for _, item := range r.FoodItems {
		total += item.NutritionalInfo.Sugar
	}
	return total
}

// HabitsOfType returns the habits matching t, in record order.
func (r *LifestyleRecord) HabitsOfType(t HabitType) []Habit {
	var habits []Habit
	for _, h := range r.Habits {
		if h.Type == t {
			habits = append(habits, h)
		}
	}
	return habits
}

// MaxIntensity returns the highest intensity among habits of type t, or 0
// when the record has none.
func (r *LifestyleRecord) MaxIntensity(t HabitType) int {
	max := 0
	for _, h := range r.Habits {
		if h.Type == t && h.Intensity > max {
			max = h.Intensity
		}
	}
	return max
}
