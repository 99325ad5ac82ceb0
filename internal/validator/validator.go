// internal/validator/validator.go
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"lifestyle-insights/internal/models"
)

// Result reports whether a record is usable and, when not, every problem
// found rather than just the first.
type Result struct {
	Valid  bool            `json:"valid"`
	Errors []*models.Error `json:"errors,omitempty"`
}

// Nutrition plausibility caps per item.
const (
	maxWaterIntake = 10000.0 // ml
	maxCalories    = 5000.0
	maxProtein     = 200.0 // grams
	maxCarbs       = 500.0 // grams
	maxFat         = 200.0 // grams
	maxSodium      = 5000.0 // mg
	maxSleepHours  = 24.0
	maxFreeTextLen = 2000
)

// Validator checks lifestyle records for structural and plausibility
// problems before analysis.
type Validator struct {
	injectionPattern *regexp.Regexp
}

func New() *Validator {
	return &Validator{
		injectionPattern: regexp.MustCompile(`(?i)(<script|javascript:|on\w+\s*=|drop\s+table|--\s|;\s*delete\s)`),
	}
}

// Validate collects every problem in the record.
func (v *Validator) Validate(record models.LifestyleRecord) Result {
	var errs []*models.Error

	if strings.TrimSpace(record.UserID) == "" {
		errs = append(errs, models.NewValidationError(
			"user_id", "user ID is required", "Provide the ID of the user this record belongs to."))
	}

	if record.WaterIntake < 0 {
		errs = append(errs, models.NewValidationError(
			"water_intake", "water intake cannot be negative", "Log water intake in milliliters, 0 or greater."))
	}
	if record.WaterIntake > maxWaterIntake {
		errs = append(errs, models.NewValidationError(
			"water_intake",
			fmt.Sprintf("water intake of %.0fml exceeds the plausible maximum of %.0fml", record.WaterIntake, maxWaterIntake),
			"Check the units; water intake is logged in milliliters."))
	}

	if len(record.FoodItems) == 0 && record.Sleep == nil && len(record.Habits) == 0 {
		errs = append(errs, models.NewValidationError(
			"record", "record must contain at least one of food items, sleep data, or habits",
			"Log at least one meal, a night of sleep, or a daily habit."))
	}

	errs = append(errs, v.validateFoods(record.FoodItems)...)
	if record.Sleep != nil {
		errs = append(errs, v.validateSleep(record.Sleep)...)
	}
	errs = append(errs, v.validateHabits(record.Habits)...)

	if v.injectionPattern.MatchString(record.Notes) {
		errs = append(errs, models.NewValidationError(
			"notes", "notes contain disallowed content", "Remove script or query fragments from the notes field."))
	}
	if len(record.Notes) > maxFreeTextLen {
		errs = append(errs, models.NewValidationError(
			"notes", fmt.Sprintf("notes exceed the %d character limit", maxFreeTextLen), "Shorten the notes field."))
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func (v *Validator) validateFoods(items []models.FoodItem) []*models.Error {
	var errs []*models.Error
	seen := make(map[string]int)

	for i, item := range items {
		field := fmt.Sprintf("food_items[%d]", i)

		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, models.NewValidationError(
				field+".name", "food name is required", "Give each food item a name."))
		}
		if v.injectionPattern.MatchString(item.Name) {
			errs = append(errs, models.NewValidationError(
				field+".name", "food name contains disallowed content", "Use a plain food name."))
		}

		key := strings.ToLower(strings.TrimSpace(item.Name))
		if key != "" {
			if prev, dup := seen[key]; dup {
				errs = append(errs, models.NewValidationError(
					field+".name",
					fmt.Sprintf("duplicate food item %q also appears at index %d", item.Name, prev),
					"Log each food once; adjust the serving size for repeated portions."))
			} else {
				seen[key] = i
			}
		}

		n := item.NutritionalInfo
		checks := []struct {
			name  string
			value float64
			max   float64
		}{
			{"calories", n.Calories, maxCalories},
			{"protein", n.Protein, maxProtein},
			{"carbohydrates", n.Carbohydrates, maxCarbs},
			{"fat", n.Fat, maxFat},
			{"sodium", n.Sodium, maxSodium},
		}
		for _, c := range checks {
			if c.value < 0 {
				errs = append(errs, models.NewValidationError(
					fmt.Sprintf("%s.nutritional_info.%s", field, c.name),
					fmt.Sprintf("%s cannot be negative", c.name),
					"Nutrition values must be 0 or greater."))
			}
			if c.value > c.max {
				errs = append(errs, models.NewValidationError(
					fmt.Sprintf("%s.nutritional_info.%s", field, c.name),
					fmt.Sprintf("%s of %.0f exceeds the plausible per-item maximum of %.0f", c.name, c.value, c.max),
					"Check the serving size and units for this item."))
			}
		}

		if n.ProcessingLevel < 1 || n.ProcessingLevel > 5 {
			errs = append(errs, models.NewValidationError(
				field+".nutritional_info.processing_level",
				fmt.Sprintf("processing level must be between 1 and 5, got %d", n.ProcessingLevel),
				"Use 1 for whole foods through 5 for ultra-processed foods."))
		}
	}

	return errs
}

func (v *Validator) validateSleep(sleep *models.SleepData) []*models.Error {
	var errs []*models.Error

	if sleep.Duration <= 0 || sleep.Duration > maxSleepHours {
		errs = append(errs, models.NewValidationError(
			"sleep_data.duration",
			fmt.Sprintf("sleep duration of %.1f hours is outside the valid range", sleep.Duration),
			"Log duration in hours, between 0 and 24."))
	}
	if sleep.Quality < 1 || sleep.Quality > 10 {
		errs = append(errs, models.NewValidationError(
			"sleep_data.quality",
			fmt.Sprintf("sleep quality must be between 1 and 10, got %d", sleep.Quality),
			"Rate sleep on a 1-10 scale."))
	}
	if sleep.Interruptions < 0 {
		errs = append(errs, models.NewValidationError(
			"sleep_data.interruptions", "interruptions cannot be negative", "Log 0 or more interruptions."))
	}

	// Bedtime-to-wake span should roughly agree with the logged duration.
	if sleep.Duration > 0 && sleep.Duration <= maxSleepHours {
		span := sleep.Bedtime.HoursUntil(sleep.WakeTime)
		if span > 0 && absFloat(span-sleep.Duration) > 2.0 {
			errs = append(errs, models.NewValidationError(
				"sleep_data.duration",
				fmt.Sprintf("logged duration (%.1fh) disagrees with bedtime-to-wake span (%.1fh) by more than 2 hours", sleep.Duration, span),
				"Check the bedtime, wake time, and duration values against each other."))
		}
	}

	return errs
}

func (v *Validator) validateHabits(habits []models.Habit) []*models.Error {
	var errs []*models.Error
	for i, h := range habits {
		field := fmt.Sprintf("daily_habits[%d]", i)
		if !h.Type.IsValid() {
			errs = append(errs, models.NewValidationError(
				field+".type",
				fmt.Sprintf("unknown habit type %q", h.Type),
				"Use one of: exercise, stress, screen_time, caffeine, alcohol, other."))
		}
		if h.Intensity < 1 || h.Intensity > 10 {
			errs = append(errs, models.NewValidationError(
				field+".intensity",
				fmt.Sprintf("habit intensity must be between 1 and 10, got %d", h.Intensity),
				"Rate habit intensity on a 1-10 scale."))
		}
		if h.Duration < 0 {
			errs = append(errs, models.NewValidationError(
				field+".duration", "habit duration cannot be negative", "Log duration in hours, 0 or greater."))
		}
	}
	return errs
}

// Sanitize returns a copy of the record with free-text fields trimmed and
// stripped of markup. The input record is not modified.
func (v *Validator) Sanitize(record models.LifestyleRecord) models.LifestyleRecord {
	out := record
	out.Notes = v.sanitizeText(record.Notes)

	out.FoodItems = make([]models.FoodItem, len(record.FoodItems))
	copy(out.FoodItems, record.FoodItems)
	for i := range out.FoodItems {
		out.FoodItems[i].Name = v.sanitizeText(out.FoodItems[i].Name)
	}

	out.Habits = make([]models.Habit, len(record.Habits))
	copy(out.Habits, record.Habits)
	for i := range out.Habits {
		out.Habits[i].Notes = v.sanitizeText(out.Habits[i].Notes)
	}

	return out
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func (v *Validator) sanitizeText(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if len(text) > maxFreeTextLen {
		text = text[:maxFreeTextLen]
	}
	return text
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
