// internal/validator/validator_test.go
package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lifestyle-insights/internal/models"
)

func validRecord() models.LifestyleRecord {
	return models.LifestyleRecord{
		UserID:    "u1",
		Timestamp: time.Now(),
		FoodItems: []models.FoodItem{
			{Name: "Oatmeal", ServingSize: 100, Unit: "g",
				NutritionalInfo: models.NutritionalInfo{Calories: 380, Protein: 13, Carbohydrates: 67, Fiber: 10, ProcessingLevel: 1}},
		},
		WaterIntake: 2200,
		Sleep: &models.SleepData{
			Duration: 8, Quality: 7,
			Bedtime:  models.ClockTime{Hour: 23, Minute: 0},
			WakeTime: models.ClockTime{Hour: 7, Minute: 0},
		},
		Habits: []models.Habit{{Type: models.HabitExercise, Intensity: 6, Duration: 1}},
	}
}

func errorFields(result Result) []string {
	fields := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		fields[i] = e.Field
	}
	return fields
}

func TestValidateAcceptsGoodRecord(t *testing.T) {
	v := New()
	result := v.Validate(validRecord())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestValidateMissingUserID(t *testing.T) {
	v := New()
	record := validRecord()
	record.UserID = "  "

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "user_id")
}

func TestValidateEmptyRecord(t *testing.T) {
	v := New()
	record := models.LifestyleRecord{UserID: "u1", WaterIntake: 2000}

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "record")
}

func TestValidateImplausibleWater(t *testing.T) {
	v := New()
	record := validRecord()
	record.WaterIntake = 20000

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "water_intake")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	v := New()
	record := validRecord()
	record.UserID = ""
	record.WaterIntake = -10
	record.FoodItems[0].NutritionalInfo.ProcessingLevel = 0
	record.Habits[0].Intensity = 11

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 4, "validation must report every problem, not just the first")
	for _, e := range result.Errors {
		assert.Equal(t, models.KindValidation, e.Kind)
		assert.NotEmpty(t, e.Suggestion)
	}
}

func TestValidateDuplicateFoods(t *testing.T) {
	v := New()
	record := validRecord()
	record.FoodItems = append(record.FoodItems, record.FoodItems[0])

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "food_items[1].name")
}

func TestValidateNutritionRanges(t *testing.T) {
	v := New()
	record := validRecord()
	record.FoodItems[0].NutritionalInfo.Calories = 9000
	record.FoodItems[0].NutritionalInfo.Sodium = -5

	result := v.Validate(record)
	assert.False(t, result.Valid)
	fields := errorFields(result)
	assert.Contains(t, fields, "food_items[0].nutritional_info.calories")
	assert.Contains(t, fields, "food_items[0].nutritional_info.sodium")
}

func TestValidateSleepConsistency(t *testing.T) {
	v := New()
	record := validRecord()
	// 23:00 to 07:00 is an 8 hour span; claiming 3 hours is inconsistent.
	record.Sleep.Duration = 3

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "sleep_data.duration")
}

func TestValidateRejectsInjection(t *testing.T) {
	v := New()
	record := validRecord()
	record.Notes = "nice day <script>alert(1)</script>"

	result := v.Validate(record)
	assert.False(t, result.Valid)
	assert.Contains(t, errorFields(result), "notes")
}

func TestSanitizeStripsMarkup(t *testing.T) {
	v := New()
	record := validRecord()
	record.Notes = "  slept <b>well</b>  "
	record.FoodItems[0].Name = "Oatmeal <i>plain</i>"

	clean := v.Sanitize(record)
	assert.Equal(t, "slept well", clean.Notes)
	assert.Equal(t, "Oatmeal plain", clean.FoodItems[0].Name)

	// The original record is untouched.
	assert.Equal(t, "  slept <b>well</b>  ", record.Notes)
}
