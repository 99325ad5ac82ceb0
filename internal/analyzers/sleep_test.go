// internal/analyzers/sleep_test.go
package analyzers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifestyle-insights/internal/models"
)

func eveningRecord(habits ...models.Habit) models.LifestyleRecord {
	return models.LifestyleRecord{
		UserID:      "u1",
		Timestamp:   time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC),
		WaterIntake: 2500,
		Habits:      habits,
	}
}

func TestAnalyzeMissingSleepData(t *testing.T) {
	sa := NewSleepAnalyzer()

	_, err := sa.Analyze(nil, eveningRecord())
	require.Error(t, err)

	var analysisErr *models.Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, models.KindValidation, analysisErr.Kind)
	assert.Equal(t, "sleep_data", analysisErr.Field)
	assert.NotEmpty(t, analysisErr.Suggestion)
}

func TestAnalyzeInvalidFields(t *testing.T) {
	sa := NewSleepAnalyzer()

	_, err := sa.Analyze(&models.SleepData{Duration: 8, Quality: 0}, eveningRecord())
	var analysisErr *models.Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, "sleep_data.quality", analysisErr.Field)

	_, err = sa.Analyze(&models.SleepData{Duration: 0, Quality: 7}, eveningRecord())
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, "sleep_data.duration", analysisErr.Field)
}

func TestAssessQualityBands(t *testing.T) {
	sa := NewSleepAnalyzer()

	cases := []struct {
		sleep    models.SleepData
		expected SleepQuality
	}{
		{models.SleepData{Quality: 2, Duration: 7}, SleepPoor},
		{models.SleepData{Quality: 5, Duration: 7}, SleepFair},
		{models.SleepData{Quality: 7, Duration: 7}, SleepGood},
		{models.SleepData{Quality: 9, Duration: 8}, SleepExcellent},
		// Short duration downgrades one band.
		{models.SleepData{Quality: 9, Duration: 5}, SleepGood},
		// Heavy interruptions downgrade one band.
		{models.SleepData{Quality: 5, Duration: 7, Interruptions: 3}, SleepPoor},
		// Oversleeping also downgrades.
		{models.SleepData{Quality: 7, Duration: 11}, SleepFair},
	}

	for _, tc := range cases {
		analysis, err := sa.Analyze(&tc.sleep, eveningRecord())
		require.NoError(t, err)
		assert.Equal(t, tc.expected, analysis.Quality,
			"quality %d duration %.1f interruptions %d", tc.sleep.Quality, tc.sleep.Duration, tc.sleep.Interruptions)
	}
}

func TestCaffeineCorrelation(t *testing.T) {
	sa := NewSleepAnalyzer()

	record := eveningRecord(models.Habit{
		Type:      models.HabitCaffeine,
		Intensity: 5,
		Timing:    &models.ClockTime{Hour: 20, Minute: 0},
	})
	sleep := &models.SleepData{
		Quality: 4, Duration: 6.5,
		Bedtime:  models.ClockTime{Hour: 23, Minute: 0},
		WakeTime: models.ClockTime{Hour: 5, Minute: 30},
	}

	analysis, err := sa.Analyze(sleep, record)
	require.NoError(t, err)

	var caffeine *SleepCorrelation
	for i := range analysis.Correlations {
		if analysis.Correlations[i].Habit == "caffeine" {
			caffeine = &analysis.Correlations[i]
		}
	}
	require.NotNil(t, caffeine, "caffeine 3h before bed should correlate")
	assert.Equal(t, ImpactNegative, caffeine.Impact)
	assert.Equal(t, 7, caffeine.Strength)

	// A matching disruptor and recommendation follow.
	require.NotEmpty(t, analysis.Disruptors)
	assert.Equal(t, DisruptorCaffeine, analysis.Disruptors[0].Type)
	require.NotEmpty(t, analysis.Recommendations)
	assert.Equal(t, PriorityHigh, analysis.Recommendations[0].Priority)
}

func TestNegativeCorrelationsYieldRecommendations(t *testing.T) {
	sa := NewSleepAnalyzer()

	record := eveningRecord(models.Habit{Type: models.HabitStress, Intensity: 8})
	sleep := &models.SleepData{Quality: 3, Duration: 6}

	analysis, err := sa.Analyze(sleep, record)
	require.NoError(t, err)

	hasNegative := false
	for _, c := range analysis.Correlations {
		if c.Impact == ImpactNegative {
			hasNegative = true
		}
	}
	require.True(t, hasNegative)
	assert.NotEmpty(t, analysis.Recommendations,
		"negative correlations must produce at least one recommendation")
}

func TestIdentifyDisruptorsWithoutSleepData(t *testing.T) {
	sa := NewSleepAnalyzer()

	record := eveningRecord(
		models.Habit{Type: models.HabitStress, Intensity: 8},
		models.Habit{
			Type:      models.HabitCaffeine,
			Intensity: 5,
			Timing:    &models.ClockTime{Hour: 20, Minute: 0},
		},
	)
	record.WaterIntake = 1000

	disruptors := sa.IdentifyDisruptors(record)
	require.Len(t, disruptors, 2, "timing-based disruptors need sleep data")
	assert.Equal(t, DisruptorStress, disruptors[0].Type)
	assert.Equal(t, DisruptorHydration, disruptors[1].Type)
}

func TestExplanationNamesHabitOutcome(t *testing.T) {
	sa := NewSleepAnalyzer()

	record := eveningRecord(models.Habit{Type: models.HabitStress, Intensity: 8})
	analysis, err := sa.Analyze(&models.SleepData{Quality: 3, Duration: 6.5}, record)
	require.NoError(t, err)
	assert.Contains(t, analysis.Explanation, "stress")

	// With positive habits only, the explanation still ties a habit to the
	// outcome.
	calm := eveningRecord(models.Habit{Type: models.HabitExercise, Intensity: 6})
	analysis, err = sa.Analyze(&models.SleepData{Quality: 8, Duration: 8}, calm)
	require.NoError(t, err)
	assert.Contains(t, analysis.Explanation, "exercise")

	// With no notable habits at all, the balanced fallback applies.
	quiet := eveningRecord()
	analysis, err = sa.Analyze(&models.SleepData{Quality: 8, Duration: 8}, quiet)
	require.NoError(t, err)
	assert.Contains(t, analysis.Explanation, "balanced")
}
