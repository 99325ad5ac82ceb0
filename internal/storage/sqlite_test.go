// internal/storage/sqlite_test.go
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifestyle-insights/internal/analyzers"
	"lifestyle-insights/internal/insights"
	"lifestyle-insights/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func sampleRecord(userID string, day time.Time) models.LifestyleRecord {
	return models.LifestyleRecord{
		UserID:    userID,
		Timestamp: day,
		FoodItems: []models.FoodItem{
			{Name: "Ramen", ServingSize: 400, Unit: "g",
				NutritionalInfo: models.NutritionalInfo{
					Calories: 500, Protein: 12, Carbohydrates: 70, Fat: 18,
					Sodium: 900, Sugar: 4, Fiber: 3,
					Preservatives:   []string{"TBHQ"},
					ProcessingLevel: 4,
				}},
		},
		WaterIntake: 1800,
		Sleep: &models.SleepData{
			Duration: 7.5, Quality: 6,
			Bedtime:  models.ClockTime{Hour: 23, Minute: 30},
			WakeTime: models.ClockTime{Hour: 7, Minute: 0},
		},
		Habits: []models.Habit{
			{Type: models.HabitCaffeine, Intensity: 5, Timing: &models.ClockTime{Hour: 15, Minute: 0}},
			{Type: models.HabitStress, Intensity: 7},
		},
		Notes: "long day",
	}
}

func TestSaveAndGetRecords(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	record := sampleRecord("u1", day)
	require.NoError(t, s.SaveRecord(ctx, &record))
	assert.NotEmpty(t, record.ID, "SaveRecord assigns an ID when missing")

	loaded, err := s.GetRecords(ctx, "u1", day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), 10)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 1800.0, got.WaterIntake)
	assert.Equal(t, "long day", got.Notes)

	require.Len(t, got.FoodItems, 1)
	assert.Equal(t, "Ramen", got.FoodItems[0].Name)
	assert.Equal(t, 900.0, got.FoodItems[0].NutritionalInfo.Sodium)
	assert.Equal(t, []string{"TBHQ"}, got.FoodItems[0].NutritionalInfo.Preservatives)

	require.NotNil(t, got.Sleep)
	assert.Equal(t, 7.5, got.Sleep.Duration)
	assert.Equal(t, models.ClockTime{Hour: 23, Minute: 30}, got.Sleep.Bedtime)

	require.Len(t, got.Habits, 2)
	assert.Equal(t, models.HabitCaffeine, got.Habits[0].Type)
	require.NotNil(t, got.Habits[0].Timing)
	assert.Equal(t, models.ClockTime{Hour: 15, Minute: 0}, *got.Habits[0].Timing)
	assert.Nil(t, got.Habits[1].Timing)
}

func TestGetRecordsScopesToUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	r1 := sampleRecord("u1", day)
	r2 := sampleRecord("u2", day)
	require.NoError(t, s.SaveRecord(ctx, &r1))
	require.NoError(t, s.SaveRecord(ctx, &r2))

	loaded, err := s.GetRecords(ctx, "u1", day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), 10)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "u1", loaded[0].UserID)
}

func TestFetchMetricSeries(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	start := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		record := sampleRecord("u1", start.AddDate(0, 0, i))
		record.FoodItems[0].NutritionalInfo.Sodium = float64(500 + i*100)
		require.NoError(t, s.SaveRecord(ctx, &record))
	}

	rng := analyzers.TimeRange{Start: start.AddDate(0, 0, -1), End: start.AddDate(0, 0, 6)}
	points, err := s.Fetch(ctx, "u1", "sodium", rng)
	require.NoError(t, err)
	require.Len(t, points, 5)

	// Oldest first, values in insertion order.
	assert.Equal(t, 500.0, points[0].Value)
	assert.Equal(t, 900.0, points[4].Value)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}

	quality, err := s.Fetch(ctx, "u1", "sleep_quality", rng)
	require.NoError(t, err)
	require.Len(t, quality, 5)
	assert.Equal(t, 6.0, quality[0].Value)

	unknown, err := s.Fetch(ctx, "u1", "bogus_metric", rng)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestSaveAndLoadInsights(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	stored := []insights.Insight{
		{Title: "Water Retention Insight", Category: "Hydration", Priority: insights.PriorityHigh, Confidence: 0.85, Source: insights.SourceWater},
		{Title: "Sleep Quality Insight", Category: "Sleep & Recovery", Priority: insights.PriorityMedium, Confidence: 0.7, Source: insights.SourceSleep},
	}
	require.NoError(t, s.SaveInsights(ctx, "u1", stored))

	loaded, err := s.InsightsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Water Retention Insight", loaded[0].Title)
	assert.Equal(t, insights.PriorityHigh, loaded[0].Priority)
	assert.Equal(t, 0.85, loaded[0].Confidence)

	other, err := s.InsightsForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDeleteUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		record := sampleRecord("u1", day.AddDate(0, 0, i))
		require.NoError(t, s.SaveRecord(ctx, &record))
	}
	keep := sampleRecord("u2", day)
	require.NoError(t, s.SaveRecord(ctx, &keep))
	require.NoError(t, s.SaveInsights(ctx, "u1", []insights.Insight{{Title: "t", Category: "Nutrition"}}))

	recordsDeleted, insightsDeleted, err := s.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, recordsDeleted)
	assert.Equal(t, 1, insightsDeleted)

	remaining, err := s.GetRecords(ctx, "u1", day.AddDate(0, 0, -1), day.AddDate(0, 0, 5), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := s.GetRecords(ctx, "u2", day.AddDate(0, 0, -1), day.AddDate(0, 0, 5), 10)
	require.NoError(t, err)
	assert.Len(t, kept, 1, "other users' data survives deletion")
}

func TestRecordsForUserOldestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		record := sampleRecord("u1", day.AddDate(0, 0, i))
		require.NoError(t, s.SaveRecord(ctx, &record))
	}

	records, err := s.RecordsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Timestamp.Before(records[2].Timestamp))
}
