// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lifestyle-insights/internal/analyzers"
	"lifestyle-insights/internal/insights"
	"lifestyle-insights/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS records (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        water_intake REAL NOT NULL,
        sleep_duration REAL,
        sleep_quality INTEGER,
        sleep_bedtime TEXT,
        sleep_wake_time TEXT,
        sleep_interruptions INTEGER,
        notes TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id TEXT NOT NULL,
        name TEXT NOT NULL,
        serving_size REAL NOT NULL,
        unit TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbohydrates REAL NOT NULL,
        fat REAL NOT NULL,
        sodium REAL NOT NULL,
        sugar REAL NOT NULL,
        fiber REAL NOT NULL,
        preservatives TEXT NOT NULL DEFAULT '[]',
        processing_level INTEGER NOT NULL,
        FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS habits (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        record_id TEXT NOT NULL,
        type TEXT NOT NULL,
        intensity INTEGER NOT NULL,
        duration REAL NOT NULL DEFAULT 0,
        timing TEXT,
        notes TEXT NOT NULL DEFAULT '',
        FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS user_insights (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        payload TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_records_user_timestamp ON records(user_id, timestamp);
    CREATE INDEX IF NOT EXISTS idx_foods_record_id ON foods(record_id);
    CREATE INDEX IF NOT EXISTS idx_habits_record_id ON habits(record_id);
    CREATE INDEX IF NOT EXISTS idx_insights_user ON user_insights(user_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRecord persists a record with its foods and habits in one transaction.
// A missing record ID is assigned here.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *models.LifestyleRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var sleepDuration sql.NullFloat64
	var sleepQuality, sleepInterruptions sql.NullInt64
	var sleepBedtime, sleepWakeTime sql.NullString
	if record.Sleep != nil {
		sleepDuration = sql.NullFloat64{Float64: record.Sleep.Duration, Valid: true}
		sleepQuality = sql.NullInt64{Int64: int64(record.Sleep.Quality), Valid: true}
		sleepInterruptions = sql.NullInt64{Int64: int64(record.Sleep.Interruptions), Valid: true}
		sleepBedtime = sql.NullString{String: record.Sleep.Bedtime.String(), Valid: true}
		sleepWakeTime = sql.NullString{String: record.Sleep.WakeTime.String(), Valid: true}
	}

	recordQuery := `
        INSERT INTO records (id, user_id, timestamp, water_intake, sleep_duration, sleep_quality,
            sleep_bedtime, sleep_wake_time, sleep_interruptions, notes, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, recordQuery,
		record.ID, record.UserID, record.Timestamp.Format(time.RFC3339), record.WaterIntake,
		sleepDuration, sleepQuality, sleepBedtime, sleepWakeTime, sleepInterruptions,
		record.Notes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	foodQuery := `
        INSERT INTO foods (record_id, name, serving_size, unit, calories, protein, carbohydrates,
            fat, sodium, sugar, fiber, preservatives, processing_level)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, item := range record.FoodItems {
		preservatives, err := json.Marshal(item.NutritionalInfo.Preservatives)
		if err != nil {
			return fmt.Errorf("failed to encode preservatives: %w", err)
		}
		n := item.NutritionalInfo
		_, err = tx.ExecContext(ctx, foodQuery,
			record.ID, item.Name, item.ServingSize, item.Unit,
			n.Calories, n.Protein, n.Carbohydrates, n.Fat, n.Sodium, n.Sugar, n.Fiber,
			string(preservatives), n.ProcessingLevel)
		if err != nil {
			return fmt.Errorf("failed to insert food: %w", err)
		}
	}

	habitQuery := `
        INSERT INTO habits (record_id, type, intensity, duration, timing, notes)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	for _, h := range record.Habits {
		var timing sql.NullString
		if h.Timing != nil {
			timing = sql.NullString{String: h.Timing.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, habitQuery,
			record.ID, string(h.Type), h.Intensity, h.Duration, timing, h.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert habit: %w", err)
		}
	}

	return tx.Commit()
}

// GetRecords returns a user's records in a time range, newest first.
func (s *SQLiteStorage) GetRecords(ctx context.Context, userID string, start, end time.Time, limit int) ([]models.LifestyleRecord, error) {
	query := `
        SELECT id, user_id, timestamp, water_intake, sleep_duration, sleep_quality,
            sleep_bedtime, sleep_wake_time, sleep_interruptions, notes
        FROM records
        WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
        ORDER BY timestamp DESC LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query,
		userID, start.Format(time.RFC3339), end.Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.LifestyleRecord
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	for i := range records {
		if err := s.loadFoods(ctx, &records[i]); err != nil {
			return nil, fmt.Errorf("failed to load foods for record %s: %w", records[i].ID, err)
		}
		if err := s.loadHabits(ctx, &records[i]); err != nil {
			return nil, fmt.Errorf("failed to load habits for record %s: %w", records[i].ID, err)
		}
	}

	return records, nil
}

// RecordsForUser returns everything stored for a user, oldest first. It
// backs the privacy export.
func (s *SQLiteStorage) RecordsForUser(ctx context.Context, userID string) ([]models.LifestyleRecord, error) {
	records, err := s.GetRecords(ctx, userID, time.Time{}, time.Now().UTC().AddDate(1, 0, 0), 10000)
	if err != nil {
		return nil, err
	}
	// Reverse to oldest-first for export readability.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (s *SQLiteStorage) scanRecord(rows *sql.Rows) (models.LifestyleRecord, error) {
	var record models.LifestyleRecord
	var timestampStr string
	var sleepDuration sql.NullFloat64
	var sleepQuality, sleepInterruptions sql.NullInt64
	var sleepBedtime, sleepWakeTime sql.NullString

	err := rows.Scan(
		&record.ID, &record.UserID, &timestampStr, &record.WaterIntake,
		&sleepDuration, &sleepQuality, &sleepBedtime, &sleepWakeTime, &sleepInterruptions,
		&record.Notes)
	if err != nil {
		return record, fmt.Errorf("failed to scan record: %w", err)
	}

	if record.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
		return record, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	if sleepDuration.Valid {
		sleep := &models.SleepData{
			Duration:      sleepDuration.Float64,
			Quality:       int(sleepQuality.Int64),
			Interruptions: int(sleepInterruptions.Int64),
		}
		if sleepBedtime.Valid {
			if sleep.Bedtime, err = parseClock(sleepBedtime.String); err != nil {
				return record, fmt.Errorf("failed to parse bedtime: %w", err)
			}
		}
		if sleepWakeTime.Valid {
			if sleep.WakeTime, err = parseClock(sleepWakeTime.String); err != nil {
				return record, fmt.Errorf("failed to parse wake time: %w", err)
			}
		}
		record.Sleep = sleep
	}

	return record, nil
}

func (s *SQLiteStorage) loadFoods(ctx context.Context, record *models.LifestyleRecord) error {
	query := `
        SELECT name, serving_size, unit, calories, protein, carbohydrates, fat, sodium, sugar,
            fiber, preservatives, processing_level
        FROM foods
        WHERE record_id = ?
        ORDER BY id
    `
	rows, err := s.db.QueryContext(ctx, query, record.ID)
	if err != nil {
		return fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var foods []models.FoodItem
	for rows.Next() {
		var item models.FoodItem
		var preservativesStr string
		n := &item.NutritionalInfo

		err := rows.Scan(
			&item.Name, &item.ServingSize, &item.Unit,
			&n.Calories, &n.Protein, &n.Carbohydrates, &n.Fat, &n.Sodium, &n.Sugar, &n.Fiber,
			&preservativesStr, &n.ProcessingLevel)
		if err != nil {
			return fmt.Errorf("failed to scan food: %w", err)
		}
		if err := json.Unmarshal([]byte(preservativesStr), &n.Preservatives); err != nil {
			return fmt.Errorf("failed to decode preservatives: %w", err)
		}
		foods = append(foods, item)
	}

	record.FoodItems = foods
	return rows.Err()
}

func (s *SQLiteStorage) loadHabits(ctx context.Context, record *models.LifestyleRecord) error {
	query := `
        SELECT type, intensity, duration, timing, notes
        FROM habits
        WHERE record_id = ?
        ORDER BY id
    `
	rows, err := s.db.QueryContext(ctx, query, record.ID)
	if err != nil {
		return fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		var habitType string
		var timing sql.NullString

		err := rows.Scan(&habitType, &h.Intensity, &h.Duration, &timing, &h.Notes)
		if err != nil {
			return fmt.Errorf("failed to scan habit: %w", err)
		}
		h.Type = models.HabitType(habitType)
		if timing.Valid {
			clock, err := parseClock(timing.String)
			if err != nil {
				return fmt.Errorf("failed to parse habit timing: %w", err)
			}
			h.Timing = &clock
		}
		habits = append(habits, h)
	}

	record.Habits = habits
	return rows.Err()
}

// SaveInsights stores generated insights as JSON payloads.
func (s *SQLiteStorage) SaveInsights(ctx context.Context, userID string, generated []insights.Insight) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO user_insights (id, user_id, created_at, payload) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, in := range generated {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode insight: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), userID, now, string(payload)); err != nil {
			return fmt.Errorf("failed to insert insight: %w", err)
		}
	}

	return tx.Commit()
}

// InsightsForUser loads all stored insights for a user, oldest first.
func (s *SQLiteStorage) InsightsForUser(ctx context.Context, userID string) ([]insights.Insight, error) {
	query := `SELECT payload FROM user_insights WHERE user_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var out []insights.Insight
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		var in insights.Insight
		if err := json.Unmarshal([]byte(payload), &in); err != nil {
			return nil, fmt.Errorf("failed to decode insight: %w", err)
		}
		out = append(out, in)
	}

	return out, rows.Err()
}

// DeleteUser removes all records, foods, habits, and insights for a user and
// reports the counts.
func (s *SQLiteStorage) DeleteUser(ctx context.Context, userID string) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	childQueries := []string{
		`DELETE FROM foods WHERE record_id IN (SELECT id FROM records WHERE user_id = ?)`,
		`DELETE FROM habits WHERE record_id IN (SELECT id FROM records WHERE user_id = ?)`,
	}
	for _, q := range childQueries {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return 0, 0, fmt.Errorf("failed to delete child rows: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE user_id = ?`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete records: %w", err)
	}
	recordsDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted records: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM user_insights WHERE user_id = ?`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete insights: %w", err)
	}
	insightsDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count deleted insights: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit deletion: %w", err)
	}

	return int(recordsDeleted), int(insightsDeleted), nil
}

// Fetch builds a daily metric series from stored records, satisfying the
// pipeline's history feed. Metrics are computed in Go from the loaded rows.
func (s *SQLiteStorage) Fetch(ctx context.Context, userID, metric string, rng analyzers.TimeRange) ([]analyzers.DataPoint, error) {
	records, err := s.GetRecords(ctx, userID, rng.Start, rng.End, 1000)
	if err != nil {
		return nil, err
	}

	// GetRecords returns newest first; the series reads oldest first.
	var points []analyzers.DataPoint
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		value, ok := metricValue(&r, metric)
		if !ok {
			continue
		}
		points = append(points, analyzers.DataPoint{Timestamp: r.Timestamp, Value: value})
	}
	return points, nil
}

func metricValue(r *models.LifestyleRecord, metric string) (float64, bool) {
	switch metric {
	case "sodium":
		if len(r.FoodItems) == 0 {
			return 0, false
		}
		return r.TotalSodium(), true
	case "calories":
		if len(r.FoodItems) == 0 {
			return 0, false
		}
		return r.TotalCalories(), true
	case "water_intake":
		if r.WaterIntake <= 0 {
			return 0, false
		}
		return r.WaterIntake, true
	case "sleep_quality":
		if r.Sleep == nil {
			return 0, false
		}
		return float64(r.Sleep.Quality), true
	case "habit_stress":
		stress := r.MaxIntensity(models.HabitStress)
		if stress == 0 {
			return 0, false
		}
		return float64(stress), true
	default:
		return 0, false
	}
}

func parseClock(s string) (models.ClockTime, error) {
	var c models.ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return c, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return c, nil
}
