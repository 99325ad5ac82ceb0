// internal/analyzers/sleep.go
package analyzers

import (
	"fmt"
	"sort"
	"strings"

	"lifestyle-insights/internal/models"
)

// SleepQuality is the banded assessment of a night's sleep.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// ImpactType marks whether a habit helped or hurt sleep.
type ImpactType string

const (
	ImpactPositive ImpactType = "positive"
	ImpactNegative ImpactType = "negative"
	ImpactNeutral  ImpactType = "neutral"
)

// SleepDisruptorType identifies a category of sleep disruption.
type SleepDisruptorType string

const (
	DisruptorCaffeine   SleepDisruptorType = "caffeine"
	DisruptorLateEating SleepDisruptorType = "late_eating"
	DisruptorScreenTime SleepDisruptorType = "screen_time"
	DisruptorStress     SleepDisruptorType = "stress"
	DisruptorHydration  SleepDisruptorType = "hydration"
)

// RecommendationPriority orders sleep recommendations.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// SleepCorrelation links a same-day habit to the night's sleep.
type SleepCorrelation struct {
	Habit       string     `json:"habit"`
	Impact      ImpactType `json:"impact"`
	Strength    int        `json:"strength"` // 1-10
	Description string     `json:"description"`
}

// SleepDisruptor is a habit that actively degraded sleep.
type SleepDisruptor struct {
	Type        SleepDisruptorType `json:"type"`
	Severity    int                `json:"severity"` // 1-10
	Description string             `json:"description"`
}

// SleepRecommendation is an actionable suggestion tied to a disruptor.
type SleepRecommendation struct {
	Priority  RecommendationPriority `json:"priority"`
	Action    string                 `json:"action"`
	Rationale string                 `json:"rationale"`
}

// SleepAnalysis is the full output of the sleep correlation analyzer.
type SleepAnalysis struct {
	Quality         SleepQuality          `json:"quality"`
	Correlations    []SleepCorrelation    `json:"correlations"`
	Disruptors      []SleepDisruptor      `json:"disruptors"`
	Recommendations []SleepRecommendation `json:"recommendations"`
	Explanation     string                `json:"explanation"`
}

// Correlation windows and thresholds.
const (
	caffeineWindowHours   = 6.0
	lateEatingWindowHours = 3.0
	screenWindowHours     = 2.0
	lowHydration          = 1500.0 // ml
	modestHydration       = 2000.0 // ml
	minSleepDuration      = 6.0    // hours
	maxSleepDuration      = 10.0   // hours
	maxInterruptions      = 3
)

// SleepAnalyzer correlates a day's habits with that night's sleep quality.
type SleepAnalyzer struct{}

func NewSleepAnalyzer() *SleepAnalyzer {
	return &SleepAnalyzer{}
}

// Analyze assesses sleep quality and links it to same-day habits. It fails
// with a validation error naming the missing field when sleep data is absent
// or malformed.
func (sa *SleepAnalyzer) Analyze(sleep *models.SleepData, record models.LifestyleRecord) (SleepAnalysis, error) {
	if sleep == nil {
		return SleepAnalysis{}, models.NewValidationError(
			"sleep_data",
			"sleep data is required for sleep analysis",
			"Log bedtime, wake time, duration, and a 1-10 quality rating.")
	}
	if sleep.Quality < 1 || sleep.Quality > 10 {
		return SleepAnalysis{}, models.NewValidationError(
			"sleep_data.quality",
			fmt.Sprintf("sleep quality must be between 1 and 10, got %d", sleep.Quality),
			"Rate last night's sleep on a 1-10 scale.")
	}
	if sleep.Duration <= 0 {
		return SleepAnalysis{}, models.NewValidationError(
			"sleep_data.duration",
			"sleep duration must be a positive number of hours",
			"Log how long you slept, for example 7.5.")
	}

	quality := sa.assessQuality(sleep)
	correlations := sa.correlations(sleep, record)
	disruptors := sa.disruptors(sleep, record)
	recommendations := sa.recommendations(disruptors, correlations)
	explanation := sa.explanation(quality, sleep, correlations)

	return SleepAnalysis{
		Quality:         quality,
		Correlations:    correlations,
		Disruptors:      disruptors,
		Recommendations: recommendations,
		Explanation:     explanation,
	}, nil
}

// assessQuality bands the 1-10 rating, then downgrades one band for duration
// or interruption problems.
func (sa *SleepAnalyzer) assessQuality(sleep *models.SleepData) SleepQuality {
	var quality SleepQuality
	switch {
	case sleep.Quality <= 3:
		quality = SleepPoor
	case sleep.Quality <= 6:
		quality = SleepFair
	case sleep.Quality <= 8:
		quality = SleepGood
	default:
		quality = SleepExcellent
	}

	downgrade := sleep.Duration < minSleepDuration ||
		sleep.Duration > maxSleepDuration ||
		sleep.Interruptions >= maxInterruptions
	if downgrade {
		switch quality {
		case SleepExcellent:
			quality = SleepGood
		case SleepGood:
			quality = SleepFair
		case SleepFair:
			quality = SleepPoor
		}
	}
	return quality
}

func (sa *SleepAnalyzer) correlations(sleep *models.SleepData, record models.LifestyleRecord) []SleepCorrelation {
	var out []SleepCorrelation

	// Caffeine within six hours of bedtime.
	for _, h := range record.HabitsOfType(models.HabitCaffeine) {
		if h.Timing == nil {
			continue
		}
		gap := h.Timing.HoursUntil(sleep.Bedtime)
		if gap <= caffeineWindowHours {
			strength := int(10 - gap)
			if strength > 10 {
				strength = 10
			}
			if strength < 1 {
				strength = 1
			}
			out = append(out, SleepCorrelation{
				Habit:    "caffeine",
				Impact:   ImpactNegative,
				Strength: strength,
				Description: fmt.Sprintf(
					"Caffeine consumed %.1f hours before bedtime can significantly disrupt sleep onset and reduce deep sleep.", gap),
			})
		}
	}

	// Eating close to bedtime, inferred from habit timing notes or the last meal.
	if gap, ok := sa.lastMealGap(sleep, record); ok && gap < lateEatingWindowHours {
		strength := int(8 - gap*2)
		if strength > 10 {
			strength = 10
		}
		if strength < 1 {
			strength = 1
		}
		out = append(out, SleepCorrelation{
			Habit:    "late_eating",
			Impact:   ImpactNegative,
			Strength: strength,
			Description: fmt.Sprintf(
				"Eating %.1f hours before bed keeps digestion active during sleep and can reduce sleep quality.", gap),
		})
	}

	// Hydration level.
	switch {
	case record.WaterIntake > 0 && record.WaterIntake < lowHydration:
		out = append(out, SleepCorrelation{
			Habit:    "hydration",
			Impact:   ImpactNegative,
			Strength: 6,
			Description: fmt.Sprintf(
				"Low water intake (%.0fml) can cause dehydration that fragments sleep.", record.WaterIntake),
		})
	case record.WaterIntake > 0 && record.WaterIntake < modestHydration:
		out = append(out, SleepCorrelation{
			Habit:    "hydration",
			Impact:   ImpactNeutral,
			Strength: 3,
			Description: fmt.Sprintf(
				"Water intake (%.0fml) is slightly below optimal but unlikely to meaningfully affect sleep.", record.WaterIntake),
		})
	}

	// Stress intensity.
	if stress := record.MaxIntensity(models.HabitStress); stress >= 7 {
		out = append(out, SleepCorrelation{
			Habit:    "stress",
			Impact:   ImpactNegative,
			Strength: 9,
			Description: fmt.Sprintf(
				"High stress (intensity %d/10) elevates cortisol and makes falling and staying asleep harder.", stress),
		})
	} else if stress >= 5 {
		out = append(out, SleepCorrelation{
			Habit:    "stress",
			Impact:   ImpactNegative,
			Strength: 6,
			Description: fmt.Sprintf(
				"Moderate stress (intensity %d/10) can delay sleep onset.", stress),
		})
	}

	// Screen time near bedtime.
	for _, h := range record.HabitsOfType(models.HabitScreenTime) {
		if h.Timing == nil {
			continue
		}
		gap := h.Timing.HoursUntil(sleep.Bedtime)
		if gap <= screenWindowHours {
			out = append(out, SleepCorrelation{
				Habit:    "screen_time",
				Impact:   ImpactNegative,
				Strength: 5,
				Description: fmt.Sprintf(
					"Screen use %.1f hours before bed exposes you to blue light that suppresses melatonin.", gap),
			})
			break
		}
	}

	// Exercise during the day is a positive correlation.
	for _, h := range record.HabitsOfType(models.HabitExercise) {
		if h.Intensity >= 4 {
			out = append(out, SleepCorrelation{
				Habit:    "exercise",
				Impact:   ImpactPositive,
				Strength: 6,
				Description: fmt.Sprintf(
					"Exercise (intensity %d/10) during the day supports deeper, more restorative sleep.", h.Intensity),
			})
			break
		}
	}

	return out
}

// lastMealGap estimates hours between the last food timestamp-bearing entry
// and bedtime. Food items carry no timing, so the record timestamp is the
// best available proxy when it falls on the same evening.
func (sa *SleepAnalyzer) lastMealGap(sleep *models.SleepData, record models.LifestyleRecord) (float64, bool) {
	if len(record.FoodItems) == 0 {
		return 0, false
	}
	mealTime := models.ClockFromTime(record.Timestamp)
	gap := mealTime.HoursUntil(sleep.Bedtime)
	if gap > 12 {
		// Record logged in the morning; the gap is meaningless.
		return 0, false
	}
	return gap, true
}

// IdentifyDisruptors lists the day's sleep-disrupting habits without running
// the full analysis. Timing-based disruptors need logged sleep data; a record
// without it reports only the timing-independent ones (stress, hydration).
func (sa *SleepAnalyzer) IdentifyDisruptors(record models.LifestyleRecord) []SleepDisruptor {
	return sa.disruptors(record.Sleep, record)
}

func (sa *SleepAnalyzer) disruptors(sleep *models.SleepData, record models.LifestyleRecord) []SleepDisruptor {
	var out []SleepDisruptor

	if sleep != nil {
		for _, h := range record.HabitsOfType(models.HabitCaffeine) {
			if h.Timing == nil {
				continue
			}
			gap := h.Timing.HoursUntil(sleep.Bedtime)
			if gap <= caffeineWindowHours {
				severity := int(10 - gap)
				if severity < 1 {
					severity = 1
				}
				out = append(out, SleepDisruptor{
					Type:     DisruptorCaffeine,
					Severity: severity,
					Description: fmt.Sprintf(
						"Caffeine %.1f hours before bedtime.", gap),
				})
				break
			}
		}

		if gap, ok := sa.lastMealGap(sleep, record); ok && gap < lateEatingWindowHours {
			severity := int(8 - gap*2)
			if severity < 1 {
				severity = 1
			}
			out = append(out, SleepDisruptor{
				Type:     DisruptorLateEating,
				Severity: severity,
				Description: fmt.Sprintf(
					"Eating %.1f hours before bed.", gap),
			})
		}
	}

	if stress := record.MaxIntensity(models.HabitStress); stress >= 7 {
		out = append(out, SleepDisruptor{
			Type:        DisruptorStress,
			Severity:    9,
			Description: fmt.Sprintf("High stress at intensity %d/10.", stress),
		})
	} else if stress >= 5 {
		out = append(out, SleepDisruptor{
			Type:        DisruptorStress,
			Severity:    6,
			Description: fmt.Sprintf("Moderate stress at intensity %d/10.", stress),
		})
	}

	if sleep != nil {
		for _, h := range record.HabitsOfType(models.HabitScreenTime) {
			if h.Timing == nil {
				continue
			}
			if h.Timing.HoursUntil(sleep.Bedtime) <= screenWindowHours {
				out = append(out, SleepDisruptor{
					Type:        DisruptorScreenTime,
					Severity:    5,
					Description: "Screen exposure within two hours of bedtime.",
				})
				break
			}
		}
	}

	if record.WaterIntake > 0 && record.WaterIntake < lowHydration {
		out = append(out, SleepDisruptor{
			Type:        DisruptorHydration,
			Severity:    4,
			Description: fmt.Sprintf("Low hydration at %.0fml for the day.", record.WaterIntake),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

var disruptorActions = map[SleepDisruptorType]SleepRecommendation{
	DisruptorCaffeine: {
		Priority:  PriorityHigh,
		Action:    "Avoid caffeine within 6 hours of bedtime.",
		Rationale: "Caffeine has a 5-6 hour half-life and blocks adenosine, the signal that builds sleep pressure.",
	},
	DisruptorLateEating: {
		Priority:  PriorityMedium,
		Action:    "Finish your last meal at least 3 hours before bed.",
		Rationale: "Active digestion raises core body temperature and delays deep sleep.",
	},
	DisruptorStress: {
		Priority:  PriorityHigh,
		Action:    "Add a 10-minute wind-down routine before bed, such as breathing exercises or journaling.",
		Rationale: "Lowering evening stress reduces cortisol, making sleep onset easier.",
	},
	DisruptorScreenTime: {
		Priority:  PriorityMedium,
		Action:    "Put screens away 1-2 hours before bedtime, or use a blue light filter.",
		Rationale: "Blue light suppresses melatonin production and shifts your sleep timing later.",
	},
	DisruptorHydration: {
		Priority:  PriorityLow,
		Action:    "Drink more water earlier in the day rather than right before bed.",
		Rationale: "Daytime hydration supports sleep without causing nighttime wake-ups.",
	},
}

// recommendations maps disruptors to actions. A night with negative
// correlations always yields at least one recommendation.
func (sa *SleepAnalyzer) recommendations(disruptors []SleepDisruptor, correlations []SleepCorrelation) []SleepRecommendation {
	var out []SleepRecommendation
	seen := make(map[SleepDisruptorType]bool)
	for _, d := range disruptors {
		if seen[d.Type] {
			continue
		}
		seen[d.Type] = true
		if rec, ok := disruptorActions[d.Type]; ok {
			out = append(out, rec)
		}
	}

	if len(out) == 0 {
		for _, c := range correlations {
			if c.Impact == ImpactNegative {
				out = append(out, SleepRecommendation{
					Priority:  PriorityMedium,
					Action:    "Review your evening routine for habits that cut into sleep quality.",
					Rationale: fmt.Sprintf("Your %s habit showed a negative association with last night's sleep.", c.Habit),
				})
				break
			}
		}
	}

	return out
}

// explanation always names at least one habit-to-outcome relationship.
func (sa *SleepAnalyzer) explanation(quality SleepQuality, sleep *models.SleepData, correlations []SleepCorrelation) string {
	parts := []string{
		fmt.Sprintf("Your sleep quality was %s (%d/10 over %.1f hours).", quality, sleep.Quality, sleep.Duration),
	}

	var strongest *SleepCorrelation
	for i := range correlations {
		c := &correlations[i]
		if c.Impact == ImpactNegative && (strongest == nil || c.Strength > strongest.Strength) {
			strongest = c
		}
	}

	if strongest != nil {
		parts = append(parts, fmt.Sprintf(
			"The habit most strongly linked to this outcome was %s: %s", strongest.Habit, strongest.Description))
	} else {
		var positive *SleepCorrelation
		for i := range correlations {
			if correlations[i].Impact == ImpactPositive {
				positive = &correlations[i]
				break
			}
		}
		if positive != nil {
			parts = append(parts, fmt.Sprintf(
				"Your %s habit supported this outcome: %s", positive.Habit, positive.Description))
		} else {
			parts = append(parts, "Your balanced daily habits supported a steady night of sleep, with no single habit standing out as a disruptor.")
		}
	}

	if sleep.Interruptions >= maxInterruptions {
		parts = append(parts, fmt.Sprintf(
			"The %d interruptions fragmented your sleep and reduced its restorative value.", sleep.Interruptions))
	}

	return strings.Join(parts, " ")
}
