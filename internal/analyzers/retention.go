// internal/analyzers/retention.go
package analyzers

import (
	"fmt"
	"strings"

	"lifestyle-insights/internal/models"
)

// RetentionLevel is the banded water retention outcome.
type RetentionLevel string

const (
	RetentionLow      RetentionLevel = "low"
	RetentionModerate RetentionLevel = "moderate"
	RetentionHigh     RetentionLevel = "high"
)

// RetentionFactorType identifies a contributor to water retention.
type RetentionFactorType string

const (
	FactorSodium    RetentionFactorType = "sodium"
	FactorHydration RetentionFactorType = "hydration"
	FactorSleep     RetentionFactorType = "sleep"
	FactorHormonal  RetentionFactorType = "hormonal"
	FactorStress    RetentionFactorType = "stress"
)

// Tie-break priority when contributors score equally: lower ranks first.
var factorPriority = map[RetentionFactorType]int{
	FactorSodium:    0,
	FactorSleep:     1,
	FactorHydration: 2,
	FactorStress:    3,
	FactorHormonal:  4,
}

// RetentionFactor is one independent contributor to the retention score.
type RetentionFactor struct {
	Type           RetentionFactorType `json:"type"`
	Impact         int                 `json:"impact"` // points added to the score
	Description    string              `json:"description"`
	Recommendation string              `json:"recommendation"`
}

// RetentionPrediction is the result of the additive retention model.
type RetentionPrediction struct {
	Level               RetentionLevel    `json:"level"`
	Confidence          float64           `json:"confidence"` // 0-1
	PrimaryFactor       RetentionFactor   `json:"primary_factor"`
	ContributingFactors []RetentionFactor `json:"contributing_factors"`
	Explanation         string            `json:"explanation"`
}

// Scoring thresholds.
const (
	highSodiumPerDay     = 800.0  // mg; a single high-sodium meal can flag the day
	moderateSodiumPerDay = 600.0  // mg
	lowWaterThreshold    = 1500.0 // ml per day
	optimalWaterMin      = 2000.0 // ml per day
	veryHighWater        = 4500.0 // ml per day
	poorSleepQuality     = 5
	poorSleepDuration    = 6.0 // hours
	highStressIntensity  = 7
	moderateStress       = 5
)

// Body type sensitivity multipliers applied to the summed score.
var bodyTypeSensitivity = map[models.BodyTypeClass]float64{
	models.Ectomorph: 0.8,
	models.Mesomorph: 1.0,
	models.Endomorph: 1.3,
	models.Mixed:     1.1,
}

// WaterRetentionPredictor scores retention risk from food, hydration, sleep,
// and habits. Each contributor is computed independently; exercise data is
// never required.
type WaterRetentionPredictor struct{}

func NewWaterRetentionPredictor() *WaterRetentionPredictor {
	return &WaterRetentionPredictor{}
}

// Predict computes the retention level for a day's record, adjusted for body
// type sensitivity.
func (p *WaterRetentionPredictor) Predict(record models.LifestyleRecord, bodyType models.BodyTypeProfile) RetentionPrediction {
	factors := p.Factors(record)

	total := 0
	for _, f := range factors {
		total += f.Impact
	}

	sensitivity, ok := bodyTypeSensitivity[bodyType.Classification]
	if !ok {
		sensitivity = 1.0
	}
	adjusted := float64(total) * sensitivity

	var level RetentionLevel
	switch {
	case adjusted <= 2:
		level = RetentionLow
	case adjusted <= 5:
		level = RetentionModerate
	default:
		level = RetentionHigh
	}

	primary := p.primaryFactor(factors)
	explanation := p.explanation(level, primary, factors, bodyType, sensitivity)
	confidence := p.confidence(factors, adjusted)

	return RetentionPrediction{
		Level:               level,
		Confidence:          confidence,
		PrimaryFactor:       primary,
		ContributingFactors: factors,
		Explanation:         explanation,
	}
}

// Factors computes the independent retention contributors, ordered by impact.
func (p *WaterRetentionPredictor) Factors(record models.LifestyleRecord) []RetentionFactor {
	var factors []RetentionFactor

	if f := p.sodiumFactor(record); f != nil {
		factors = append(factors, *f)
	}
	if f := p.hydrationFactor(record); f != nil {
		factors = append(factors, *f)
	}
	if f := p.sleepFactor(record); f != nil {
		factors = append(factors, *f)
	}
	if f := p.stressFactor(record); f != nil {
		factors = append(factors, *f)
	}

	return factors
}

func (p *WaterRetentionPredictor) sodiumFactor(record models.LifestyleRecord) *RetentionFactor {
	total := record.TotalSodium()

	switch {
	case total > highSodiumPerDay:
		return &RetentionFactor{
			Type:   FactorSodium,
			Impact: 3,
			Description: fmt.Sprintf(
				"High sodium intake (%.0fmg) significantly increases water retention as your body holds water to dilute sodium.", total),
			Recommendation: "Reduce sodium intake by choosing fresh foods over processed ones, avoiding added salt, and reading nutrition labels carefully.",
		}
	case total > moderateSodiumPerDay:
		return &RetentionFactor{
			Type:   FactorSodium,
			Impact: 2,
			Description: fmt.Sprintf(
				"Moderate sodium intake (%.0fmg) may contribute to some water retention.", total),
			Recommendation: "Consider limiting processed foods and using herbs and spices for flavor instead of salt.",
		}
	}
	return nil
}

func (p *WaterRetentionPredictor) hydrationFactor(record models.LifestyleRecord) *RetentionFactor {
	water := record.WaterIntake

	switch {
	case water < lowWaterThreshold:
		return &RetentionFactor{
			Type:   FactorHydration,
			Impact: 2,
			Description: fmt.Sprintf(
				"Low water intake (%.0fml) may cause your body to retain water as a protective mechanism.", water),
			Recommendation: "Gradually increase water intake to 2000-3000ml per day, spread consistently through the day.",
		}
	case water > veryHighWater:
		return &RetentionFactor{
			Type:   FactorHydration,
			Impact: 1,
			Description: fmt.Sprintf(
				"Very high water intake (%.0fml) may contribute to slight water retention, though this is less common.", water),
			Recommendation: "Consider moderating water intake to 2000-3500ml per day.",
		}
	case water < optimalWaterMin:
		return &RetentionFactor{
			Type:   FactorHydration,
			Impact: 1,
			Description: fmt.Sprintf(
				"Water intake (%.0fml) is slightly below optimal and may contribute minimally to retention.", water),
			Recommendation: "Try to increase water intake slightly to reach 2000ml per day.",
		}
	}
	return nil
}

func (p *WaterRetentionPredictor) sleepFactor(record models.LifestyleRecord) *RetentionFactor {
	sleep := record.Sleep
	if sleep == nil {
		return nil
	}

	poorQuality := sleep.Quality <= poorSleepQuality && sleep.Quality > 0
	poorDuration := sleep.Duration > 0 && sleep.Duration < poorSleepDuration

	switch {
	case poorQuality && poorDuration:
		return &RetentionFactor{
			Type:   FactorSleep,
			Impact: 2,
			Description: fmt.Sprintf(
				"Poor sleep quality (%d/10) and insufficient duration (%.1fh) disrupt hormonal balance, leading to increased water retention.",
				sleep.Quality, sleep.Duration),
			Recommendation: "Prioritize 7-9 hours of quality sleep with a consistent bedtime routine.",
		}
	case poorQuality:
		return &RetentionFactor{
			Type:   FactorSleep,
			Impact: 2,
			Description: fmt.Sprintf(
				"Poor sleep quality (%d/10) can disrupt hormones that regulate fluid balance, contributing to water retention.", sleep.Quality),
			Recommendation: "Focus on sleep hygiene: reduce screen time before bed and manage evening stress.",
		}
	case poorDuration:
		return &RetentionFactor{
			Type:   FactorSleep,
			Impact: 1,
			Description: fmt.Sprintf(
				"Insufficient sleep duration (%.1fh) may affect fluid regulation hormones.", sleep.Duration),
			Recommendation: "Aim for 7-9 hours of sleep per night.",
		}
	}
	return nil
}

func (p *WaterRetentionPredictor) stressFactor(record models.LifestyleRecord) *RetentionFactor {
	maxStress := record.MaxIntensity(models.HabitStress)
	if maxStress == 0 {
		return nil
	}

	switch {
	case maxStress >= highStressIntensity:
		return &RetentionFactor{
			Type:   FactorStress,
			Impact: 2,
			Description: fmt.Sprintf(
				"High stress levels (intensity %d/10) trigger cortisol release, which can increase water retention and bloating.", maxStress),
			Recommendation: "Practice stress management techniques such as meditation, deep breathing, or regular exercise.",
		}
	case maxStress >= moderateStress:
		return &RetentionFactor{
			Type:   FactorStress,
			Impact: 1,
			Description: fmt.Sprintf(
				"Moderate stress levels (intensity %d/10) may contribute slightly to water retention through cortisol.", maxStress),
			Recommendation: "Consider stress-reduction activities such as walking, yoga, or mindfulness.",
		}
	}
	return nil
}

// primaryFactor selects exactly one highest-scoring contributor, breaking
// ties by the fixed priority order SODIUM > SLEEP > HYDRATION > STRESS >
// HORMONAL. With no contributors, a neutral hydration factor is reported.
func (p *WaterRetentionPredictor) primaryFactor(factors []RetentionFactor) RetentionFactor {
	if len(factors) == 0 {
		return RetentionFactor{
			Type:           FactorHydration,
			Impact:         1,
			Description:    "All lifestyle factors are within optimal ranges.",
			Recommendation: "Continue maintaining your current habits.",
		}
	}

	best := factors[0]
	for _, f := range factors[1:] {
		if f.Impact > best.Impact ||
			(f.Impact == best.Impact && factorPriority[f.Type] < factorPriority[best.Type]) {
			best = f
		}
	}
	return best
}

func (p *WaterRetentionPredictor) explanation(
	level RetentionLevel,
	primary RetentionFactor,
	factors []RetentionFactor,
	bodyType models.BodyTypeProfile,
	sensitivity float64,
) string {
	parts := []string{
		fmt.Sprintf("Based on your lifestyle factors, you are experiencing %s water retention.", level),
		fmt.Sprintf("The primary contributing factor is %s: %s", primary.Type, primary.Description),
	}

	var others []string
	for _, f := range factors {
		if f.Type != primary.Type && f.Impact >= 2 {
			others = append(others, string(f.Type))
		}
	}
	if len(others) > 0 {
		parts = append(parts, fmt.Sprintf("Additional contributing factors include: %s.", strings.Join(others, ", ")))
	}

	if sensitivity > 1.0 {
		parts = append(parts, fmt.Sprintf(
			"Your %s body type may have increased sensitivity to water retention factors.", bodyType.Classification))
	} else if sensitivity < 1.0 {
		parts = append(parts, fmt.Sprintf(
			"Your %s body type typically has lower sensitivity to water retention factors.", bodyType.Classification))
	}

	return strings.Join(parts, " ")
}

// confidence is higher with a clearly dominant factor and at score extremes.
func (p *WaterRetentionPredictor) confidence(factors []RetentionFactor, adjusted float64) float64 {
	if len(factors) == 0 {
		return 0.60
	}

	maxImpact := 0
	for _, f := range factors {
		if f.Impact > maxImpact {
			maxImpact = f.Impact
		}
	}
	secondHighest := 0
	for _, f := range factors {
		if f.Impact < maxImpact && f.Impact > secondHighest {
			secondHighest = f.Impact
		}
	}

	var conf float64
	if secondHighest == 0 && len(factors) == 1 {
		conf = 0.85
	} else {
		conf = 0.70 + float64(maxImpact-secondHighest)*0.10
	}

	if adjusted <= 1 || adjusted >= 7 {
		conf += 0.05
	}

	if conf < 0.65 {
		return 0.65
	}
	if conf > 0.95 {
		return 0.95
	}
	return conf
}
