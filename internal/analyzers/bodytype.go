// internal/analyzers/bodytype.go
package analyzers

import (
	"fmt"

	"lifestyle-insights/internal/models"
)

// MetabolicRate is the qualitative metabolism speed for a body type.
type MetabolicRate string

const (
	MetabolismFast     MetabolicRate = "fast"
	MetabolismModerate MetabolicRate = "moderate"
	MetabolismSlow     MetabolicRate = "slow"
)

// MetabolicProfile is the fixed trait set for one body type classification.
type MetabolicProfile struct {
	Rate                MetabolicRate `json:"rate"`
	FatStorageTendency  int           `json:"fat_storage_tendency"`  // 1-10
	WaterRetentionLevel int           `json:"water_retention_level"` // 1-10
	CarbSensitivity     int           `json:"carb_sensitivity"`      // 1-10
	MuscleBuildingEase  int           `json:"muscle_building_ease"`  // 1-10
}

// NutritionalNeeds is the macro split and meal pattern advised for a body type.
type NutritionalNeeds struct {
	ProteinPercent int    `json:"protein_percent"`
	CarbsPercent   int    `json:"carbs_percent"`
	FatPercent     int    `json:"fat_percent"`
	MealPattern    string `json:"meal_pattern"`
}

// BodyTypeRecommendation is one personalized lifestyle adjustment.
type BodyTypeRecommendation struct {
	Area       string `json:"area"` // nutrition, hydration, or energy
	Suggestion string `json:"suggestion"`
}

// BodyTypeInsight is the full body-type personalization output. All three
// recommendation areas are always populated.
type BodyTypeInsight struct {
	Classification  models.BodyTypeClass     `json:"classification"`
	Profile         MetabolicProfile         `json:"profile"`
	Needs           NutritionalNeeds         `json:"nutritional_needs"`
	Recommendations []BodyTypeRecommendation `json:"recommendations"`
	Explanation     string                   `json:"explanation"`
}

// Fixed trait profiles. MIXED averages the mesomorph and endomorph water
// and carb traits rather than duplicating either type.
var metabolicProfiles = map[models.BodyTypeClass]MetabolicProfile{
	models.Ectomorph: {Rate: MetabolismFast, FatStorageTendency: 3, WaterRetentionLevel: 2, CarbSensitivity: 4, MuscleBuildingEase: 7},
	models.Mesomorph: {Rate: MetabolismModerate, FatStorageTendency: 5, WaterRetentionLevel: 5, CarbSensitivity: 8, MuscleBuildingEase: 8},
	models.Endomorph: {Rate: MetabolismSlow, FatStorageTendency: 8, WaterRetentionLevel: 8, CarbSensitivity: 6, MuscleBuildingEase: 5},
	models.Mixed:     {Rate: MetabolismModerate, FatStorageTendency: 5, WaterRetentionLevel: 5, CarbSensitivity: 6, MuscleBuildingEase: 6},
}

// Macro splits differ for every classification so that advice is genuinely
// personalized, not shared between types.
var nutritionalNeeds = map[models.BodyTypeClass]NutritionalNeeds{
	models.Ectomorph: {ProteinPercent: 25, CarbsPercent: 55, FatPercent: 20, MealPattern: "5-6 smaller meals throughout the day to sustain energy"},
	models.Mesomorph: {ProteinPercent: 30, CarbsPercent: 40, FatPercent: 30, MealPattern: "3-4 balanced meals with protein at each"},
	models.Endomorph: {ProteinPercent: 35, CarbsPercent: 25, FatPercent: 40, MealPattern: "3 structured meals with controlled carbohydrate portions"},
	models.Mixed:     {ProteinPercent: 28, CarbsPercent: 42, FatPercent: 30, MealPattern: "3-4 meals adjusted to daily activity level"},
}

// BodyTypeAnalyzer personalizes nutrition, hydration, and energy guidance
// based on somatotype classification and the day's record.
type BodyTypeAnalyzer struct{}

func NewBodyTypeAnalyzer() *BodyTypeAnalyzer {
	return &BodyTypeAnalyzer{}
}

// ProfileFor returns the fixed metabolic trait profile for a classification.
func (ba *BodyTypeAnalyzer) ProfileFor(class models.BodyTypeClass) (MetabolicProfile, error) {
	if !class.IsValid() {
		return MetabolicProfile{}, models.NewValidationError(
			"body_type.classification",
			fmt.Sprintf("unknown body type classification %q", class),
			"Use one of: ectomorph, mesomorph, endomorph, mixed.")
	}
	return metabolicProfiles[class], nil
}

// Analyze produces body-type-specific guidance. An unknown classification is
// a validation error.
func (ba *BodyTypeAnalyzer) Analyze(bodyType models.BodyTypeProfile, record models.LifestyleRecord) (BodyTypeInsight, error) {
	if !bodyType.Classification.IsValid() {
		return BodyTypeInsight{}, models.NewValidationError(
			"body_type.classification",
			fmt.Sprintf("unknown body type classification %q", bodyType.Classification),
			"Use one of: ectomorph, mesomorph, endomorph, mixed.")
	}

	profile := metabolicProfiles[bodyType.Classification]
	needs := nutritionalNeeds[bodyType.Classification]

	recs := []BodyTypeRecommendation{
		ba.nutritionAdvice(bodyType.Classification, needs, record),
		ba.hydrationAdvice(bodyType.Classification, profile, record),
		ba.energyAdvice(bodyType.Classification, profile, record),
	}

	explanation := fmt.Sprintf(
		"As a%s %s, your metabolism runs %s with a carb sensitivity of %d/10 and a natural water retention level of %d/10. The guidance below is tuned to those traits and to today's record.",
		articleSuffix(bodyType.Classification), bodyType.Classification, profile.Rate, profile.CarbSensitivity, profile.WaterRetentionLevel)

	return BodyTypeInsight{
		Classification:  bodyType.Classification,
		Profile:         profile,
		Needs:           needs,
		Recommendations: recs,
		Explanation:     explanation,
	}, nil
}

func articleSuffix(c models.BodyTypeClass) string {
	if c == models.Ectomorph || c == models.Endomorph {
		return "n"
	}
	return ""
}

func (ba *BodyTypeAnalyzer) nutritionAdvice(class models.BodyTypeClass, needs NutritionalNeeds, record models.LifestyleRecord) BodyTypeRecommendation {
	var text string
	switch class {
	case models.Ectomorph:
		text = fmt.Sprintf(
			"Your fast metabolism benefits from frequent, calorie-dense meals: aim for roughly %d%% protein, %d%% carbs, %d%% fat. %s.",
			needs.ProteinPercent, needs.CarbsPercent, needs.FatPercent, needs.MealPattern)
		if record.TotalCalories() > 0 && record.TotalCalories() < 2000 {
			text += fmt.Sprintf(" Today's intake of %.0f calories may be too low to sustain your energy needs.", record.TotalCalories())
		}
	case models.Mesomorph:
		text = fmt.Sprintf(
			"Your balanced metabolism responds well to an even split: about %d%% protein, %d%% carbs, %d%% fat. %s.",
			needs.ProteinPercent, needs.CarbsPercent, needs.FatPercent, needs.MealPattern)
		if record.TotalProtein() > 0 && record.TotalProtein() < 60 {
			text += fmt.Sprintf(" Today's protein intake of %.0fg is on the low side for maintaining muscle.", record.TotalProtein())
		}
	case models.Endomorph:
		text = fmt.Sprintf(
			"Your slower metabolism does best with controlled carbohydrates: target %d%% protein, %d%% carbs, %d%% fat. %s.",
			needs.ProteinPercent, needs.CarbsPercent, needs.FatPercent, needs.MealPattern)
		if record.TotalCarbohydrates() > 200 {
			text += fmt.Sprintf(" Today's %.0fg of carbohydrates exceeds the range that typically works well for your type.", record.TotalCarbohydrates())
		}
	default:
		text = fmt.Sprintf(
			"With mixed traits, a flexible split works well: roughly %d%% protein, %d%% carbs, %d%% fat. %s.",
			needs.ProteinPercent, needs.CarbsPercent, needs.FatPercent, needs.MealPattern)
	}
	return BodyTypeRecommendation{Area: "nutrition", Suggestion: text}
}

func (ba *BodyTypeAnalyzer) hydrationAdvice(class models.BodyTypeClass, profile MetabolicProfile, record models.LifestyleRecord) BodyTypeRecommendation {
	var text string
	switch {
	case profile.WaterRetentionLevel >= 7:
		text = "Your body type retains water more readily, so consistent intake matters more than volume: spread 2000-2500ml evenly through the day and watch sodium."
	case profile.WaterRetentionLevel <= 3:
		text = "Your body type sheds water quickly; aim for 2500-3000ml daily, increasing around exercise."
	default:
		text = "Aim for a steady 2000-3000ml daily; your retention tendency is average, so timing is flexible."
	}
	if record.WaterIntake > 0 && record.WaterIntake < 1500 {
		text += fmt.Sprintf(" Today's %.0fml is well below that range.", record.WaterIntake)
	}
	return BodyTypeRecommendation{Area: "hydration", Suggestion: text}
}

func (ba *BodyTypeAnalyzer) energyAdvice(class models.BodyTypeClass, profile MetabolicProfile, record models.LifestyleRecord) BodyTypeRecommendation {
	var text string
	switch class {
	case models.Ectomorph:
		text = "Your fast metabolism burns through fuel quickly; schedule snacks between meals to avoid afternoon energy dips."
		if len(record.FoodItems) > 0 && len(record.FoodItems) < 3 {
			text += fmt.Sprintf(" Only %d food entries today suggests long gaps between meals.", len(record.FoodItems))
		}
	case models.Mesomorph:
		text = "Your energy is naturally stable; pair carbohydrate intake with activity windows to keep it that way."
	case models.Endomorph:
		text = "Steady energy comes from avoiding large carbohydrate spikes; favor fiber-rich carbs and protein at each meal."
		if record.TotalSugar() > 50 {
			text += fmt.Sprintf(" Today's %.0fg of sugar is likely to cause energy swings for your type.", record.TotalSugar())
		}
	default:
		text = "With mixed traits, track which meal patterns leave you most energetic and lean into those."
	}
	return BodyTypeRecommendation{Area: "energy", Suggestion: text}
}
