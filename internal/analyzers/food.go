// internal/analyzers/food.go
package analyzers

import (
	"fmt"
	"strings"

	"lifestyle-insights/internal/models"
)

// FoodCategory is the closed set of classification outcomes.
type FoodCategory string

const (
	CategoryHealthy           FoodCategory = "healthy"
	CategoryJunk              FoodCategory = "junk"
	CategoryPreservativeHeavy FoodCategory = "preservative_heavy"
)

// FSIParameters are the derived nutritional scoring inputs, each on a 0-1 scale.
type FSIParameters struct {
	NutrientDensity  float64 `json:"nutrient_density"`
	ProcessingScore  float64 `json:"processing_score"`
	PreservativeLoad float64 `json:"preservative_load"`
	SugarContent     float64 `json:"sugar_content"`
	SodiumLevel      float64 `json:"sodium_level"`
}

// FoodClassification is the result of classifying a single food item.
type FoodClassification struct {
	Food            string       `json:"food"`
	Category        FoodCategory `json:"category"`
	Confidence      float64      `json:"confidence"` // 0-1
	Rationale       string       `json:"rationale"`
	DominantFactors []string     `json:"dominant_factors"`
}

// Classification thresholds.
const (
	nutrientDensityHealthyThreshold = 0.7
	nutrientDensityJunkThreshold    = 0.3
	processingHealthyMax            = 2
	processingJunkMin               = 4
	preservativeCountThreshold      = 3
	sugarJunkThreshold              = 15.0  // grams per serving
	sodiumJunkThreshold             = 600.0 // mg per serving
	ambiguityMargin                 = 0.15
)

// FoodClassifier categorizes food items from their nutritional parameters.
// Classification is a pure function of NutritionalInfo: identical inputs
// always produce identical output, rationale text included.
type FoodClassifier struct{}

func NewFoodClassifier() *FoodClassifier {
	return &FoodClassifier{}
}

// Classify categorizes a food item as healthy, junk, or preservative-heavy.
func (fc *FoodClassifier) Classify(item models.FoodItem) FoodClassification {
	params := fc.FSIParams(item)
	scores := fc.categoryScores(item, params)
	category := fc.selectCategory(scores, item)
	rationale, factors := fc.rationale(category, item, params)
	confidence := fc.confidence(scores, category)

	return FoodClassification{
		Food:            item.Name,
		Category:        category,
		Confidence:      confidence,
		Rationale:       rationale,
		DominantFactors: factors,
	}
}

// FSIParams derives the fixed scoring inputs from a food item.
func (fc *FoodClassifier) FSIParams(item models.FoodItem) FSIParameters {
	n := item.NutritionalInfo

	// Nutrient density: (protein + fiber) per 100 calories, clamped to 0-1.
	var density float64
	if n.Calories > 1.0 {
		density = clamp01((n.Protein + n.Fiber) / (n.Calories / 100))
	}

	return FSIParameters{
		NutrientDensity:  density,
		ProcessingScore:  float64(5-n.ProcessingLevel) / 4.0,
		PreservativeLoad: clamp01(float64(len(n.Preservatives)) / 5.0),
		SugarContent:     clamp01(n.Sugar / 30.0),
		SodiumLevel:      clamp01(n.Sodium / 1000.0),
	}
}

func (fc *FoodClassifier) categoryScores(item models.FoodItem, p FSIParameters) map[FoodCategory]float64 {
	n := item.NutritionalInfo

	healthy := p.NutrientDensity*0.4 +
		p.ProcessingScore*0.3 +
		(1-p.PreservativeLoad)*0.15 +
		(1-p.SugarContent)*0.075 +
		(1-p.SodiumLevel)*0.075

	junk := (1-p.NutrientDensity)*0.3 +
		(1-p.ProcessingScore)*0.3 +
		p.SugarContent*0.2 +
		p.SodiumLevel*0.2

	preservative := p.PreservativeLoad

	// Hard thresholds override the weighted scores.
	if len(n.Preservatives) >= preservativeCountThreshold {
		preservative = maxFloat(preservative, 0.8)
	}
	if n.ProcessingLevel >= processingJunkMin {
		junk = maxFloat(junk, 0.7)
	}
	if n.Sugar > sugarJunkThreshold {
		junk = maxFloat(junk, 0.6)
	}
	if n.Sodium > sodiumJunkThreshold {
		junk = maxFloat(junk, 0.6)
	}

	return map[FoodCategory]float64{
		CategoryHealthy:           healthy,
		CategoryJunk:              junk,
		CategoryPreservativeHeavy: preservative,
	}
}

// selectCategory picks the dominant category. When scores are within the
// ambiguity margin the cautious order applies: JUNK over PRESERVATIVE_HEAVY
// over HEALTHY.
func (fc *FoodClassifier) selectCategory(scores map[FoodCategory]float64, item models.FoodItem) FoodCategory {
	n := item.NutritionalInfo

	if len(n.Preservatives) >= preservativeCountThreshold {
		return CategoryPreservativeHeavy
	}
	if scores[CategoryPreservativeHeavy] >= 0.6 {
		return CategoryPreservativeHeavy
	}

	// Fixed iteration order keeps ties deterministic and cautious.
	cautiousOrder := []FoodCategory{CategoryJunk, CategoryPreservativeHeavy, CategoryHealthy}
	best := cautiousOrder[0]
	for _, c := range cautiousOrder[1:] {
		if scores[c] > scores[best] {
			best = c
		}
	}

	if best == CategoryHealthy && scores[CategoryHealthy]-scores[CategoryJunk] < ambiguityMargin {
		return CategoryJunk
	}
	return best
}

func (fc *FoodClassifier) rationale(category FoodCategory, item models.FoodItem, p FSIParameters) (string, []string) {
	n := item.NutritionalInfo
	var parts, factors []string

	switch category {
	case CategoryHealthy:
		if p.NutrientDensity >= nutrientDensityHealthyThreshold {
			parts = append(parts, fmt.Sprintf("nutrient density %.2f above the %.2f threshold", p.NutrientDensity, nutrientDensityHealthyThreshold))
			factors = append(factors, "nutrient_density")
		}
		if n.ProcessingLevel <= processingHealthyMax {
			parts = append(parts, fmt.Sprintf("processing level %d at or below %d", n.ProcessingLevel, processingHealthyMax))
			factors = append(factors, "low_processing")
		}
		if len(n.Preservatives) == 0 {
			parts = append(parts, "no preservatives")
			factors = append(factors, "no_preservatives")
		}
		if n.Fiber >= 3 {
			parts = append(parts, fmt.Sprintf("good fiber content (%.0fg)", n.Fiber))
			factors = append(factors, "fiber")
		}
		if len(parts) == 0 {
			parts = append(parts, "balanced overall composition")
		}
		return fmt.Sprintf("Classified as healthy due to %s.", strings.Join(parts, ", ")), ensureFactors(factors)

	case CategoryJunk:
		if n.Sugar > sugarJunkThreshold {
			parts = append(parts, fmt.Sprintf("sugar %.0fg above the %.0fg threshold", n.Sugar, sugarJunkThreshold))
			factors = append(factors, "high_sugar")
		}
		if n.Sodium > sodiumJunkThreshold {
			parts = append(parts, fmt.Sprintf("sodium %.0fmg above the %.0fmg threshold", n.Sodium, sodiumJunkThreshold))
			factors = append(factors, "high_sodium")
		}
		if n.ProcessingLevel >= processingJunkMin {
			parts = append(parts, fmt.Sprintf("processing level %d at or above %d", n.ProcessingLevel, processingJunkMin))
			factors = append(factors, "high_processing")
		}
		if p.NutrientDensity < nutrientDensityJunkThreshold {
			parts = append(parts, fmt.Sprintf("nutrient density %.2f below the %.2f threshold", p.NutrientDensity, nutrientDensityJunkThreshold))
			factors = append(factors, "low_nutrients")
		}
		if len(parts) == 0 {
			parts = append(parts, "overall composition closer to junk than healthy")
		}
		return fmt.Sprintf("Classified as junk food due to %s.", strings.Join(parts, ", ")), ensureFactors(factors)

	default: // CategoryPreservativeHeavy
		count := len(n.Preservatives)
		listed := n.Preservatives
		if len(listed) > 3 {
			listed = listed[:3]
		}
		rationale := fmt.Sprintf(
			"Classified as preservative-heavy due to %d preservatives, at or above the threshold of %d: %s.",
			count, preservativeCountThreshold, strings.Join(listed, ", "))
		factors = append(factors, "preservatives")
		if n.ProcessingLevel >= processingJunkMin {
			factors = append(factors, "high_processing")
		}
		return rationale, factors
	}
}

// confidence maps the separation between the winning score and the runner-up
// to a 0.60-0.95 confidence.
func (fc *FoodClassifier) confidence(scores map[FoodCategory]float64, category FoodCategory) float64 {
	winner := scores[category]
	maxOther := -1.0
	for c, s := range scores {
		if c != category && s > maxOther {
			maxOther = s
		}
	}
	conf := 0.60 + (winner-maxOther)*0.70
	if conf < 0.60 {
		return 0.60
	}
	if conf > 0.95 {
		return 0.95
	}
	return conf
}

func ensureFactors(factors []string) []string {
	if len(factors) == 0 {
		return []string{"overall_composition"}
	}
	return factors
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
