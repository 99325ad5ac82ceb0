// internal/insights/generator_test.go
package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifestyle-insights/internal/analyzers"
)

func foodResult(category analyzers.FoodCategory, confidence float64) AnalysisResult {
	return AnalysisResult{
		Source:      SourceFood,
		Confidence:  confidence,
		GeneratedAt: time.Now(),
		Food: &analyzers.FoodClassification{
			Food:      "Test Food",
			Category:  category,
			Rationale: "test rationale",
		},
	}
}

func retentionResult(level analyzers.RetentionLevel, impact int, confidence float64) AnalysisResult {
	return AnalysisResult{
		Source:      SourceWater,
		Confidence:  confidence,
		GeneratedAt: time.Now(),
		Retention: &analyzers.RetentionPrediction{
			Level: level,
			PrimaryFactor: analyzers.RetentionFactor{
				Type:           analyzers.FactorSodium,
				Impact:         impact,
				Recommendation: "reduce sodium",
			},
			Explanation: "test explanation",
		},
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	g := NewGenerator()
	assert.Empty(t, g.Generate(nil))
	assert.Empty(t, g.Generate([]AnalysisResult{}))
}

func TestGenerateOnePerResult(t *testing.T) {
	g := NewGenerator()

	results := []AnalysisResult{
		foodResult(analyzers.CategoryHealthy, 0.9),
		retentionResult(analyzers.RetentionLow, 1, 0.7),
	}

	generated := g.Generate(results)
	require.Len(t, generated, 2)
	assert.Equal(t, "Food Classification Insight", generated[0].Title)
	assert.Equal(t, "Nutrition", generated[0].Category)
	assert.Equal(t, "Water Retention Insight", generated[1].Title)
	assert.Equal(t, "Hydration", generated[1].Category)
}

func TestPriorityRules(t *testing.T) {
	g := NewGenerator()

	// Confident junk classification is severe.
	junk := g.Generate([]AnalysisResult{foodResult(analyzers.CategoryJunk, 0.9)})
	require.Len(t, junk, 1)
	assert.Equal(t, PriorityHigh, junk[0].Priority)

	// High retention is severe regardless of confidence.
	high := g.Generate([]AnalysisResult{retentionResult(analyzers.RetentionHigh, 3, 0.7)})
	require.Len(t, high, 1)
	assert.Equal(t, PriorityHigh, high[0].Priority)

	// Actionable with moderate confidence is medium.
	moderate := g.Generate([]AnalysisResult{retentionResult(analyzers.RetentionModerate, 2, 0.7)})
	require.Len(t, moderate, 1)
	assert.Equal(t, PriorityMedium, moderate[0].Priority)

	// Healthy food with nothing to act on is low.
	healthy := g.Generate([]AnalysisResult{foodResult(analyzers.CategoryHealthy, 0.9)})
	require.Len(t, healthy, 1)
	assert.Equal(t, PriorityLow, healthy[0].Priority)
}

func TestPrioritizeOrdering(t *testing.T) {
	g := NewGenerator()

	insights := []Insight{
		{Title: "A", Category: "Nutrition", Source: SourceFood, Priority: PriorityLow, Confidence: 0.9, Summary: "low priority"},
		{Title: "B", Category: "Hydration", Source: SourceWater, Priority: PriorityHigh, Confidence: 0.7, Summary: "high priority"},
		{Title: "C", Category: "Sleep & Recovery", Source: SourceSleep, Priority: PriorityMedium, Confidence: 0.8, Summary: "medium priority"},
		{Title: "D", Category: "Metabolism", Source: SourceBodyType, Priority: PriorityMedium, Confidence: 0.95, Summary: "confident medium"},
	}

	ordered := g.Prioritize(insights)
	require.Len(t, ordered, 4)
	assert.Equal(t, "B", ordered[0].Title)
	assert.Equal(t, "D", ordered[1].Title, "equal priority sorts by confidence")
	assert.Equal(t, "C", ordered[2].Title)
	assert.Equal(t, "A", ordered[3].Title)
}

func TestPrioritizeSourceTieBreak(t *testing.T) {
	g := NewGenerator()

	insights := []Insight{
		{Title: "Trend", Category: "Lifestyle Patterns", Source: SourceTrend, Priority: PriorityMedium, Confidence: 0.8, Summary: "trend"},
		{Title: "Food", Category: "Nutrition", Source: SourceFood, Priority: PriorityMedium, Confidence: 0.8, Summary: "food"},
	}

	ordered := g.Prioritize(insights)
	require.Len(t, ordered, 2)
	assert.Equal(t, "Food", ordered[0].Title, "fixed source order breaks exact ties")
}

func TestDedupeKeepsHigherConfidence(t *testing.T) {
	g := NewGenerator()

	insights := []Insight{
		{Title: "First", Category: "Nutrition", Source: SourceFood, Priority: PriorityMedium, Confidence: 0.7, Summary: "Chips classified as junk."},
		{Title: "Second", Category: "Nutrition", Source: SourceFood, Priority: PriorityMedium, Confidence: 0.9, Summary: "Chips classified as junk."},
		{Title: "Other", Category: "Hydration", Source: SourceWater, Priority: PriorityMedium, Confidence: 0.6, Summary: "Different summary entirely."},
	}

	ordered := g.Prioritize(insights)
	require.Len(t, ordered, 2)
	assert.Equal(t, "Second", ordered[0].Title)
	assert.Equal(t, 0.9, ordered[0].Confidence)
}

func TestPrioritizeLinksSameCategoryInsights(t *testing.T) {
	g := NewGenerator()

	insights := []Insight{
		{Title: "Grilled Chicken", Category: "Nutrition", Source: SourceFood, Priority: PriorityLow, Confidence: 0.9, Summary: "Grilled chicken classified as healthy."},
		{Title: "Chips", Category: "Nutrition", Source: SourceFood, Priority: PriorityHigh, Confidence: 0.8, Summary: "Chips classified as junk."},
		{Title: "Retention", Category: "Hydration", Source: SourceWater, Priority: PriorityMedium, Confidence: 0.7, Summary: "Predicted moderate retention."},
	}

	ordered := g.Prioritize(insights)
	require.Len(t, ordered, 3)

	assert.Equal(t, []string{"Grilled Chicken"}, ordered[0].RelatedInsights)
	assert.Empty(t, ordered[1].RelatedInsights, "sole insight in its category has no references")
	assert.Equal(t, []string{"Chips"}, ordered[2].RelatedInsights)
}

func TestDedupeIgnoresDifferentCategories(t *testing.T) {
	g := NewGenerator()

	insights := []Insight{
		{Title: "A", Category: "Nutrition", Source: SourceFood, Priority: PriorityLow, Confidence: 0.7, Summary: "Same words."},
		{Title: "B", Category: "Hydration", Source: SourceWater, Priority: PriorityLow, Confidence: 0.7, Summary: "Same words."},
	}

	ordered := g.Prioritize(insights)
	assert.Len(t, ordered, 2, "identical summaries in different categories are not duplicates")
}
