// internal/insights/generator.go
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lifestyle-insights/internal/analyzers"
)

// SourceKind identifies which analyzer produced a result.
type SourceKind string

const (
	SourceFood     SourceKind = "food"
	SourceWater    SourceKind = "water"
	SourceSleep    SourceKind = "sleep"
	SourceBodyType SourceKind = "body_type"
	SourceTrend    SourceKind = "trend"
)

// Fixed presentation order used as the final sort tie-break.
var sourceOrder = map[SourceKind]int{
	SourceFood:     0,
	SourceWater:    1,
	SourceSleep:    2,
	SourceBodyType: 3,
	SourceTrend:    4,
}

// AnalysisResult is a tagged union: Source names the analyzer, and exactly
// one payload pointer is set.
type AnalysisResult struct {
	Source      SourceKind                     `json:"source"`
	Confidence  float64                        `json:"confidence"` // 0-1
	GeneratedAt time.Time                      `json:"generated_at"`
	Food        *analyzers.FoodClassification  `json:"food,omitempty"`
	Retention   *analyzers.RetentionPrediction `json:"retention,omitempty"`
	Sleep       *analyzers.SleepAnalysis       `json:"sleep,omitempty"`
	BodyType    *analyzers.BodyTypeInsight     `json:"body_type,omitempty"`
	Trend       *analyzers.TrendAnalysis       `json:"trend,omitempty"`
}

// InsightPriority ranks insights for presentation.
type InsightPriority int

const (
	PriorityLow InsightPriority = iota
	PriorityMedium
	PriorityHigh
)

func (p InsightPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Insight is a user-facing finding distilled from one analysis result.
type Insight struct {
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	Details         string          `json:"details"`
	Priority        InsightPriority `json:"priority"`
	Category        string          `json:"category"`
	Actionable      bool            `json:"actionable"`
	RelatedInsights []string        `json:"related_insights,omitempty"`
	Source          SourceKind      `json:"source"`
	Confidence      float64         `json:"confidence"`
}

var sourceTitles = map[SourceKind]string{
	SourceFood:     "Food Classification Insight",
	SourceWater:    "Water Retention Insight",
	SourceSleep:    "Sleep Quality Insight",
	SourceBodyType: "Body Type Insight",
	SourceTrend:    "Lifestyle Trend Insight",
}

var sourceCategories = map[SourceKind]string{
	SourceFood:     "Nutrition",
	SourceWater:    "Hydration",
	SourceSleep:    "Sleep & Recovery",
	SourceBodyType: "Metabolism",
	SourceTrend:    "Lifestyle Patterns",
}

// Generator turns analysis results into prioritized insights.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds one insight per analysis result. An empty input yields an
// empty output, never an error.
func (g *Generator) Generate(results []AnalysisResult) []Insight {
	insights := make([]Insight, 0, len(results))
	for _, r := range results {
		if in := g.fromResult(r); in != nil {
			insights = append(insights, *in)
		}
	}
	return insights
}

func (g *Generator) fromResult(r AnalysisResult) *Insight {
	base := Insight{
		Title:      sourceTitles[r.Source],
		Category:   sourceCategories[r.Source],
		Source:     r.Source,
		Confidence: r.Confidence,
	}

	switch r.Source {
	case SourceFood:
		if r.Food == nil {
			return nil
		}
		base.Summary = fmt.Sprintf("%s classified as %s.", r.Food.Food, r.Food.Category)
		base.Details = r.Food.Rationale
		base.Actionable = r.Food.Category != analyzers.CategoryHealthy
		base.Priority = g.prioritize(base, r.Food.Category == analyzers.CategoryJunk && r.Confidence >= 0.8)

	case SourceWater:
		if r.Retention == nil {
			return nil
		}
		base.Summary = fmt.Sprintf("Predicted %s water retention, driven mainly by %s.",
			r.Retention.Level, r.Retention.PrimaryFactor.Type)
		base.Details = r.Retention.Explanation
		base.Actionable = r.Retention.PrimaryFactor.Recommendation != ""
		severe := r.Retention.Level == analyzers.RetentionHigh || r.Retention.PrimaryFactor.Impact >= 3
		base.Priority = g.prioritize(base, severe)

	case SourceSleep:
		if r.Sleep == nil {
			return nil
		}
		base.Summary = fmt.Sprintf("Sleep quality assessed as %s.", r.Sleep.Quality)
		base.Details = r.Sleep.Explanation
		base.Actionable = len(r.Sleep.Recommendations) > 0
		severe := r.Sleep.Quality == analyzers.SleepPoor || hasStrongNegative(r.Sleep.Correlations)
		base.Priority = g.prioritize(base, severe)

	case SourceBodyType:
		if r.BodyType == nil {
			return nil
		}
		base.Summary = fmt.Sprintf("Personalized guidance for your %s profile.", r.BodyType.Classification)
		base.Details = r.BodyType.Explanation + " " + joinRecommendations(r.BodyType.Recommendations)
		base.Actionable = true
		base.Priority = g.prioritize(base, false)

	case SourceTrend:
		if r.Trend == nil {
			return nil
		}
		base.Summary = trendSummary(r.Trend)
		base.Details = trendDetails(r.Trend)
		base.Actionable = len(r.Trend.Changes) > 0 || len(r.Trend.Correlations) > 0
		base.Priority = g.prioritize(base, len(r.Trend.Changes) > 0)

	default:
		return nil
	}

	return &base
}

// prioritize applies the shared ranking rules: severe findings are high,
// actionable findings with reasonable confidence are medium, the rest low.
func (g *Generator) prioritize(in Insight, severe bool) InsightPriority {
	if severe {
		return PriorityHigh
	}
	if in.Actionable && in.Confidence >= 0.5 {
		return PriorityMedium
	}
	return PriorityLow
}

// Prioritize deduplicates near-identical insights and orders the remainder
// by priority, then confidence, then the fixed source order. The sort is
// stable so equal insights keep their input order.
func (g *Generator) Prioritize(insights []Insight) []Insight {
	deduped := g.dedupe(insights)

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return sourceOrder[a.Source] < sourceOrder[b.Source]
	})

	g.linkRelated(deduped)
	return deduped
}

// linkRelated cross-references insights that share a category, by title.
func (g *Generator) linkRelated(insights []Insight) {
	for i := range insights {
		insights[i].RelatedInsights = nil
		for j := range insights {
			if i == j || insights[j].Category != insights[i].Category {
				continue
			}
			insights[i].RelatedInsights = append(insights[i].RelatedInsights, insights[j].Title)
		}
	}
}

// dedupe drops an insight when an earlier-kept one in the same category has
// an equal or prefixed summary, keeping whichever carries higher confidence.
func (g *Generator) dedupe(insights []Insight) []Insight {
	var kept []Insight
	for _, in := range insights {
		replaced := false
		duplicate := false
		for k := range kept {
			if kept[k].Category != in.Category {
				continue
			}
			if summariesOverlap(kept[k].Summary, in.Summary) {
				duplicate = true
				if in.Confidence > kept[k].Confidence {
					kept[k] = in
					replaced = true
				}
				break
			}
		}
		if !duplicate && !replaced {
			kept = append(kept, in)
		}
	}
	return kept
}

func summariesOverlap(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	return na == nb || strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na)
}

func hasStrongNegative(correlations []analyzers.SleepCorrelation) bool {
	for _, c := range correlations {
		if c.Impact == analyzers.ImpactNegative && c.Strength >= 8 {
			return true
		}
	}
	return false
}

func joinRecommendations(recs []analyzers.BodyTypeRecommendation) string {
	parts := make([]string, 0, len(recs))
	for _, r := range recs {
		parts = append(parts, r.Suggestion)
	}
	return strings.Join(parts, " ")
}

func trendSummary(t *analyzers.TrendAnalysis) string {
	if len(t.Changes) > 0 {
		return t.Changes[0].Description
	}
	if len(t.Patterns) > 0 {
		return t.Patterns[0].Description
	}
	if len(t.Correlations) > 0 {
		return t.Correlations[0].Description
	}
	return "No notable lifestyle patterns detected in the observed period."
}

func trendDetails(t *analyzers.TrendAnalysis) string {
	var parts []string
	for _, p := range t.Patterns {
		parts = append(parts, p.Description)
	}
	for _, c := range t.Correlations {
		parts = append(parts, c.Description)
	}
	for _, ch := range t.Changes {
		line := ch.Description
		if len(ch.PossibleCauses) > 0 {
			line += fmt.Sprintf(" Possible related shifts: %s.", strings.Join(ch.PossibleCauses, ", "))
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return "The observed period showed no significant trends, correlations, or changes."
	}
	return strings.Join(parts, " ")
}
