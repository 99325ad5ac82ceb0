// internal/insights/educational.go
package insights

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfidenceLevel grades how well a cause-effect relationship is supported
// by general wellness knowledge.
type ConfidenceLevel string

const (
	ConfidenceWellEstablished ConfidenceLevel = "well_established"
	ConfidenceSupported       ConfidenceLevel = "supported"
	ConfidenceTheoretical     ConfidenceLevel = "theoretical"
)

// CauseEffectPair is one plain-language habit-to-outcome relationship. All
// three text fields are always non-empty.
type CauseEffectPair struct {
	Cause      string          `json:"cause"`
	Effect     string          `json:"effect"`
	Mechanism  string          `json:"mechanism"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// EducationalContent is the safety-filtered, user-facing rendering of an
// insight. The disclaimer is always present.
type EducationalContent struct {
	MainMessage string            `json:"main_message"`
	Explanation string            `json:"explanation"`
	CauseEffect []CauseEffectPair `json:"cause_effect"`
	Disclaimer  string            `json:"disclaimer"`
}

// StandardDisclaimer accompanies every piece of educational content.
const StandardDisclaimer = "This insight is generated by an educational tool for habit awareness, not a medical device. It is not medical advice. For health concerns, please consult a qualified healthcare professional."

// medicalTerm pairs a forbidden term with its wellness-language replacement.
// The slice is ordered so longer terms are replaced before their prefixes
// (diagnosis before diagnose, treatment before treat).
type medicalTerm struct {
	pattern     *regexp.Regexp
	replacement string
}

var medicalTerms = []medicalTerm{
	{regexp.MustCompile(`(?i)\bdiagnosis\b`), "observation"},
	{regexp.MustCompile(`(?i)\bdiagnose\b`), "observe"},
	{regexp.MustCompile(`(?i)\btreatment\b`), "approach"},
	{regexp.MustCompile(`(?i)\btreat\b`), "address"},
	{regexp.MustCompile(`(?i)\bcure\b`), "improve"},
	{regexp.MustCompile(`(?i)\bdisease\b`), "pattern"},
	{regexp.MustCompile(`(?i)\bdisorder\b`), "pattern"},
	{regexp.MustCompile(`(?i)\bcondition\b`), "pattern"},
	{regexp.MustCompile(`(?i)\bprescribe\b`), "suggest"},
	{regexp.MustCompile(`(?i)\bmedication\b`), "supplement"},
}

// Phrases that suggest the user may be describing a health concern rather
// than a lifestyle pattern.
var healthConcernIndicators = []string{
	"pain", "chronic", "severe", "persistent", "symptom",
	"bleeding", "dizziness", "numbness", "swelling",
}

var wellnessContext = map[string]string{
	"Nutrition":          "Food choices shape how your body processes energy, stores water, and sustains focus through the day.",
	"Hydration":          "Fluid balance responds to what you eat and drink; small, consistent adjustments usually matter more than large one-off changes.",
	"Sleep & Recovery":   "Sleep is when your body consolidates the day's effort; the habits in the hours before bed have an outsized influence on it.",
	"Metabolism":         "Everyone's metabolism has its own tendencies; working with those tendencies tends to be more sustainable than working against them.",
	"Lifestyle Patterns": "Patterns across weeks reveal more than any single day; trends are a nudge to observe, not a verdict.",
}

// ContentEngine renders insights as safe, educational wellness content.
type ContentEngine struct{}

func NewContentEngine() *ContentEngine {
	return &ContentEngine{}
}

// Translate converts a prioritized insight into educational content with the
// standard disclaimer, sanitized wording, and at least one cause-effect pair.
func (ce *ContentEngine) Translate(insight Insight) EducationalContent {
	main := insight.Summary
	explanation := insight.Details

	if ctx, ok := wellnessContext[insight.Category]; ok {
		explanation = explanation + " " + ctx
	}

	pairs := ce.causeEffect(insight)

	if ce.mentionsHealthConcern(main + " " + explanation) {
		explanation += " If you are noticing ongoing physical discomfort, that is worth discussing with a healthcare professional rather than interpreting through lifestyle data alone."
	}

	content := EducationalContent{
		MainMessage: ce.EnsureNonMedical(main),
		Explanation: ce.EnsureNonMedical(explanation),
		CauseEffect: pairs,
		Disclaimer:  StandardDisclaimer,
	}
	for i := range content.CauseEffect {
		content.CauseEffect[i].Cause = ce.EnsureNonMedical(content.CauseEffect[i].Cause)
		content.CauseEffect[i].Effect = ce.EnsureNonMedical(content.CauseEffect[i].Effect)
		content.CauseEffect[i].Mechanism = ce.EnsureNonMedical(content.CauseEffect[i].Mechanism)
	}
	return content
}

// TranslateAll renders every insight, preserving order.
func (ce *ContentEngine) TranslateAll(insights []Insight) []EducationalContent {
	out := make([]EducationalContent, 0, len(insights))
	for _, in := range insights {
		out = append(out, ce.Translate(in))
	}
	return out
}

// EnsureNonMedical replaces clinical terms with wellness language. Applying
// it to already-sanitized text changes nothing.
func (ce *ContentEngine) EnsureNonMedical(text string) string {
	for _, term := range medicalTerms {
		text = term.pattern.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, term.replacement)
		})
	}
	return text
}

// matchCase carries the original capitalization onto the replacement.
func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if original == strings.ToUpper(original) && len(original) > 1 {
		return strings.ToUpper(replacement)
	}
	first := original[0]
	if first >= 'A' && first <= 'Z' {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}

func (ce *ContentEngine) mentionsHealthConcern(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range healthConcernIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// causeEffect extracts at least one habit-to-outcome pair from the insight's
// wording, falling back to a general pair for the category.
func (ce *ContentEngine) causeEffect(insight Insight) []CauseEffectPair {
	text := strings.ToLower(insight.Summary + " " + insight.Details)
	var pairs []CauseEffectPair

	if strings.Contains(text, "sodium") && strings.Contains(text, "retention") {
		pairs = append(pairs, CauseEffectPair{
			Cause:      "Higher sodium intake",
			Effect:     "Noticeable water retention in the following day or two.",
			Mechanism:  "The body holds extra water to keep sodium concentration in the blood stable.",
			Confidence: ConfidenceWellEstablished,
		})
	}
	if strings.Contains(text, "caffeine") && strings.Contains(text, "sleep") {
		pairs = append(pairs, CauseEffectPair{
			Cause:      "Caffeine in the hours before bed",
			Effect:     "Delayed sleep onset and lighter sleep overall.",
			Mechanism:  "Caffeine blocks the adenosine signal that builds sleep pressure through the day.",
			Confidence: ConfidenceWellEstablished,
		})
	}
	if strings.Contains(text, "stress") && (strings.Contains(text, "sleep") || strings.Contains(text, "retention")) {
		pairs = append(pairs, CauseEffectPair{
			Cause:      "Elevated stress during the day",
			Effect:     "Restless sleep and shifts in fluid balance.",
			Mechanism:  "Stress hormones stay elevated into the evening, keeping the body in an alert state.",
			Confidence: ConfidenceSupported,
		})
	}
	if strings.Contains(text, "water intake") && strings.Contains(text, "retention") {
		pairs = append(pairs, CauseEffectPair{
			Cause:      "Drinking too little water",
			Effect:     "Counterintuitively, more water retention rather than less.",
			Mechanism:  "The body compensates for low intake by holding on to the water it already has.",
			Confidence: ConfidenceWellEstablished,
		})
	}

	if len(pairs) == 0 {
		pairs = append(pairs, generalPair(insight.Category))
	}
	return pairs
}

func generalPair(category string) CauseEffectPair {
	switch category {
	case "Nutrition":
		return CauseEffectPair{
			Cause:      "The composition of what you eat",
			Effect:     "Steadier energy and better recovery through the day.",
			Mechanism:  "Nutrient-dense, minimally processed foods release energy gradually instead of in spikes.",
			Confidence: ConfidenceSupported,
		}
	case "Hydration":
		return CauseEffectPair{
			Cause:      "Daily fluid intake patterns",
			Effect:     "More stable fluid balance through the day.",
			Mechanism:  "Consistent intake lets the body regulate water without compensating swings.",
			Confidence: ConfidenceSupported,
		}
	case "Sleep & Recovery":
		return CauseEffectPair{
			Cause:      "Evening habits and daily routine",
			Effect:     "How quickly you fall asleep and how restorative the night is.",
			Mechanism:  "The hours before bed set the hormonal and mental state the night starts from.",
			Confidence: ConfidenceSupported,
		}
	case "Metabolism":
		return CauseEffectPair{
			Cause:      "Matching eating patterns to your body type",
			Effect:     "Guidance that is easier to sustain day to day.",
			Mechanism:  "Working with your metabolic tendencies takes less willpower than working against them.",
			Confidence: ConfidenceTheoretical,
		}
	default:
		return CauseEffectPair{
			Cause:      "Day-to-day lifestyle choices",
			Effect:     "The longer-term patterns visible in your data.",
			Mechanism:  "Small, repeated habits accumulate; trends surface what single days hide.",
			Confidence: ConfidenceSupported,
		}
	}
}

// FormatForDisplay renders one content block as plain text, used by the
// server layer for tool responses.
func FormatForDisplay(content EducationalContent) string {
	var b strings.Builder
	b.WriteString(content.MainMessage)
	b.WriteString("\n\n")
	b.WriteString(content.Explanation)
	b.WriteString("\n")
	for _, pair := range content.CauseEffect {
		b.WriteString(fmt.Sprintf("\n- %s: %s %s", pair.Cause, pair.Effect, pair.Mechanism))
	}
	b.WriteString("\n\n")
	b.WriteString(content.Disclaimer)
	return b.String()
}
