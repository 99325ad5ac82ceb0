// internal/insights/educational_test.go
package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var forbiddenTerms = []string{
	"diagnosis", "diagnose", "treatment", "treat", "cure",
	"disease", "disorder", "condition", "prescribe", "medication",
}

func TestEnsureNonMedicalReplacesEveryTerm(t *testing.T) {
	ce := NewContentEngine()

	input := "The diagnosis suggests a treatment to treat and cure this disease, disorder, or condition; we prescribe medication and diagnose early."
	output := ce.EnsureNonMedical(input)

	lower := strings.ToLower(output)
	for _, term := range forbiddenTerms {
		words := strings.FieldsFunc(lower, func(r rune) bool {
			return !('a' <= r && r <= 'z')
		})
		for _, w := range words {
			assert.NotEqual(t, term, w, "forbidden term %q survived sanitization: %s", term, output)
		}
	}
}

func TestEnsureNonMedicalIdempotent(t *testing.T) {
	ce := NewContentEngine()

	input := "A diagnosis may require treatment or medication for this condition."
	once := ce.EnsureNonMedical(input)
	twice := ce.EnsureNonMedical(once)
	assert.Equal(t, once, twice)
}

func TestEnsureNonMedicalPreservesCase(t *testing.T) {
	ce := NewContentEngine()

	assert.Equal(t, "Observation pending", ce.EnsureNonMedical("Diagnosis pending"))
	assert.Equal(t, "my observation", ce.EnsureNonMedical("my diagnosis"))
}

func TestEnsureNonMedicalLeavesCleanTextAlone(t *testing.T) {
	ce := NewContentEngine()

	input := "High sodium intake is associated with temporary water retention."
	assert.Equal(t, input, ce.EnsureNonMedical(input))
}

func TestTranslateAlwaysSetsDisclaimer(t *testing.T) {
	ce := NewContentEngine()

	content := ce.Translate(Insight{
		Title:    "Water Retention Insight",
		Category: "Hydration",
		Summary:  "Predicted high water retention, driven mainly by sodium.",
		Details:  "High sodium intake increases water retention.",
		Source:   SourceWater,
	})

	assert.Equal(t, StandardDisclaimer, content.Disclaimer)
	assert.NotEmpty(t, content.MainMessage)
	assert.NotEmpty(t, content.Explanation)
}

func TestTranslateExtractsCauseEffect(t *testing.T) {
	ce := NewContentEngine()

	content := ce.Translate(Insight{
		Category: "Hydration",
		Summary:  "Predicted high water retention.",
		Details:  "High sodium intake drives water retention.",
		Source:   SourceWater,
	})

	require.NotEmpty(t, content.CauseEffect)
	assert.Equal(t, ConfidenceWellEstablished, content.CauseEffect[0].Confidence)
	assert.Contains(t, content.CauseEffect[0].Cause, "sodium")
	assert.NotEmpty(t, content.CauseEffect[0].Mechanism)
}

func TestTranslateFallbackCauseEffect(t *testing.T) {
	ce := NewContentEngine()

	// Nothing keyword-matchable still yields at least one pair.
	content := ce.Translate(Insight{
		Category: "Metabolism",
		Summary:  "Personalized guidance for your mesomorph profile.",
		Details:  "Balanced macros suit your profile.",
		Source:   SourceBodyType,
	})

	require.NotEmpty(t, content.CauseEffect)
	assert.NotEmpty(t, content.CauseEffect[0].Cause)
	assert.NotEmpty(t, content.CauseEffect[0].Effect)
	assert.NotEmpty(t, content.CauseEffect[0].Mechanism)
}

func TestTranslateHealthConcernAppendsConsultation(t *testing.T) {
	ce := NewContentEngine()

	content := ce.Translate(Insight{
		Category: "Sleep & Recovery",
		Summary:  "Sleep quality assessed as poor.",
		Details:  "User notes mention persistent pain during the night.",
		Source:   SourceSleep,
	})

	assert.Contains(t, content.Explanation, "healthcare professional")
}

func TestTranslateSanitizesAllFields(t *testing.T) {
	ce := NewContentEngine()

	content := ce.Translate(Insight{
		Category: "Nutrition",
		Summary:  "This diagnosis is clear.",
		Details:  "The treatment for this condition is dietary.",
		Source:   SourceFood,
	})

	combined := strings.ToLower(content.MainMessage + " " + content.Explanation)
	assert.NotContains(t, combined, "diagnosis")
	assert.NotContains(t, combined, "treatment")
}

func TestTranslateAllPreservesOrder(t *testing.T) {
	ce := NewContentEngine()

	insights := []Insight{
		{Category: "Nutrition", Summary: "first", Details: "a", Source: SourceFood},
		{Category: "Hydration", Summary: "second", Details: "b", Source: SourceWater},
	}

	contents := ce.TranslateAll(insights)
	require.Len(t, contents, 2)
	assert.Equal(t, "first", contents[0].MainMessage)
	assert.Equal(t, "second", contents[1].MainMessage)
}
