// internal/analyzers/trend.go
package analyzers

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TrendType is the direction of a detected metric pattern.
type TrendType string

const (
	TrendIncreasing TrendType = "increasing"
	TrendDecreasing TrendType = "decreasing"
	TrendStable     TrendType = "stable"
	TrendCyclical   TrendType = "cyclical"
)

// CausalityLevel grades how plausibly one metric drives another.
type CausalityLevel string

const (
	CausalityLikely   CausalityLevel = "likely"
	CausalityPossible CausalityLevel = "possible"
	CausalityUnlikely CausalityLevel = "unlikely"
)

// TimeRange bounds a historical query, inclusive on both ends.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DataPoint is one dated observation of a metric.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Pattern is a detected trend in a single metric.
type Pattern struct {
	Metric      string    `json:"metric"`
	Type        TrendType `json:"type"`
	Confidence  float64   `json:"confidence"` // 0-1
	Slope       float64   `json:"slope"`      // per-day change
	Description string    `json:"description"`
}

// Correlation links two metrics that move together.
type Correlation struct {
	MetricA     string         `json:"metric_a"`
	MetricB     string         `json:"metric_b"`
	Strength    float64        `json:"strength"` // Pearson r, -1 to 1
	Lag         int            `json:"lag"`      // days by which A leads B
	Description string         `json:"description"`
	Causality   CausalityLevel `json:"causality"`
}

// Change is a detected shift of a metric away from its baseline.
type Change struct {
	Metric         string    `json:"metric"`
	ChangePoint    time.Time `json:"change_point"`
	Magnitude      float64   `json:"magnitude"` // fractional deviation from baseline
	Description    string    `json:"description"`
	PossibleCauses []string  `json:"possible_causes,omitempty"`
}

// TrendAnalysis is the combined time-series output.
type TrendAnalysis struct {
	Patterns     []Pattern     `json:"patterns"`
	Correlations []Correlation `json:"correlations"`
	Changes      []Change      `json:"changes"`
	Range        TimeRange     `json:"range"`
}

const (
	minPointsForPattern  = 7
	weakCorrelation      = 0.3
	strongCorrelation    = 0.7
	moderateCorrelation  = 0.4
	cycleAutocorrelation = 0.6
	maxCorrelationLag    = 3
)

// Metric pairs with a recognized physiological mechanism. Keyed as A->B
// where A plausibly drives B.
var knownCausalPairs = map[[2]string]CausalityLevel{
	{"habit_caffeine", "sleep_quality"}:  CausalityLikely,
	{"sodium", "water_retention"}:        CausalityLikely,
	{"water_intake", "water_retention"}:  CausalityLikely,
	{"sleep_quality", "habit_stress"}:    CausalityPossible,
	{"food_quality", "energy"}:           CausalityLikely,
}

// TrendAnalyzer detects patterns, correlations, and baseline shifts in
// historical metric series. All methods are pure over their inputs.
type TrendAnalyzer struct {
	changeThreshold float64
}

func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{changeThreshold: 0.3}
}

// AnalyzeTrends runs pattern, correlation, and change detection over all
// supplied metric histories. Metrics are processed in sorted name order so
// output ordering is deterministic.
func (ta *TrendAnalyzer) AnalyzeTrends(history map[string][]DataPoint, rng TimeRange) TrendAnalysis {
	metrics := make([]string, 0, len(history))
	for m := range history {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	analysis := TrendAnalysis{Range: rng}

	for _, metric := range metrics {
		points := sortByTime(history[metric])
		if p := ta.detectPattern(metric, points); p != nil {
			analysis.Patterns = append(analysis.Patterns, *p)
		}
		if c := ta.detectChange(metric, points, history); c != nil {
			analysis.Changes = append(analysis.Changes, *c)
		}
	}

	for i := 0; i < len(metrics); i++ {
		for j := i + 1; j < len(metrics); j++ {
			if c := ta.DetectCorrelation(metrics[i], history[metrics[i]], metrics[j], history[metrics[j]]); c != nil {
				analysis.Correlations = append(analysis.Correlations, *c)
			}
		}
	}

	return analysis
}

// detectPattern fits a least-squares line through the series. A slope small
// relative to the series spread reads as stable; stable series are further
// checked for cyclical repetition.
func (ta *TrendAnalyzer) detectPattern(metric string, points []DataPoint) *Pattern {
	if len(points) < minPointsForPattern {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	slope, r2 := linearFit(values)
	sd := stddev(values)

	confidence := r2
	if confidence < 0.5 {
		confidence = 0.5
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	if math.Abs(slope) < 0.1*sd || sd == 0 {
		if ac := maxAutocorrelation(values); ac > cycleAutocorrelation {
			return &Pattern{
				Metric:     metric,
				Type:       TrendCyclical,
				Confidence: clampConf(ac),
				Slope:      slope,
				Description: fmt.Sprintf(
					"%s repeats in a regular cycle over the observed period.", metric),
			}
		}
		return &Pattern{
			Metric:     metric,
			Type:       TrendStable,
			Confidence: 0.5,
			Slope:      slope,
			Description: fmt.Sprintf(
				"%s has remained stable over the observed period.", metric),
		}
	}

	t := TrendIncreasing
	word := "increased"
	if slope < 0 {
		t = TrendDecreasing
		word = "decreased"
	}
	return &Pattern{
		Metric:     metric,
		Type:       t,
		Confidence: confidence,
		Slope:      slope,
		Description: fmt.Sprintf(
			"%s has %s steadily, changing about %.2f per day.", metric, word, math.Abs(slope)),
	}
}

// DetectCorrelation finds the lag (0 to 3 days, A leading B) with the
// strongest Pearson correlation between two aligned series. Correlations
// weaker than |r| = 0.3 are discarded.
func (ta *TrendAnalyzer) DetectCorrelation(metricA string, seriesA []DataPoint, metricB string, seriesB []DataPoint) *Correlation {
	a := sortByTime(seriesA)
	b := sortByTime(seriesB)

	bestR := 0.0
	bestLag := 0
	for lag := 0; lag <= maxCorrelationLag; lag++ {
		va, vb := alignWithLag(a, b, lag)
		if len(va) < minPointsForPattern {
			continue
		}
		r := pearson(va, vb)
		if math.Abs(r) > math.Abs(bestR) {
			bestR = r
			bestLag = lag
		}
	}

	if math.Abs(bestR) < weakCorrelation {
		return nil
	}

	causality := ta.assessCausality(metricA, metricB, a, b, bestR, bestLag)

	direction := "rises"
	if bestR < 0 {
		direction = "falls"
	}
	lagText := "on the same day"
	if bestLag == 1 {
		lagText = "the following day"
	} else if bestLag > 1 {
		lagText = fmt.Sprintf("%d days later", bestLag)
	}

	return &Correlation{
		MetricA:  metricA,
		MetricB:  metricB,
		Strength: bestR,
		Lag:      bestLag,
		Description: fmt.Sprintf(
			"When %s increases, %s typically %s %s (r = %.2f).", metricA, metricB, direction, lagText, bestR),
		Causality: causality,
	}
}

func (ta *TrendAnalyzer) assessCausality(metricA, metricB string, a, b []DataPoint, r float64, lag int) CausalityLevel {
	if level, ok := knownCausalPairs[[2]string{metricA, metricB}]; ok {
		return level
	}
	if level, ok := knownCausalPairs[[2]string{metricB, metricA}]; ok {
		return level
	}

	// Without a known mechanism, demand both strength and consistency: the
	// correlation must keep its sign in each half of the series.
	if math.Abs(r) > strongCorrelation && consistentSign(a, b, lag) {
		return CausalityLikely
	}
	if math.Abs(r) > moderateCorrelation {
		return CausalityPossible
	}
	return CausalityUnlikely
}

func consistentSign(a, b []DataPoint, lag int) bool {
	va, vb := alignWithLag(a, b, lag)
	if len(va) < 4 {
		return false
	}
	mid := len(va) / 2
	r1 := pearson(va[:mid], vb[:mid])
	r2 := pearson(va[mid:], vb[mid:])
	return r1*r2 > 0
}

// detectChange compares the latest observation to the baseline of all prior
// points. Possible causes are other habit metrics that shifted in the same
// window.
func (ta *TrendAnalyzer) detectChange(metric string, points []DataPoint, history map[string][]DataPoint) *Change {
	if len(points) < minPointsForPattern {
		return nil
	}

	latest := points[len(points)-1]
	baseline := mean(valuesOf(points[:len(points)-1]))
	if baseline == 0 {
		return nil
	}

	deviation := (latest.Value - baseline) / math.Abs(baseline)
	if math.Abs(deviation) <= ta.changeThreshold {
		return nil
	}

	var causes []string
	causeMetrics := make([]string, 0, len(history))
	for m := range history {
		causeMetrics = append(causeMetrics, m)
	}
	sort.Strings(causeMetrics)
	for _, m := range causeMetrics {
		if m == metric || len(history[m]) < minPointsForPattern {
			continue
		}
		other := sortByTime(history[m])
		otherBase := mean(valuesOf(other[:len(other)-1]))
		if otherBase == 0 {
			continue
		}
		otherDev := (other[len(other)-1].Value - otherBase) / math.Abs(otherBase)
		if math.Abs(otherDev) > ta.changeThreshold {
			causes = append(causes, m)
		}
	}

	direction := "increased"
	if deviation < 0 {
		direction = "decreased"
	}
	return &Change{
		Metric:      metric,
		ChangePoint: latest.Timestamp,
		Magnitude:   deviation,
		Description: fmt.Sprintf(
			"%s %s by %.0f%% compared to its recent baseline.", metric, direction, math.Abs(deviation)*100),
		PossibleCauses: causes,
	}
}

func sortByTime(points []DataPoint) []DataPoint {
	out := make([]DataPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func valuesOf(points []DataPoint) []float64 {
	v := make([]float64, len(points))
	for i, p := range points {
		v[i] = p.Value
	}
	return v
}

// alignWithLag pairs a[i] with the b observation lag days after a[i]'s date.
func alignWithLag(a, b []DataPoint, lag int) ([]float64, []float64) {
	byDay := make(map[string]float64, len(b))
	for _, p := range b {
		byDay[p.Timestamp.Format("2006-01-02")] = p.Value
	}

	var va, vb []float64
	for _, p := range a {
		key := p.Timestamp.AddDate(0, 0, lag).Format("2006-01-02")
		if v, ok := byDay[key]; ok {
			va = append(va, p.Value)
			vb = append(vb, v)
		}
	}
	return va, vb
}

// linearFit returns the least-squares slope per index step and the R² of
// the fit.
func linearFit(values []float64) (slope, r2 float64) {
	n := float64(len(values))
	if n < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, v := range values {
		pred := intercept + slope*float64(i)
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - meanY) * (v - meanY)
	}
	if ssTot == 0 {
		return slope, 0
	}
	return slope, 1 - ssRes/ssTot
}

func pearson(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return 0
	}
	ma, mb := mean(a), mean(b)
	var cov, va, vb float64
	for i := 0; i < n; i++ {
		da := a[i] - ma
		db := b[i] - mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	return cov / math.Sqrt(va*vb)
}

// maxAutocorrelation scans lags 2 through len/2 for the strongest repeat.
func maxAutocorrelation(values []float64) float64 {
	best := 0.0
	for lag := 2; lag <= len(values)/2; lag++ {
		r := pearson(values[:len(values)-lag], values[lag:])
		if r > best {
			best = r
		}
	}
	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

func clampConf(v float64) float64 {
	if v < 0.5 {
		return 0.5
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
