// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lifestyle-insights/internal/analyzers"
	"lifestyle-insights/internal/insights"
	"lifestyle-insights/internal/models"
)

// HistoryFeed supplies historical metric series for trend analysis. A nil
// feed disables trend analysis without failing the pipeline.
type HistoryFeed interface {
	Fetch(ctx context.Context, userID, metric string, rng analyzers.TimeRange) ([]analyzers.DataPoint, error)
}

// Metrics fetched for trend analysis, in fixed order.
var trendMetrics = []string{
	"sodium",
	"water_intake",
	"sleep_quality",
	"calories",
	"habit_stress",
}

const defaultHistoryDays = 30

// Result is the combined pipeline output for one record.
type Result struct {
	Results  []insights.AnalysisResult     `json:"results"`
	Insights []insights.Insight            `json:"insights"`
	Content  []insights.EducationalContent `json:"content"`
}

// Pipeline coordinates the analyzers, insight generation, and educational
// rendering for a single lifestyle record.
type Pipeline struct {
	food           *analyzers.FoodClassifier
	retention      *analyzers.WaterRetentionPredictor
	sleep          *analyzers.SleepAnalyzer
	bodyType       *analyzers.BodyTypeAnalyzer
	trend          *analyzers.TrendAnalyzer
	generator      *insights.Generator
	engine         *insights.ContentEngine
	history        HistoryFeed
	historyTimeout time.Duration
	log            *logrus.Logger
}

// New builds a pipeline. history may be nil when no stored history exists.
func New(history HistoryFeed, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		food:           analyzers.NewFoodClassifier(),
		retention:      analyzers.NewWaterRetentionPredictor(),
		sleep:          analyzers.NewSleepAnalyzer(),
		bodyType:       analyzers.NewBodyTypeAnalyzer(),
		trend:          analyzers.NewTrendAnalyzer(),
		generator:      insights.NewGenerator(),
		engine:         insights.NewContentEngine(),
		history:        history,
		historyTimeout: 10 * time.Second,
		log:            log,
	}
}

// Run fans the analyzers out concurrently, joins their results in a fixed
// order, then generates, prioritizes, and renders insights. Analyzer
// validation errors for optional sections (sleep) skip that section;
// history feed failures abort with a system error.
func (p *Pipeline) Run(ctx context.Context, record models.LifestyleRecord, bodyType models.BodyTypeProfile) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	now := time.Now().UTC()

	var mu sync.Mutex
	foodResults := make([]insights.AnalysisResult, len(record.FoodItems))
	var retentionResult, sleepResult, bodyTypeResult, trendResult *insights.AnalysisResult

	for i := range record.FoodItems {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classification := p.food.Classify(record.FoodItems[i])
			foodResults[i] = insights.AnalysisResult{
				Source:      insights.SourceFood,
				Confidence:  classification.Confidence,
				GeneratedAt: now,
				Food:        &classification,
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		prediction := p.retention.Predict(record, bodyType)
		mu.Lock()
		retentionResult = &insights.AnalysisResult{
			Source:      insights.SourceWater,
			Confidence:  prediction.Confidence,
			GeneratedAt: now,
			Retention:   &prediction,
		}
		mu.Unlock()
		return nil
	})

	if record.Sleep != nil {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, err := p.sleep.Analyze(record.Sleep, record)
			if err != nil {
				return err
			}
			confidence := 0.70
			if len(analysis.Correlations) > 0 {
				confidence = 0.85
			}
			mu.Lock()
			sleepResult = &insights.AnalysisResult{
				Source:      insights.SourceSleep,
				Confidence:  confidence,
				GeneratedAt: now,
				Sleep:       &analysis,
			}
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		insight, err := p.bodyType.Analyze(bodyType, record)
		if err != nil {
			return err
		}
		mu.Lock()
		bodyTypeResult = &insights.AnalysisResult{
			Source:      insights.SourceBodyType,
			Confidence:  0.80,
			GeneratedAt: now,
			BodyType:    &insight,
		}
		mu.Unlock()
		return nil
	})

	if p.history != nil {
		g.Go(func() error {
			analysis, err := p.runTrends(gctx, record.UserID)
			if err != nil {
				return err
			}
			if analysis == nil {
				return nil
			}
			confidence := 0.60
			for _, pat := range analysis.Patterns {
				if pat.Confidence > confidence {
					confidence = pat.Confidence
				}
			}
			mu.Lock()
			trendResult = &insights.AnalysisResult{
				Source:      insights.SourceTrend,
				Confidence:  confidence,
				GeneratedAt: now,
				Trend:       analysis,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.log.WithError(err).Error("analysis pipeline failed")
		return Result{}, err
	}

	// Fixed join order keeps output deterministic regardless of which
	// goroutine finished first.
	results := make([]insights.AnalysisResult, 0, len(foodResults)+4)
	results = append(results, foodResults...)
	for _, r := range []*insights.AnalysisResult{retentionResult, sleepResult, bodyTypeResult, trendResult} {
		if r != nil {
			results = append(results, *r)
		}
	}

	generated := p.generator.Generate(results)
	prioritized := p.generator.Prioritize(generated)
	content := p.engine.TranslateAll(prioritized)

	p.log.WithFields(logrus.Fields{
		"user_id":  record.UserID,
		"results":  len(results),
		"insights": len(prioritized),
	}).Info("analysis complete")

	return Result{Results: results, Insights: prioritized, Content: content}, nil
}

// runTrends fetches the standard metric histories with a bounded timeout and
// runs trend detection. Feed failures surface as system errors.
func (p *Pipeline) runTrends(ctx context.Context, userID string) (*analyzers.TrendAnalysis, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.historyTimeout)
	defer cancel()

	end := time.Now().UTC()
	rng := analyzers.TimeRange{Start: end.AddDate(0, 0, -defaultHistoryDays), End: end}

	history := make(map[string][]analyzers.DataPoint, len(trendMetrics))
	total := 0
	for _, metric := range trendMetrics {
		points, err := p.history.Fetch(fetchCtx, userID, metric, rng)
		if err != nil {
			return nil, models.NewSystemError(
				"historical data is temporarily unavailable",
				"Try the analysis again shortly; today's record is unaffected.",
				err)
		}
		if len(points) > 0 {
			history[metric] = points
			total += len(points)
		}
	}

	if total == 0 {
		return nil, nil
	}

	analysis := p.trend.AnalyzeTrends(history, rng)
	return &analysis, nil
}
