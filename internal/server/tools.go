// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"lifestyle-insights/internal/analyzers"
	"lifestyle-insights/internal/models"
)

type LogRecordParams struct {
	Record models.LifestyleRecord `json:"record" description:"The lifestyle record to store"`
}

type AnalyzeRecordParams struct {
	Record   models.LifestyleRecord `json:"record" description:"The lifestyle record to analyze"`
	BodyType models.BodyTypeProfile `json:"body_type" description:"The user's body type profile"`
	Persist  bool                   `json:"persist,omitempty" description:"Whether to store the record and insights"`
}

type GetInsightsParams struct {
	UserID string `json:"user_id" description:"User whose stored insights to return"`
}

type GetTrendsParams struct {
	UserID string `json:"user_id" description:"User whose history to analyze"`
	Days   int    `json:"days,omitempty" description:"How many days of history to analyze (defaults to 30)"`
}

type ExportUserDataParams struct {
	UserID  string `json:"user_id" description:"User whose data to export"`
	Encrypt bool   `json:"encrypt,omitempty" description:"Whether to encrypt the export bundle"`
}

type DeleteUserDataParams struct {
	UserID string `json:"user_id" description:"User whose data to delete"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// handleLogRecord validates, sanitizes, and stores a lifestyle record.
func (s *InsightServer) handleLogRecord(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogRecordParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Record.Timestamp.IsZero() {
		params.Record.Timestamp = time.Now().UTC()
	}

	validation := s.validator.Validate(params.Record)
	if !validation.Valid {
		return s.createJSONResponse(validation)
	}

	record := s.validator.Sanitize(params.Record)
	if err := s.storage.SaveRecord(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	return s.createJSONResponse(record)
}

// handleAnalyzeRecord runs the full analysis pipeline on a record.
func (s *InsightServer) handleAnalyzeRecord(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeRecordParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Record.Timestamp.IsZero() {
		params.Record.Timestamp = time.Now().UTC()
	}

	validation := s.validator.Validate(params.Record)
	if !validation.Valid {
		return s.createJSONResponse(validation)
	}

	record := s.validator.Sanitize(params.Record)
	result, err := s.pipeline.Run(ctx, record, params.BodyType)
	if err != nil {
		var analysisErr *models.Error
		if asAnalysisError(err, &analysisErr) {
			return s.createJSONResponse(map[string]interface{}{
				"error":      analysisErr,
				"suggestion": analysisErr.Suggestion,
			})
		}
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if params.Persist {
		if err := s.storage.SaveRecord(ctx, &record); err != nil {
			return nil, fmt.Errorf("failed to save record: %w", err)
		}
		if err := s.storage.SaveInsights(ctx, record.UserID, result.Insights); err != nil {
			return nil, fmt.Errorf("failed to save insights: %w", err)
		}
	}

	return s.createJSONResponse(result)
}

// handleGetInsights returns a user's stored insights.
func (s *InsightServer) handleGetInsights(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetInsightsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	stored, err := s.storage.InsightsForUser(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve insights: %w", err)
	}

	return s.createJSONResponse(stored)
}

// handleGetTrends runs trend analysis over a user's stored history.
func (s *InsightServer) handleGetTrends(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetTrendsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if params.Days <= 0 {
		params.Days = s.config.HistoryDays
	}

	end := time.Now().UTC()
	rng := analyzers.TimeRange{Start: end.AddDate(0, 0, -params.Days), End: end}

	metrics := []string{"sodium", "water_intake", "sleep_quality", "calories", "habit_stress"}
	history := make(map[string][]analyzers.DataPoint, len(metrics))
	for _, metric := range metrics {
		points, err := s.storage.Fetch(ctx, params.UserID, metric, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for %s: %w", metric, err)
		}
		if len(points) > 0 {
			history[metric] = points
		}
	}

	analyzer := analyzers.NewTrendAnalyzer()
	analysis := analyzer.AnalyzeTrends(history, rng)
	return s.createJSONResponse(analysis)
}

// handleExportUserData bundles everything stored for a user, optionally
// encrypted.
func (s *InsightServer) handleExportUserData(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ExportUserDataParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	export, err := s.privacy.ExportUserData(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to export user data: %w", err)
	}

	if params.Encrypt {
		encrypted, err := s.privacy.Encrypt(export)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt export: %w", err)
		}
		return s.createJSONResponse(encrypted)
	}

	return s.createJSONResponse(export)
}

// handleDeleteUserData removes all stored data for a user.
func (s *InsightServer) handleDeleteUserData(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteUserDataParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	confirmation, err := s.privacy.DeleteUserData(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user data: %w", err)
	}

	return s.createJSONResponse(confirmation)
}

func asAnalysisError(err error, target **models.Error) bool {
	for err != nil {
		if e, ok := err.(*models.Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Register all tools - handled manually in the HTTP handler, so this just
// validates that every handler exists.
func (s *InsightServer) registerTools() error {
	tools := map[string]func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error){
		"log_record":       s.handleLogRecord,
		"analyze_record":   s.handleAnalyzeRecord,
		"get_insights":     s.handleGetInsights,
		"get_trends":       s.handleGetTrends,
		"export_user_data": s.handleExportUserData,
		"delete_user_data": s.handleDeleteUserData,
	}

	for name := range tools {
		s.log.WithField("tool", name).Debug("registered tool")
	}

	return nil
}
