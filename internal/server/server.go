// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/sirupsen/logrus"

	"lifestyle-insights/internal/config"
	"lifestyle-insights/internal/pipeline"
	"lifestyle-insights/internal/privacy"
	"lifestyle-insights/internal/storage"
	"lifestyle-insights/internal/validator"
)

type InsightServer struct {
	server     *server.Server
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	pipeline   *pipeline.Pipeline
	validator  *validator.Validator
	privacy    *privacy.Controller
	config     *config.Config
	log        *logrus.Logger
}

func NewInsightServer(cfg *config.Config) (*InsightServer, error) {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var key []byte
	if cfg.EncryptionKey != "" {
		key = []byte(cfg.EncryptionKey)
	}
	privacyCtrl, err := privacy.NewController(key, stor)
	if err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to initialize privacy controller: %w", err)
	}

	insightServer := &InsightServer{
		storage:   stor,
		pipeline:  pipeline.New(stor, log),
		validator: validator.New(),
		privacy:   privacyCtrl,
		config:    cfg,
		log:       log,
	}

	mux := http.NewServeMux()

	// MCP server without a transport; HTTP is handled manually.
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "lifestyle-insights",
			Version: "1.0.0",
		}),
	)
	if err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	insightServer.server = mcpServer

	if err := insightServer.registerTools(); err != nil {
		stor.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	mux.HandleFunc("/", insightServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	insightServer.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return insightServer, nil
}

func (s *InsightServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "log_record":
		result, err = s.handleLogRecord(r.Context(), &request)
	case "analyze_record":
		result, err = s.handleAnalyzeRecord(r.Context(), &request)
	case "get_insights":
		result, err = s.handleGetInsights(r.Context(), &request)
	case "get_trends":
		result, err = s.handleGetTrends(r.Context(), &request)
	case "export_user_data":
		result, err = s.handleExportUserData(r.Context(), &request)
	case "delete_user_data":
		result, err = s.handleDeleteUserData(r.Context(), &request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		s.log.WithError(err).WithField("tool", request.Name).Error("tool call failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *InsightServer) Start(ctx context.Context) error {
	s.log.WithField("addr", s.httpServer.Addr).Info("starting lifestyle insights server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *InsightServer) Stop() error {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *InsightServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
