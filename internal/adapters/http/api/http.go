// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/tiewatch/internal/domain/classify"
	"github.com/okian/tiewatch/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Read operations expose the latest successful analysis run.
	Analyses(ctx context.Context) []model.Analysis
	Analysis(ctx context.Context, id model.GroupID) (model.Analysis, error)
	Names() classify.NameMap

	// WriteReport renders the text report. It fails before the first run.
	WriteReport(ctx context.Context, w io.Writer) error
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	groupsHandler *GroupsHandler
	reportHandler *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, notReady error) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		groupsHandler: NewGroupsHandler(deps),
		reportHandler: NewReportHandler(deps, notReady),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
	mux.HandleFunc("/groups", MetricsMiddleware(s.groupsHandler.HandleListGroups, "groups"))
	mux.HandleFunc("/groups/", MetricsMiddleware(s.groupsHandler.HandleGetGroup, "group"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
