package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// ReportDependencies defines the interface for rendering the text report.
type ReportDependencies interface {
	WriteReport(ctx context.Context, w io.Writer) error
}

// ReportHandler serves the plain text report.
type ReportHandler struct {
	deps     ReportDependencies
	notReady error
}

// NewReportHandler creates a new report handler. Errors matching notReady
// are answered with 503.
func NewReportHandler(deps ReportDependencies, notReady error) *ReportHandler {
	return &ReportHandler{deps: deps, notReady: notReady}
}

// HandleGetReport handles GET /report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Buffered so a failed render never leaves a half written 200.
	var buf bytes.Buffer
	if err := h.deps.WriteReport(r.Context(), &buf); err != nil {
		if h.notReady != nil && errors.Is(err, h.notReady) {
			writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
