package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/stockledger/internal/web/templates"
)

// handleDashboardPage renders the HTML overview.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	page := s.service.Overview()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(page).Render(r.Context(), w); err != nil {
		slog.Error("render dashboard", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard returns counters and low-stock alerts.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Dashboard())
}

// handleSales returns the sales aggregation.
func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Sales(r.URL.Query().Get("search")))
}

// handleExport downloads one view as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view := pathParam(r, "view")

	text, err := s.service.Export(view)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.service.ExportFilename(view)))
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("write export", "view", view, "error", err)
	}
}

// handleReset clears inventory and orders. Confirmation happens client side.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.Reset(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
