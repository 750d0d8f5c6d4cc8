package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/drstein77/ordercalc/internal/export"
	"github.com/drstein77/ordercalc/internal/metrics"
)

// currentMonth is the month of now in the store location.
func (h *BaseController) currentMonth() (int, int) {
	now := h.now().In(h.storage.Location())
	return now.Year(), int(now.Month())
}

// parseMonth reads YYYY-MM, defaulting to the current month.
func (h *BaseController) parseMonth(r *http.Request) (int, int, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		year, month := h.currentMonth()
		return year, month, nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, fmt.Errorf("month must look like 2024-01")
	}
	return t.Year(), int(t.Month()), nil
}

func (h *BaseController) getAnalytics(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseMonth(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.storage.MonthlyAnalytics(r.Context(), year, month))
}

func (h *BaseController) exportAnalytics(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseMonth(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	report := h.storage.MonthlyAnalytics(r.Context(), year, month)
	if report.Orders == 0 {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no data found for the selected month"})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "pdf":
		contentType = "application/pdf"
		err = export.AnalyticsPDF(&buf, report)
	case "png":
		contentType = "image/png"
		err = export.DailySalesPNG(&buf, report.DailySales)
	default:
		h.badRequest(w, "format must be pdf or png")
		return
	}
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to generate %s: %w", format, err))
		return
	}

	metrics.ExportsTotal.WithLabelValues("analytics", format).Inc()
	writeAttachment(w, contentType, fmt.Sprintf("Analytics_%04d-%02d.%s", year, month, format), buf.Bytes())
}
