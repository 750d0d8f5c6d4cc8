package controllers

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/export"
	"github.com/drstein77/ordercalc/internal/metrics"
	"github.com/drstein77/ordercalc/internal/models"
)

const dateLayout = "2006-01-02"

type cartTotalsResponse struct {
	models.Totals
	Unknown []string `json:"unknown,omitempty"`
}

type deleteOrdersRequest struct {
	Dates []time.Time `json:"dates"`
}

type deleteOrdersResponse struct {
	Deleted int `json:"deleted"`
}

func (h *BaseController) postCartTotals(w http.ResponseWriter, r *http.Request) {
	var cart models.Cart
	if err := decodeJSON(r, &cart); err != nil {
		h.badRequest(w, "invalid cart: "+err.Error())
		return
	}

	totals, unknown := h.storage.CartTotals(r.Context(), cart.Items)
	h.writeJSON(w, http.StatusOK, cartTotalsResponse{Totals: totals, Unknown: unknown})
}

func (h *BaseController) postOrder(w http.ResponseWriter, r *http.Request) {
	var cart models.Cart
	if err := decodeJSON(r, &cart); err != nil {
		h.badRequest(w, "invalid cart: "+err.Error())
		return
	}

	order, err := h.storage.SaveOrder(r.Context(), cart.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, order)
}

// parseRange reads the optional start and end calendar dates.
func (h *BaseController) parseRange(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	parse := func(name string) (*time.Time, error) {
		raw := q.Get(name)
		if raw == "" {
			return nil, nil
		}
		d, err := time.ParseInLocation(dateLayout, raw, h.storage.Location())
		if err != nil {
			return nil, fmt.Errorf("%s must be a date like 2024-01-31", name)
		}
		return &d, nil
	}

	if start, err = parse("start"); err != nil {
		return nil, nil, err
	}
	if end, err = parse("end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func (h *BaseController) getOrders(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.storage.History(r.Context(), start, end))
}

func (h *BaseController) getOrder(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "date"))
	if err != nil {
		h.badRequest(w, "invalid order date")
		return
	}
	date, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		h.badRequest(w, "order date must be an RFC 3339 timestamp")
		return
	}

	details, err := h.storage.Order(r.Context(), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, details)
}

func (h *BaseController) getLastOrder(w http.ResponseWriter, r *http.Request) {
	cart, err := h.storage.LastOrder(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cart)
}

func (h *BaseController) deleteOrders(w http.ResponseWriter, r *http.Request) {
	var req deleteOrdersRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "invalid request: "+err.Error())
		return
	}
	if len(req.Dates) == 0 {
		h.badRequest(w, "no orders selected")
		return
	}

	deleted, err := h.storage.DeleteOrders(r.Context(), req.Dates)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deleteOrdersResponse{Deleted: deleted})
}

func (h *BaseController) exportOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		h.badRequest(w, "please select a start and end date first")
		return
	}
	start, end, err := h.parseRange(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	orders := h.storage.History(r.Context(), start, end)
	if len(orders) == 0 {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no filtered data to download"})
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	products := h.storage.Products(r.Context())
	loc := h.storage.Location()

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = export.HistoryCSV(&buf, orders, products, loc)
	case "pdf":
		contentType = "application/pdf"
		err = export.HistoryPDF(&buf, orders, products, loc, q.Get("start"), q.Get("end"))
	case "png":
		contentType = "image/png"
		err = export.HistoryPNG(&buf, orders, loc, *start, *end)
	default:
		h.badRequest(w, "format must be csv, pdf or png")
		return
	}
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to generate %s: %w", format, err))
		return
	}

	metrics.ExportsTotal.WithLabelValues("history", format).Inc()
	h.log.Info("History exported", zap.String("format", format), zap.Int("orders", len(orders)))

	fileName := fmt.Sprintf("History_%s_to_%s.%s", q.Get("start"), q.Get("end"), format)
	writeAttachment(w, contentType, fileName, buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, fileName string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
