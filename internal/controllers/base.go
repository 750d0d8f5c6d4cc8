package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drstein77/ordercalc/internal/middleware"
	"github.com/drstein77/ordercalc/internal/models"
	"github.com/drstein77/ordercalc/internal/storage"
)

// Storage is what the handlers need from the store.
type Storage interface {
	Products(context.Context) []models.Product
	Catalog(context.Context, string) models.CatalogView
	FrequentProducts(context.Context, int) []models.Product
	AddProduct(context.Context, models.Product) (models.Product, error)
	UpdateProduct(context.Context, models.Product) (models.Product, error)
	DeleteProduct(context.Context, string) error

	CartTotals(context.Context, []models.CartEntry) (models.Totals, []string)
	SaveOrder(context.Context, []models.CartEntry) (models.Order, error)
	History(ctx context.Context, start, end *time.Time) []models.Order
	Order(context.Context, time.Time) (models.OrderDetails, error)
	LastOrder(context.Context) (models.Cart, error)
	DeleteOrders(context.Context, []time.Time) (int, error)
	MonthlyAnalytics(ctx context.Context, year, month int) models.AnalyticsReport

	ExportBackup(context.Context) models.Backup
	ImportBackup(context.Context, models.Backup) error
	Theme(context.Context) string
	SetTheme(context.Context, string) error

	Location() *time.Location
	Ping(context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zapcore.Field)
	Error(string, ...zapcore.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	storage Storage
	log     Log
	now     func() time.Time
}

// NewBaseController creates a new BaseController instance
func NewBaseController(storage Storage, log Log) *BaseController {
	return &BaseController{
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api/v0", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Get("/catalog", h.getCatalog)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.getProducts)
			r.Post("/", h.postProduct)
			r.Get("/frequent", h.getFrequentProducts)
			r.Put("/{id}", h.putProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		r.Post("/cart/totals", h.postCartTotals)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.getOrders)
			r.Post("/", h.postOrder)
			r.Delete("/", h.deleteOrders)
			r.Get("/last", h.getLastOrder)
			r.With(middleware.ArchiveResponseMiddleware).Get("/export", h.exportOrders)
			r.Get("/{date}", h.getOrder)
		})

		r.Get("/analytics", h.getAnalytics)
		r.Get("/analytics/export", h.exportAnalytics)

		r.With(middleware.ArchiveResponseMiddleware).Get("/backup", h.getBackup)
		r.With(middleware.ArchiveRequestMiddleware(".json")).Post("/backup", h.postBackup)

		r.Get("/settings/theme", h.getTheme)
		r.Put("/settings/theme", h.putTheme)
	})

	return r
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		http.Error(w, "store is unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *BaseController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *BaseController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrEmptyOrder):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrInvalidProduct),
		errors.Is(err, storage.ErrInvalidBackup),
		errors.Is(err, storage.ErrInvalidTheme):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *BaseController) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
