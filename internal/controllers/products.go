package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/drstein77/ordercalc/internal/models"
)

func (h *BaseController) getCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Catalog(r.Context(), r.URL.Query().Get("q")))
}

func (h *BaseController) getProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Products(r.Context()))
}

func (h *BaseController) getFrequentProducts(w http.ResponseWriter, r *http.Request) {
	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.badRequest(w, "window must be a positive integer")
			return
		}
		window = n
	}
	h.writeJSON(w, http.StatusOK, h.storage.FrequentProducts(r.Context(), window))
}

func (h *BaseController) postProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		h.badRequest(w, "invalid product: "+err.Error())
		return
	}

	created, err := h.storage.AddProduct(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *BaseController) putProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		h.badRequest(w, "invalid product: "+err.Error())
		return
	}
	p.ID = chi.URLParam(r, "id")

	updated, err := h.storage.UpdateProduct(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *BaseController) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
