package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drstein77/ordercalc/internal/metrics"
	"github.com/drstein77/ordercalc/internal/models"
)

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *BaseController) getBackup(w http.ResponseWriter, r *http.Request) {
	body, err := json.MarshalIndent(h.storage.ExportBackup(r.Context()), "", "  ")
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to encode backup: %w", err))
		return
	}

	metrics.ExportsTotal.WithLabelValues("backup", "json").Inc()
	fileName := "Backup_" + h.now().In(h.storage.Location()).Format(dateLayout) + ".json"
	writeAttachment(w, "application/json", fileName, body)
}

func (h *BaseController) postBackup(w http.ResponseWriter, r *http.Request) {
	var backup models.Backup
	if err := decodeJSON(r, &backup); err != nil {
		h.badRequest(w, "invalid backup file: "+err.Error())
		return
	}

	if err := h.storage.ImportBackup(r.Context(), backup); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BaseController) getTheme(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, themeBody{Theme: h.storage.Theme(r.Context())})
}

func (h *BaseController) putTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decodeJSON(r, &body); err != nil {
		h.badRequest(w, "invalid theme: "+err.Error())
		return
	}

	if err := h.storage.SetTheme(r.Context(), body.Theme); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, body)
}
