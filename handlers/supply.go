package handlers

import (
	"net/http"
	"strconv"

	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const msgInvalidSupplyID = "Invalid supply ID!"

// SupplyHandler handles the supply CRUD routes. Every route sits behind
// AuthMiddleware and acts only on the caller's own supplies.
type SupplyHandler struct {
	requestLogger
	supplies service.SupplyService
}

// NewSupplyHandler creates a SupplyHandler.
func NewSupplyHandler(supplies service.SupplyService, log *zap.Logger) *SupplyHandler {
	return &SupplyHandler{
		requestLogger: requestLogger{log: log},
		supplies:      supplies,
	}
}

// List handles GET /supply.
func (h *SupplyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	supplies, err := h.supplies.List(r.Context(), claims.ID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logRequest(r, "debug", "Supplies retrieved", zap.Int("count", len(supplies)))
	writeJSON(w, http.StatusOK, supplies)
}

// Create handles POST /supply/create.
func (h *SupplyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req models.SupplyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.supplies.Create(r.Context(), claims.ID, req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logRequest(r, "info", "Supply created", zap.String("name", req.Name))
	writeStatus(w, http.StatusCreated, "Supply Created!")
}

// Update handles PUT /supply/update/{id}.
func (h *SupplyHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	id, ok := h.supplyID(w, r)
	if !ok {
		return
	}

	var req models.SupplyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.supplies.Update(r.Context(), claims.ID, id, req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logRequest(r, "info", "Supply updated", zap.Int64("supply_id", id))
	writeStatus(w, http.StatusOK, "Supply Updated!")
}

// Delete handles DELETE /supply/delete/{id}.
func (h *SupplyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	id, ok := h.supplyID(w, r)
	if !ok {
		return
	}

	if err := h.supplies.Delete(r.Context(), claims.ID, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logRequest(r, "info", "Supply deleted", zap.Int64("supply_id", id))
	writeStatus(w, http.StatusOK, "Supply Deleted!")
}

func (h *SupplyHandler) supplyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logRequest(r, "error", "Invalid supply ID", zap.String("id", idStr))
		writeError(w, http.StatusBadRequest, msgInvalidSupplyID)
		return 0, false
	}
	return id, true
}
