// Package handlers contains the HTTP handlers and middleware for the
// account and supply routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gengocodes/gensupply-backend/models"
	"github.com/gengocodes/gensupply-backend/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

const msgInvalidJSON = "Invalid JSON"

// requestLogger is shared by every handler so request logs carry the same
// route, method and path fields.
type requestLogger struct {
	log *zap.Logger
}

func (l requestLogger) logRequest(r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := ""
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}, fields...)

	if claims, ok := ClaimsFromContext(r.Context()); ok {
		allFields = append(allFields, zap.Int64("user_id", claims.ID))
	}

	switch level {
	case "info":
		l.log.Info(message, allFields...)
	case "error":
		l.log.Error(message, allFields...)
	case "debug":
		l.log.Debug(message, allFields...)
	}
}

// respondServiceError maps a service failure to its status code and writes
// the {Error} payload. Internal causes are logged, never returned.
func (l requestLogger) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		l.logRequest(r, "error", "Unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	status := statusForKind(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		l.logRequest(r, "error", svcErr.Message, zap.Stringer("kind", svcErr.Kind), zap.Error(svcErr.Err))
	} else {
		l.logRequest(r, "info", svcErr.Message, zap.Stringer("kind", svcErr.Kind), zap.NamedError("reason", svcErr.Err))
	}
	writeError(w, status, svcErr.Message)
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into dst. On failure it writes the
// 400 response itself and returns false.
func (l requestLogger) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		l.logRequest(r, "error", "Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.StatusResponse{Status: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
