package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"shellfish-ops/internal/core"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps a service error onto an HTTP status by its core.Kind.
// Internal errors are logged with the request ID and reported generically.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{RequestID: requestIDFromContext(r.Context())}

	var de *core.Error
	if !errors.As(err, &de) || de.Kind == core.KindInternal {
		log.Error().Err(err).
			Str("request_id", resp.RequestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		resp.Error = "internal server error"
		resp.Code = "INTERNAL_ERROR"
		writeErrorResponse(w, http.StatusInternalServerError, resp)
		return
	}

	resp.Error = de.Message
	resp.Fields = de.Fields
	status := http.StatusInternalServerError
	switch de.Kind {
	case core.KindValidation:
		status, resp.Code = http.StatusBadRequest, "VALIDATION_ERROR"
	case core.KindNotFound:
		status, resp.Code = http.StatusNotFound, "NOT_FOUND"
	case core.KindConflict:
		status, resp.Code = http.StatusConflict, "CONFLICT"
	case core.KindUnauthorized:
		status, resp.Code = http.StatusUnauthorized, "UNAUTHORIZED"
	case core.KindUnavailable:
		log.Warn().Err(err).Str("request_id", resp.RequestID).Msg("dependency unavailable")
		status, resp.Code = http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	writeErrorResponse(w, status, resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFile sends a generated document. inline controls whether browsers
// display it or download it.
func writeFile(w http.ResponseWriter, filename, contentType string, content []byte, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition+`; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
