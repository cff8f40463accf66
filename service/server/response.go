package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mevlab/dexsim/service/frontrun"
	"github.com/mevlab/dexsim/service/mempool"
)

// Machine-checkable error kinds in error payloads.
const (
	errKindValidation  = "validation"
	errKindNotFound    = "not_found"
	errKindThreshold   = "threshold_not_met"
	errKindUnsupported = "unsupported_strategy"
	errKindLegFailed   = "leg_failed"
	errKindBadRequest  = "bad_request"
	errKindInternal    = "internal"
)

// writeJSON writes data as a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a structured JSON error with a human-readable message
// and a machine-checkable kind.
func writeError(w http.ResponseWriter, kind, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"kind":  kind,
	})
}

// writeDomainError maps an error from the simulation packages onto the HTTP
// error taxonomy. Unrecognized errors become an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *mempool.ValidationError
	var le *frontrun.LegError

	switch {
	case errors.As(err, &ve):
		writeError(w, errKindValidation, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, mempool.ErrNotFound):
		writeError(w, errKindNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, frontrun.ErrThresholdNotMet):
		writeError(w, errKindThreshold, err.Error(), http.StatusConflict)
	case errors.Is(err, frontrun.ErrUnsupportedStrategy):
		writeError(w, errKindUnsupported, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &le):
		writeError(w, errKindLegFailed, le.Error(), http.StatusInternalServerError)
	default:
		writeError(w, errKindInternal, "internal server error", http.StatusInternalServerError)
	}
}
