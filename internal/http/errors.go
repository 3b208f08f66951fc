// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fairyhunter13/vending-machine-service/internal/vending"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeEngineError translates the engine's typed errors to HTTP statuses:
// unknown product is 404, the remaining purchase failures and validation
// rejections are 400, anything unexpected is 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve *vending.ValidationError
	var fe *vending.InsufficientFundsError
	switch {
	case errors.Is(err, vending.ErrProductNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, vending.ErrOutOfStock):
		WriteJSONError(w, http.StatusBadRequest, "out_of_stock", err.Error())
	case errors.As(err, &fe):
		WriteJSONError(w, http.StatusBadRequest, "insufficient_amount",
			fmt.Sprintf("need %d stotinki more", fe.Shortfall()))
	case errors.Is(err, vending.ErrInsufficientReserve):
		WriteJSONError(w, http.StatusBadRequest, "not_enough_change", err.Error())
	case errors.As(err, &ve):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", ve.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
