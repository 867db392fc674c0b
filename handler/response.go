package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ad-funnel-gate/model"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

// SendJSONError sends a JSON error response
func SendJSONError(w http.ResponseWriter, statusCode int, err error, message string) {
	SendJSONSuccess(w, statusCode, model.ErrorResponse{
		Error:   err.Error(),
		Message: message,
	})
}

// SendJSONErrorWithSuggestions answers a short code conflict with free alternatives
func SendJSONErrorWithSuggestions(w http.ResponseWriter, statusCode int, err error, suggestions []string) {
	if suggestions == nil {
		suggestions = []string{}
	}
	SendJSONSuccess(w, statusCode, model.CodeConflictResponse{
		Error:       err.Error(),
		Suggestions: suggestions,
	})
}

// SendJSONSuccess sends a JSON success response
func SendJSONSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		SendJSONError(w, http.StatusBadRequest, errBadBody, err.Error())
		return false
	}
	return true
}
