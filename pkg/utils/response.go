package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the body of every non-2xx JSON response.
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessBody acknowledges writes that return no data.
type SuccessBody struct {
	Success bool `json:"success"`
}

// DataBody wraps lookup results.
type DataBody[T any] struct {
	Data T `json:"data"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "status", status, "error", err)
	}
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// RespondInvalidBody reports a request body that is not valid JSON.
func RespondInvalidBody(w http.ResponseWriter) {
	RespondError(w, http.StatusBadRequest, "invalid request body")
}

// RespondMissingField reports the first required field absent from a request.
func RespondMissingField(w http.ResponseWriter, field string) {
	RespondError(w, http.StatusBadRequest, "Missing required field: "+field)
}

func RespondSuccess(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, SuccessBody{Success: true})
}

// RespondData writes {"data": data} with 200.
func RespondData[T any](w http.ResponseWriter, data T) {
	RespondJSON(w, http.StatusOK, DataBody[T]{Data: data})
}
