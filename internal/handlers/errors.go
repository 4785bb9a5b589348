package handlers

import "net/http"

// ErrMessageInternal is the body of every 500; the cause is only logged.
const ErrMessageInternal = "internal server error"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorBody{Error: message})
}

// JSONValidationError also lists per-field reasons under "fields".
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	writeJSON(w, status, errorBody{Error: message, Fields: fields})
}
