package handler

import (
	"net/http"

	"github.com/dmitrymomot/memberboard/pkg/validator"
)

type errorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// Error responds with the given status and {"error": <msg>}.
func Error(status int, msg string) Response {
	return jsonResponse{
		status:  status,
		payload: errorBody{Error: msg},
	}
}

// ErrorWithDetails responds with the given status, message and a details map.
func ErrorWithDetails(status int, msg string, details map[string]any) Response {
	return jsonResponse{
		status:  status,
		payload: errorBody{Error: msg, Details: details},
	}
}

// DefaultErrorHandler maps binding and rendering errors to responses.
// Validation errors become 422 with per-field details; anything else is a
// generic 400 since binders only fail on malformed client input.
func DefaultErrorHandler(err error) Response {
	if verrs := validator.Extract(err); verrs != nil {
		details := make(map[string]any, len(verrs))
		for _, field := range verrs.Fields() {
			details[field] = verrs.Messages(field)
		}
		return ErrorWithDetails(http.StatusUnprocessableEntity, "validation failed", details)
	}
	return Error(http.StatusBadRequest, err.Error())
}
