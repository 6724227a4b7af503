package handler

import (
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status  int
	payload any
}

// Render writes the payload as JSON with the configured status code.
func (jr jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(jr.status)
	return json.NewEncoder(w).Encode(jr.payload)
}

// Message responds 200 with {"message": <text>}.
func Message(text string) Response {
	return jsonResponse{
		status:  http.StatusOK,
		payload: map[string]string{"message": text},
	}
}

// MessageWithStatus responds with the given status and {"message": <text>}.
func MessageWithStatus(status int, text string) Response {
	return jsonResponse{
		status:  status,
		payload: map[string]string{"message": text},
	}
}

// JSON responds 200 with {"data": <v>}.
func JSON(v any) Response {
	return jsonResponse{
		status:  http.StatusOK,
		payload: map[string]any{"data": v},
	}
}

// JSONWithStatus responds with the given status and {"data": <v>}.
func JSONWithStatus(status int, v any) Response {
	return jsonResponse{
		status:  status,
		payload: map[string]any{"data": v},
	}
}

// NoContent responds 204 with an empty body.
func NoContent() Response {
	return noContentResponse{}
}

type noContentResponse struct{}

func (noContentResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}
