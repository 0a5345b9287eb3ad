package server

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/desertthunder/reelx/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a user-facing message.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: shared.UserMessage(err)}
	status := http.StatusInternalServerError

	var valErr *shared.ValidationError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		body.Field = valErr.Field
	case errors.Is(err, shared.ErrEmptyQuery),
		errors.Is(err, shared.ErrInvalidPage),
		errors.Is(err, shared.ErrInvalidFilter),
		errors.Is(err, shared.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrAuthFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrMovieMissing):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrNetwork), errors.Is(err, shared.ErrAPIRequest):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, body)
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &shared.ValidationError{Message: "Request body must be a JSON object"}
	}
	return nil
}
