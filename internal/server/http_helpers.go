package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"uno-server/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Every engine failure is recoverable and user-facing.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrOutOfTurn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrIllegalMove):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrDeckEmpty):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrPrecondition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
