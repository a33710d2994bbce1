package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
)

type errorBody struct {
	Error string `json:"error"`
}

// Error maps the engine's error kinds to status codes. Anything it does not
// recognise is a 500.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, bracket.ErrInvalidInput):
		BadRequest(w, msg, err)
	case errors.Is(err, bracket.ErrNotFound):
		NotFound(w, msg, err)
	case errors.Is(err, bracket.ErrIllegalState):
		Conflict(w, msg, err)
	default:
		InternalServerError(w, msg, err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: detail(msg, err)})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: detail(msg, err)})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteJSON(w, http.StatusConflict, errorBody{Error: detail(msg, err)})
}

func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
}

func detail(msg string, err error) string {
	if err == nil {
		return msg
	}
	return msg + ": " + err.Error()
}
