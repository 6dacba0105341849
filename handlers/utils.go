package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/models"
)

const maxBodyBytes = 1 << 20

type APIHandler struct {
	Lib      *library.Library
	Sessions *auth.Sessions
}

func NewAPIHandler(lib *library.Library, sessions *auth.Sessions) *APIHandler {
	return &APIHandler{Lib: lib, Sessions: sessions}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps err onto its status code. Internal errors are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if kind == apperr.Internal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: apperr.Message(err),
	})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Wrap(apperr.InvalidInput, "Request body too large", err)
		case errors.Is(err, io.EOF):
			return apperr.Invalid("Request body is empty")
		default:
			return apperr.Wrap(apperr.InvalidInput, "Could not decode request", err)
		}
	}
	return nil
}
