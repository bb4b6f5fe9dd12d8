package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/nutrimenu/internal/apperr"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier receives a change event after every successful write.
type Notifier interface {
	Publish(entity, action string, id int64, extra map[string]any)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err's kind onto a status code. Errors without a kind are
// logged and reported with fallback so internals do not leak.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
	case apperr.KindInvalid:
		status = http.StatusBadRequest
	default:
		if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			// client went away; nobody reads the response
			return
		}
	}
	if status >= 500 {
		logger.ErrorContext(r.Context(), fallback, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err, fallback)})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return parsePathID(r, "id")
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parsePage reads zero-based ?page= and ?size= into a limit and offset.
func parsePage(r *http.Request) (limit, offset int, ok bool) {
	page, size := 0, defaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		page = n
	}
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		size = min(n, maxPageSize)
	}
	return size, page * size, true
}
