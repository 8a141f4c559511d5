package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dreamware/pokerd/internal/poker"
)

// maxBodyBytes bounds request bodies; every request type is tiny.
const maxBodyBytes = 64 << 10

// JSONResponse writes data as a JSON response with the given status.
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes the error envelope for err, choosing the status
// from StatusFor.
func ErrorResponse(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: poker.Code(err), Message: err.Error()}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		body.Message = http.StatusText(status)
	}
	JSONResponse(w, status, body)
}

// BadRequest writes a 400 envelope for a malformed request.
func BadRequest(w http.ResponseWriter, message string) {
	JSONResponse(w, http.StatusBadRequest, ErrorBody{Error: CodeBadRequest, Message: message})
}

// CodeBadRequest tags requests the server could not decode.
const CodeBadRequest = "bad_request"

// ParseJSONBody decodes the request body into v, rejecting unknown fields
// and oversized bodies.
func ParseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, poker.ErrCapacityExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, poker.ErrSessionNotFound), errors.Is(err, poker.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, poker.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, poker.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, poker.ErrSessionFull),
		errors.Is(err, poker.ErrNoActiveRound),
		errors.Is(err, poker.ErrAlreadyVoting),
		errors.Is(err, poker.ErrAlreadyRevealed),
		errors.Is(err, poker.ErrSessionPaused):
		return http.StatusConflict
	case errors.Is(err, poker.ErrInvalidVoteValue),
		errors.Is(err, poker.ErrInvalidTransferTarget),
		errors.Is(err, poker.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection over for the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// WithLogging wraps a handler with request logging.
func WithLogging(log *slog.Logger, next http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
