package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/pokerd/internal/poker"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{poker.ErrCapacityExceeded, http.StatusServiceUnavailable},
		{poker.ErrSessionNotFound, http.StatusNotFound},
		{poker.ErrParticipantNotFound, http.StatusNotFound},
		{poker.ErrSessionExpired, http.StatusGone},
		{poker.ErrSessionFull, http.StatusConflict},
		{poker.ErrForbidden, http.StatusForbidden},
		{poker.ErrNoActiveRound, http.StatusConflict},
		{poker.ErrAlreadyVoting, http.StatusConflict},
		{poker.ErrAlreadyRevealed, http.StatusConflict},
		{poker.ErrSessionPaused, http.StatusConflict},
		{poker.ErrInvalidVoteValue, http.StatusBadRequest},
		{poker.ErrInvalidTransferTarget, http.StatusBadRequest},
		{poker.ErrInvalidName, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", poker.ErrSessionFull), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, fmt.Errorf("%w: 3 of 3 sessions active", poker.ErrCapacityExceeded))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, poker.CodeCapacityExceeded, body.Error)
	assert.Contains(t, body.Message, "3 of 3")
}

func TestErrorResponseHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, errors.New("pointer soup"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, poker.CodeInternal, body.Error)
	assert.NotContains(t, body.Message, "pointer soup")
}

func TestParseJSONBody(t *testing.T) {
	var req VoteRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"13"}`))
	require.NoError(t, ParseJSONBody(r, &req))
	assert.Equal(t, poker.Card13, req.Value)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":5,"extra":true}`))
	assert.Error(t, ParseJSONBody(r, &req), "unknown fields are rejected")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":`))
	assert.Error(t, ParseJSONBody(r, &req))
}

func TestWithLoggingPreservesResponse(t *testing.T) {
	handler := WithLogging(slog.New(slog.DiscardHandler), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tea", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			var req JoinRequest
			if err := ParseJSONBody(r, &req); err != nil {
				BadRequest(w, err.Error())
				return
			}
			JSONResponse(w, http.StatusCreated, ParticipantInfo{ID: "p1", Name: req.Name})
		case "/status":
			JSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
		default:
			ErrorResponse(w, poker.ErrSessionNotFound)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	var info ParticipantInfo
	require.NoError(t, PostJSON(ctx, srv.URL+"/echo", JoinRequest{Name: "Ada"}, &info))
	assert.Equal(t, ParticipantInfo{ID: "p1", Name: "Ada"}, info)

	var status StatusResponse
	require.NoError(t, GetJSON(ctx, srv.URL+"/status", &status))
	assert.Equal(t, "ok", status.Status)

	err := GetJSON(ctx, srv.URL+"/nowhere", &status)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.StatusCode)
	assert.Equal(t, poker.CodeSessionNotFound, remote.Body.Error)
	assert.Contains(t, err.Error(), "session_not_found")

	require.NoError(t, PostJSON(ctx, srv.URL+"/echo", JoinRequest{Name: "Bob"}, nil))
}
