package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dreamware/pokerd/internal/api"
	"github.com/dreamware/pokerd/internal/poker"
)

func requester(r *http.Request) string {
	return r.Header.Get(api.ParticipantHeader)
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	view, creator, err := s.coord.CreateSession(req.Name, req.CreatorName, req.CreatorAvatar)
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusCreated, api.Membership{
		Participant: api.NewParticipantInfo(creator),
		Session:     view,
	})
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.coord.GetSession(r.PathValue("id"), requester(r))
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusOK, view)
}

func (s *server) handleDestroySession(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.DestroySession(r.PathValue("id"), requester(r)); err != nil {
		api.ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req api.JoinRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	p, view, err := s.coord.Join(r.PathValue("id"), req.Name, req.Avatar)
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusCreated, api.Membership{
		Participant: api.NewParticipantInfo(p),
		Session:     view,
	})
}

// handleRemoveParticipant is a voluntary leave when participants remove
// themselves and an eviction otherwise.
func (s *server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, target := r.PathValue("id"), r.PathValue("pid")
	var err error
	if who := requester(r); who == target {
		err = s.coord.Leave(sessionID, target)
	} else {
		err = s.coord.Evict(sessionID, who, target)
	}
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req api.TransferRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	if err := s.coord.TransferFacilitator(r.PathValue("id"), requester(r), req.TargetID); err != nil {
		api.ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req api.StartRoundRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	round, err := s.coord.StartRound(r.PathValue("id"), requester(r), req.Topic)
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusCreated, round)
}

func (s *server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req api.VoteRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		if errors.Is(err, poker.ErrInvalidVoteValue) {
			api.ErrorResponse(w, err)
			return
		}
		api.BadRequest(w, err.Error())
		return
	}
	if err := s.coord.SubmitVote(r.PathValue("id"), requester(r), req.Value); err != nil {
		api.ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReveal(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coord.RevealVotes(r.PathValue("id"), requester(r))
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusOK, stats)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.ResetRound(r.PathValue("id"), requester(r)); err != nil {
		api.ErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req api.ReconcileRequest
	if err := api.ParseJSONBody(r, &req); err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	res, err := s.coord.Reconcile(r.PathValue("id"), requester(r), req.Version, req.Checksum)
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	api.JSONResponse(w, http.StatusOK, res)
}

func (s *server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	status := s.coord.Capacity()
	api.JSONResponse(w, http.StatusOK, api.CapacityResponse{
		CapacityStatus: status,
		Available:      status.Max - status.Active,
		Summary:        fmt.Sprintf("%d of %d sessions active", status.Active, status.Max),
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	api.JSONResponse(w, http.StatusOK, s.coord.Stats())
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.JSONResponse(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		StartedAt: s.started.UTC().Truncate(time.Second),
	})
}
