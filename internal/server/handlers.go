package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/types"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 64 << 10

// GenerateRequest represents the request body for /api/generate
type GenerateRequest struct {
	Keyword string `json:"keyword" validate:"required,max=200"`
}

// RegenerateRequest represents the request body for /api/regenerate
type RegenerateRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	GenerationID int64  `json:"generation_id" validate:"gte=0"`
	Rating       string `json:"rating" validate:"omitempty,oneof=good bad"`
	Feedback     string `json:"feedback" validate:"max=5000"`
}

// HistoryResponse represents the response for /api/history
type HistoryResponse struct {
	History []types.KeywordHistory `json:"history"`
}

// handleStatus returns the global generation status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.status.Snapshot())
}

// handleHistory returns past sessions grouped by keyword
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.service.History(r.Context())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if history == nil {
		history = []types.KeywordHistory{}
	}
	s.jsonResponse(w, http.StatusOK, HistoryResponse{History: history})
}

// handleGetSession returns a session's latest generation
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	result, err := s.service.Load(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerate runs the full pipeline for a keyword and returns v1.
// The request blocks until the article is saved; clients poll /api/status meanwhile.
// A client that disconnects does not stop the run; the session is still saved.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.service.Generate(context.WithoutCancel(r.Context()), req.Keyword)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, result)
}

// handleRegenerate records feedback on the displayed generation and produces the next version.
// Like generate, it runs to completion even if the client goes away.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.service.Regenerate(context.WithoutCancel(r.Context()), generation.RegenerateRequest{
		SessionID:    req.SessionID,
		GenerationID: req.GenerationID,
		Rating:       req.Rating,
		Feedback:     req.Feedback,
	})
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, result)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorFromErr(w, validationError(err))
		return false
	}
	return true
}
