package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/types"
)

var validate = validator.New()

// AnalyzeRequest represents the request body for /api/mcp/analyze
type AnalyzeRequest struct {
	ProfileData types.ProfileSnapshot `json:"profileData" validate:"required"`
	ModelID     string                `json:"modelId"`
}

// OptimizeRequest represents the request body for /api/mcp/optimize and its
// streaming variant.
type OptimizeRequest struct {
	SessionID   string                `json:"sessionId"`
	ProfileData types.ProfileSnapshot `json:"profileData" validate:"required"`
	Mode        types.Mode            `json:"mode" validate:"omitempty,oneof=manual auto"`
	ModelID     string                `json:"modelId"`
	Preferences map[string]string     `json:"preferences,omitempty"`
}

// ModelsResponse represents the response for /api/mcp/models
type ModelsResponse struct {
	Models []selection.ModelInfo `json:"models"`
}

// extractValidationErrors flattens validator output into one message.
func extractValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, e.Field()+" failed "+e.Tag()+" validation")
	}
	return strings.Join(parts, "; ")
}

// handleModels lists the catalog entries for configured providers.
func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, ModelsResponse{Models: s.service.ListModels()})
}

// handleAnalyze runs the synchronous analysis pipeline.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	result, err := s.service.Analyze(r.Context(), types.OptimizationRequest{
		Kind:     types.KindAnalyze,
		Profile:  req.ProfileData,
		ModelID:  defaultModelID(req.ModelID),
		Identity: clientIdentity(r),
	})
	if err != nil {
		s.logger.Warn("analysis failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptimize runs the synchronous optimization pipeline.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeOptimizeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.Optimize(r.Context(), req)
	if err != nil {
		s.logger.Warn("optimization failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptimizeStream starts a streaming session and relays its progress
// events over SSE until a terminal state.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeOptimizeRequest(w, r)
	if !ok {
		return
	}

	events, err := s.service.StartStreaming(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var sessionID string
	for ev := range events {
		sessionID = ev.SessionID
		if err := sse.WriteProgress(ev); err != nil {
			// Consumer gone; the pipeline notices via the request context.
			return
		}
	}

	snap, err := s.service.PollStatus(sessionID)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	switch {
	case snap.Error != "":
		sse.WriteError(snap.Error)
	default:
		sse.WriteComplete(snap)
	}
}

// handleStatus reports the current state of a session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sessionId")
	snap, err := s.service.PollStatus(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) decodeOptimizeRequest(w http.ResponseWriter, r *http.Request) (types.OptimizationRequest, bool) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return types.OptimizationRequest{}, false
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return types.OptimizationRequest{}, false
	}

	mode := req.Mode
	if mode == "" {
		mode = types.ModeAuto
	}

	return types.OptimizationRequest{
		SessionID:   req.SessionID,
		Kind:        types.KindOptimize,
		Profile:     req.ProfileData,
		Mode:        mode,
		ModelID:     defaultModelID(req.ModelID),
		Preferences: req.Preferences,
		Identity:    clientIdentity(r),
	}, true
}

func defaultModelID(id string) string {
	if id == "" {
		return selection.ModelIDAuto
	}
	return id
}
