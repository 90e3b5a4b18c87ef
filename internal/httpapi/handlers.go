package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/logstore"
	"github.com/keywordscout/keywordscout/internal/niche"
)

// upgrader allows any localhost-class origin, matching the CORS posture
// of the teacher's read-only server (local-only by default).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

// handleHealth reports process liveness; spec.md §6 keeps this a
// dependency-free check (no niche/logstore round-trip) so it answers
// even while those subsystems are degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type optimizeRequest struct {
	Niche domain.Niche `json:"niche"`
}

type optimizeResponse struct {
	CycleID  string                  `json:"cycle_id"`
	Status   domain.AdjustmentStatus `json:"status"`
	RSquared float64                 `json:"r_squared"`
	MSE      float64                 `json:"mse"`
}

// handleOptimize runs one ParameterOptimizer cycle for the requested
// niche synchronously and reports the outcome.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if s.optimizer == nil {
		writeError(w, http.StatusServiceUnavailable, "optimizer_unavailable", "no optimizer configured")
		return
	}

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Niche == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "niche is required")
		return
	}

	result, err := s.optimizer.Run(r.Context(), req.Niche)
	if err != nil {
		if s.metrics != nil {
			s.metrics.OptimizerCycles.WithLabelValues(string(req.Niche), "error").Inc()
		}
		log.Error().Err(err).Str("niche", string(req.Niche)).Msg("optimizer cycle failed")
		writeError(w, http.StatusInternalServerError, "optimizer_error", err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.OptimizerCycles.WithLabelValues(string(req.Niche), string(result.Status)).Inc()
	}

	writeJSON(w, http.StatusOK, optimizeResponse{
		CycleID:  uuid.New().String(),
		Status:   result.Status,
		RSquared: result.RSquared,
		MSE:      result.MSE,
	})
}

// handleExperiments thin-passes the request body to the injected
// ExperimentRunner (spec.md §1 Non-goals: experiment internals are out
// of scope, the core only relays).
func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	if s.experiments == nil {
		writeError(w, http.StatusServiceUnavailable, "experiments_unavailable", "no experiment runner configured")
		return
	}

	var req ExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	result, err := s.experiments.RunExperiment(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "experiment_runner_error", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// handleFeedback thin-passes user feedback to the injected FeedbackIntake.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.feedback == nil {
		writeError(w, http.StatusServiceUnavailable, "feedback_unavailable", "no feedback intake configured")
		return
	}

	var fb Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	if err := s.feedback.Submit(r.Context(), fb); err != nil {
		writeError(w, http.StatusBadGateway, "feedback_intake_error", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleCacheStats reports the NicheConfig cache's own hit/miss counters
// (SPEC_FULL.md §6: the core owns this cache, so it owns the stats even
// though spec.md frames the endpoint as a collaborator surface).
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, niche.CacheStats{})
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

// handleAuditReport builds a QualityReport from the structured log and,
// when an AuditReporter collaborator is configured, lets it annotate the
// result before responding.
func (s *Server) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	if s.logger == nil {
		writeError(w, http.StatusServiceUnavailable, "logstore_unavailable", "no log store configured")
		return
	}

	q := r.URL.Query()
	filter := logstore.QueryFilter{}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		}
	}

	report, err := s.logger.QualityReport(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "report_failed", err.Error())
		return
	}

	byNiche := make(map[string]int, len(report.ByNiche))
	for n, c := range report.ByNiche {
		byNiche[string(n)] = c
	}
	out := AuditReport{
		Total:        report.Total,
		Approved:     report.Approved,
		Pending:      report.Pending,
		Rejected:     report.Rejected,
		ApprovalRate: report.ApprovalRate,
		InvalidLines: report.InvalidLines,
		ByNiche:      byNiche,
	}

	if s.auditor != nil {
		annotated, err := s.auditor.Annotate(r.Context(), out)
		if err != nil {
			log.Warn().Err(err).Msg("audit annotation failed, returning unannotated report")
		} else {
			out = annotated
		}
	}

	writeJSON(w, http.StatusOK, out)
}

// handleMonitoringDashboard returns the most recently published
// ProgressEvent as a plain JSON poll, for callers without a websocket
// client.
func (s *Server) handleMonitoringDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.Snapshot())
}

// handleMonitoringStream upgrades to a websocket and streams every
// ProgressEvent published to the Hub until the client disconnects
// (SPEC_FULL.md §6 enrichment over spec.md's plain polling endpoint).
func (s *Server) handleMonitoringStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no such route")
}
