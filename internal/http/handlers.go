package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/andreaessedj/analyzer/internal/domain"
)

type analyzeRequest struct {
	TrackID string `json:"track_id"`
}

type analyzeResponse struct {
	Status   string                `json:"status"`
	Feedback domain.FeedbackRecord `json:"feedback"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TrackID) == "" {
		writeError(w, http.StatusBadRequest, "track_id is required")
		return
	}

	rec, err := s.svc.Analyze(r.Context(), req.TrackID)
	if err != nil {
		status := statusFor(err)
		s.log.WithFields(logrus.Fields{
			"track_id": req.TrackID,
			"status":   status,
		}).WithError(err).Error("analysis failed")
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Status: "analyzed", Feedback: rec})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}
