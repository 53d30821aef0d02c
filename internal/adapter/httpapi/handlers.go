package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// assessmentResponse wraps an assessment with its optional narrative.
type assessmentResponse struct {
	domain.RiskAssessment
	Explanation string `json:"explanation,omitempty"`
}

func (s *Server) handleNeighborhoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"neighborhoods": s.store.All(),
	})
}

// handleRisk assesses one neighborhood against its current forecast.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("neighborhood_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "neighborhood_id is required")
		return
	}

	profile, _, err := s.store.Get(id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.assessWithForecast(w, r, profile)
}

// handleRiskNearby assesses the neighborhood closest to a coordinate.
func (s *Server) handleRiskNearby(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r, "lat", -90, 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := parseCoord(r, "lon", -180, 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, km, err := s.store.Nearest(lat, lon)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.logger.DebugContext(r.Context(), "nearest neighborhood resolved",
		"neighborhood_id", profile.ID,
		"distance_km", km,
	)
	s.assessWithForecast(w, r, profile)
}

// assessWithForecast fetches the forecast for a profile's coordinates and
// completes the assessment flow.
func (s *Server) assessWithForecast(w http.ResponseWriter, r *http.Request, profile domain.NeighborhoodProfile) {
	snapshot, err := s.weather.Forecast(r.Context(), profile.Lat, profile.Lon)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "forecast retrieval failed",
			"error", err,
			"neighborhood_id", profile.ID,
		)
		writeError(w, http.StatusBadGateway, "weather provider unavailable")
		return
	}
	s.completeAssessment(w, r, profile.ID, snapshot)
}

// assessRequest is the POST /api/v1/assess body: an explicit snapshot skips
// forecast retrieval, letting operators score hypothetical conditions.
type assessRequest struct {
	NeighborhoodID string                 `json:"neighborhood_id"`
	Weather        domain.WeatherSnapshot `json:"weather"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.NeighborhoodID == "" {
		writeError(w, http.StatusBadRequest, "neighborhood_id is required")
		return
	}
	s.completeAssessment(w, r, req.NeighborhoodID, req.Weather)
}

// completeAssessment runs the engine, attaches the explanation, publishes, and
// writes the response.
func (s *Server) completeAssessment(w http.ResponseWriter, r *http.Request, id string, snapshot domain.WeatherSnapshot) {
	ctx := r.Context()

	assessment, err := s.assessor.Assess(ctx, id, snapshot)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := assessmentResponse{RiskAssessment: assessment}
	if s.explainer != nil {
		text, err := s.explainer.Explain(ctx, assessment)
		if err != nil {
			// The assessment stands on its own; log and move on.
			s.logger.WarnContext(ctx, "explanation generation failed",
				"error", err,
				"neighborhood_id", id,
			)
		} else {
			resp.Explanation = text
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, assessment); err != nil {
			s.logger.ErrorContext(ctx, "assessment publish failed",
				"error", err,
				"neighborhood_id", id,
			)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "assessment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseCoord(r *http.Request, name string, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
