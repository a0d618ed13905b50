package api

import (
	"net/http"
	"strings"
)

type gradeRequest struct {
	Name           string   `json:"name"`
	StrikeoutPct   *float64 `json:"strikeout_pct"`
	InningsPitched *float64 `json:"innings_pitched"`
	ERA            *float64 `json:"era"`
}

type tradeRequest struct {
	SideA  []string `json:"sideA"`
	SideB  []string `json:"sideB"`
	Season int      `json:"season"`
}

// handleGrade handles POST /api/grade, a stateless calculator.
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.StrikeoutPct == nil || req.InningsPitched == nil || req.ERA == nil {
		s.writeError(w, r, NewKind(ErrBadRequest, "strikeout_pct, innings_pitched and era are required"))
		return
	}
	report := s.deps.Grade(strings.TrimSpace(req.Name), *req.StrikeoutPct, *req.InningsPitched, *req.ERA)
	writeJSON(w, http.StatusOK, report)
}

// handleGradeScale handles GET /api/grade-scale.
func (s *Server) handleGradeScale(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.GradeScale())
}

// handleTrade handles POST /api/trade/evaluate.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Season != 0 && (req.Season < 1000 || req.Season > 9999) {
		s.writeError(w, r, NewKind(ErrBadRequest, "season must be a 4-digit year"))
		return
	}
	res, err := s.deps.EvaluateTrade(r.Context(), req.SideA, req.SideB, req.Season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
