package api

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var seasonPattern = regexp.MustCompile(`^\d{4}$`)

// optionalSeason reads ?season=YYYY; absent yields 0.
func optionalSeason(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("season"))
	if raw == "" {
		return 0, nil
	}
	if !seasonPattern.MatchString(raw) {
		return 0, NewKind(ErrBadRequest, "season must be a 4-digit year")
	}
	season, _ := strconv.Atoi(raw)
	return season, nil
}

// handleSearch handles GET /api/search-pitcher?season=YYYY&name=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	season, err := optionalSeason(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hits, err := s.deps.SearchPitchers(r.Context(), season, r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// handlePlayerYears handles GET /api/get-player-years?fangraph_id=X.
func (s *Server) handlePlayerYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.deps.PlayerYears(r.Context(), r.URL.Query().Get("fangraph_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}
