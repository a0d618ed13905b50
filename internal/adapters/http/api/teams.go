package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/rostr/internal/app"
	"github.com/okian/rostr/internal/auth"
)

type createTeamRequest struct {
	TeamName string `json:"team_name"`
}

type addPlayerRequest struct {
	PlayerName string     `json:"player_name"`
	MLBID      flexString `json:"mlbid"`
	IDFG       flexString `json:"idfg"`
	Position   string     `json:"position"`
	Season     int        `json:"season"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// handleCreateTeam handles POST /api/teams.
func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.deps.CreateTeam(r.Context(), auth.SubjectFromContext(r.Context()), req.TeamName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleListTeams handles GET /api/users/{userID}/teams.
func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.deps.TeamsByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// handleDeleteTeam handles DELETE /api/teams/{teamID}.
func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	if err := s.deps.DeleteTeam(r.Context(), auth.SubjectFromContext(r.Context()), teamID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted team " + teamID})
}

// handleListPlayers handles GET /api/teams/{teamID}/players.
func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.deps.Players(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// handleAddPlayer handles POST /api/teams/{teamID}/players.
func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.deps.AddPlayer(r.Context(), auth.SubjectFromContext(r.Context()), chi.URLParam(r, "teamID"), service.NewPlayer{
		Name:     req.PlayerName,
		MLBID:    string(req.MLBID),
		IDFG:     string(req.IDFG),
		Position: req.Position,
		Season:   req.Season,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleRemovePlayer handles DELETE /api/teams/{teamID}/players/{playerName}.
func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "playerName")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	err := s.deps.RemovePlayer(r.Context(), auth.SubjectFromContext(r.Context()), chi.URLParam(r, "teamID"), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Removed player " + name})
}

// handleRegrade handles POST /api/teams/{teamID}/regrade.
func (s *Server) handleRegrade(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.RegradeTeam(r.Context(), auth.SubjectFromContext(r.Context()), chi.URLParam(r, "teamID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

// handleTeamGrades handles GET /api/teams/{teamID}/grades.
func (s *Server) handleTeamGrades(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.TeamGrades(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleLineup handles GET /api/teams/{teamID}/recommend-lineup.
func (s *Server) handleLineup(w http.ResponseWriter, r *http.Request) {
	lineup, err := s.deps.Lineup(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lineup)
}

// handleRecommendPitchers handles GET /api/teams/{teamID}/recommend-pitchers.
func (s *Server) handleRecommendPitchers(w http.ResponseWriter, r *http.Request) {
	topN, err := optionalInt(r, "top_n")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	season, err := optionalSeason(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.deps.RecommendPitchers(r.Context(), chi.URLParam(r, "teamID"), season, topN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// optionalInt parses a positive query parameter; absent yields 0.
func optionalInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, NewKind(ErrBadRequest, key+" must be a positive integer")
	}
	return n, nil
}
