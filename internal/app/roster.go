package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/domain/grading"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/internal/domain/roster"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

// NewPlayer describes a pitcher to add to a team.
type NewPlayer struct {
	Name     string
	MLBID    string
	IDFG     string
	Position string
	Season   int
}

// GradeScale lists pitcher and team tiers for clients.
type GradeScale struct {
	Pitcher []grading.ScaleRow    `json:"pitcher"`
	Team    []roster.TeamScaleRow `json:"team"`
}

// CreateTeam creates a team owned by userID.
func (s *Service) CreateTeam(ctx context.Context, userID, name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, newError(ErrBadRequest, "team_name is required")
	}
	t, err := s.store.CreateTeam(ctx, userID, name)
	if err != nil {
		return model.Team{}, err
	}
	s.logger.Info(ctx, "team created", logger.String("team_id", t.ID), logger.String("user_id", userID))
	return t, nil
}

// TeamsByUser lists a user's teams.
func (s *Service) TeamsByUser(ctx context.Context, userID string) ([]model.Team, error) {
	return s.store.TeamsByUser(ctx, userID)
}

// DeleteTeam removes a team the user owns together with its players.
func (s *Service) DeleteTeam(ctx context.Context, userID, teamID string) error {
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return err
	}
	if err := s.store.DeleteTeam(ctx, teamID); err != nil {
		return s.teamErr(err)
	}
	s.logger.Info(ctx, "team deleted", logger.String("team_id", teamID))
	return nil
}

// Players lists a team's roster.
func (s *Service) Players(ctx context.Context, teamID string) ([]model.Player, error) {
	if _, err := s.team(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.Players(ctx, teamID)
}

// AddPlayer grades a pitcher from the catalog and puts it on the team.
// Checks run in order: ownership, duplicate, roster size, catalog stats.
func (s *Service) AddPlayer(ctx context.Context, userID, teamID string, np NewPlayer) (model.Player, error) {
	np.Name = strings.TrimSpace(np.Name)
	np.IDFG = strings.TrimSpace(np.IDFG)
	if np.Name == "" {
		return model.Player{}, newError(ErrBadRequest, "player_name is required")
	}
	if np.Season == 0 {
		np.Season = s.season
	}
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return model.Player{}, err
	}

	current, err := s.store.Players(ctx, teamID)
	if err != nil {
		return model.Player{}, err
	}
	for _, p := range current {
		if strings.EqualFold(p.Name, np.Name) || (np.IDFG != "" && p.IDFG == np.IDFG) {
			return model.Player{}, newError(ErrConflict, "%s is already on this team", p.Name)
		}
	}
	if len(current) >= s.maxRosterSize {
		return model.Player{}, newError(ErrConflict, "roster is full (max %d players)", s.maxRosterSize)
	}

	line, err := s.lookupSeason(ctx, np.IDFG, np.Name, np.Season)
	if err != nil {
		return model.Player{}, err
	}

	start := time.Now()
	report := grading.Evaluate(np.Name, line.GradingStats())
	metrics.RecordGrade(report.Tier.String(), float64(time.Since(start).Microseconds())/1000.0)

	p := model.Player{
		TeamID:   teamID,
		Name:     np.Name,
		MLBID:    np.MLBID,
		IDFG:     np.IDFG,
		Position: np.Position,
		Season:   np.Season,
		Grade:    report.Grade,
		Analysis: report.Analysis.String(),
	}
	if p.IDFG == "" {
		p.IDFG = line.IDFG
	}
	if p.MLBID == "" {
		p.MLBID = line.MLBID
	}
	if p.Position == "" {
		p.Position = "SP"
	}

	added, err := s.store.AddPlayer(ctx, p, s.maxRosterSize)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return model.Player{}, newError(ErrConflict, "%s is already on this team", np.Name)
	case errors.Is(err, repository.ErrRosterFull):
		return model.Player{}, newError(ErrConflict, "roster is full (max %d players)", s.maxRosterSize)
	case err != nil:
		return model.Player{}, err
	}
	s.logger.Info(ctx, "player added",
		logger.String("team_id", teamID),
		logger.String("player", added.Name),
		logger.Float64("grade", added.Grade))
	return added, nil
}

// RemovePlayer drops a pitcher from a team by name, ignoring case.
func (s *Service) RemovePlayer(ctx context.Context, userID, teamID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newError(ErrBadRequest, "player name is required")
	}
	if _, err := s.ownedTeam(ctx, userID, teamID); err != nil {
		return err
	}
	err := s.store.RemovePlayer(ctx, teamID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "Player not found")
	}
	return err
}

// TeamGrades returns the roster with its average grade and team tier.
func (s *Service) TeamGrades(ctx context.Context, teamID string) (roster.Summary, error) {
	players, err := s.Players(ctx, teamID)
	if err != nil {
		return roster.Summary{}, err
	}
	return roster.Summarize(players), nil
}

// Lineup ranks the roster and flags the starters.
func (s *Service) Lineup(ctx context.Context, teamID string) ([]roster.LineupEntry, error) {
	players, err := s.Players(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return roster.RecommendLineup(players, s.lineupSize), nil
}

// GradeScale returns the tier tables.
func (s *Service) GradeScale() GradeScale {
	return GradeScale{Pitcher: grading.Scale(), Team: roster.TeamScale()}
}

// Grade runs the engine on a stat line without touching storage.
func (s *Service) Grade(name string, kPct, ip, era float64) grading.Report {
	start := time.Now()
	report := grading.Evaluate(name, grading.Stats{
		StrikeoutRate:  grading.StrikeoutRateFromPercent(kPct),
		InningsPitched: ip,
		ERA:            era,
	})
	metrics.RecordGrade(report.Tier.String(), float64(time.Since(start).Microseconds())/1000.0)
	return report
}

func (s *Service) team(ctx context.Context, teamID string) (model.Team, error) {
	t, err := s.store.Team(ctx, teamID)
	if err != nil {
		return model.Team{}, s.teamErr(err)
	}
	return t, nil
}

func (s *Service) ownedTeam(ctx context.Context, userID, teamID string) (model.Team, error) {
	t, err := s.team(ctx, teamID)
	if err != nil {
		return model.Team{}, err
	}
	if t.UserID != userID {
		return model.Team{}, newError(ErrForbidden, "team %s belongs to another user", teamID)
	}
	return t, nil
}

func (s *Service) teamErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "team not found")
	}
	return err
}

// lookupSeason finds a catalog line by idfg, falling back to the name.
func (s *Service) lookupSeason(ctx context.Context, idfg, name string, season int) (model.PitcherSeason, error) {
	if idfg != "" {
		line, err := s.store.PitcherSeason(ctx, idfg, season)
		if err == nil {
			return line, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.PitcherSeason{}, err
		}
	}
	line, err := s.store.PitcherSeasonByName(ctx, name, season)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PitcherSeason{}, newError(ErrNotFound, "no stats found for %s in %d", name, season)
	}
	if err != nil {
		return model.PitcherSeason{}, fmt.Errorf("lookup %s: %w", name, err)
	}
	return line, nil
}
