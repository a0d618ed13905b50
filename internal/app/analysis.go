package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/domain/grading"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/internal/domain/recommend"
	"github.com/okian/rostr/internal/domain/trade"
	"github.com/okian/rostr/pkg/metrics"
)

// EvaluateTrade grades both sides of a trade from catalog stats of season
// (0 selects the default season).
func (s *Service) EvaluateTrade(ctx context.Context, sideA, sideB []string, season int) (trade.Result, error) {
	if season == 0 {
		season = s.season
	}

	var lookupErr error
	resolve := func(name string) (string, grading.Stats, bool) {
		if lookupErr != nil {
			return "", grading.Stats{}, false
		}
		line, err := s.store.PitcherSeasonByName(ctx, name, season)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				lookupErr = err
			}
			return "", grading.Stats{}, false
		}
		return line.Name, line.GradingStats(), true
	}

	res, err := trade.Evaluate(sideA, sideB, resolve, s.evenMargin)
	if errors.Is(err, trade.ErrEmptyTrade) {
		return trade.Result{}, newError(ErrBadRequest, "enter at least one player for either side of the trade")
	}
	if err != nil {
		return trade.Result{}, err
	}
	if lookupErr != nil {
		return trade.Result{}, lookupErr
	}
	metrics.RecordTradeEvaluated(res.Winner)
	return res, nil
}

// RecommendPitchers ranks catalog pitchers of season that are not on the
// team. topN <= 0 uses the recommender default.
func (s *Service) RecommendPitchers(ctx context.Context, teamID string, season, topN int) ([]recommend.Recommendation, error) {
	players, err := s.Players(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if season == 0 {
		season = s.season
	}
	rows, err := s.store.PitcherSeasons(ctx, season)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(players))
	names := make(map[string]bool, len(players))
	for _, p := range players {
		if p.IDFG != "" {
			ids[p.IDFG] = true
		}
		names[strings.ToLower(p.Name)] = true
	}

	var team, candidates []model.PitcherSeason
	for _, r := range rows {
		if ids[r.IDFG] || names[strings.ToLower(r.Name)] {
			team = append(team, r)
			continue
		}
		candidates = append(candidates, r)
	}

	recs := s.recommender.Recommend(team, candidates, topN)
	metrics.RecordRecommendation()
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	return recs, nil
}
