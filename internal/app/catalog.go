package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/rostr/internal/adapters/catalog"
	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

// PitcherSummary is one search hit.
type PitcherSummary struct {
	IDFG   string `json:"IDfg"`
	Name   string `json:"Name"`
	Team   string `json:"Team"`
	Age    int    `json:"Age"`
	Wins   int    `json:"W"`
	Losses int    `json:"L"`
	Season int    `json:"Season"`
}

// Years is the first and last catalog season of a pitcher.
type Years struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ImportResult reports what a catalog import changed.
type ImportResult struct {
	Rows     int   `json:"rows"`
	Seasons  []int `json:"seasons"`
	Requeued int   `json:"requeued"`
}

// SearchPitchers filters the catalog by season and name substring. With
// neither filter the result is empty.
func (s *Service) SearchPitchers(ctx context.Context, season int, name string) ([]PitcherSummary, error) {
	name = strings.TrimSpace(name)
	out := []PitcherSummary{}
	if season == 0 && name == "" {
		return out, nil
	}
	if season != 0 && (season < 1000 || season > 9999) {
		return nil, newError(ErrBadRequest, "season must be a 4-digit year")
	}
	rows, err := s.store.SearchPitchers(ctx, season, name, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, PitcherSummary{
			IDFG: r.IDFG, Name: r.Name, Team: r.Team, Age: r.Age,
			Wins: r.Wins, Losses: r.Losses, Season: r.Season,
		})
	}
	return out, nil
}

// PlayerYears returns the season span of a pitcher.
func (s *Service) PlayerYears(ctx context.Context, idfg string) (Years, error) {
	idfg = strings.TrimSpace(idfg)
	if idfg == "" {
		return Years{}, newError(ErrBadRequest, "fangraph_id is required")
	}
	start, end, err := s.store.PitcherYears(ctx, idfg)
	if errors.Is(err, repository.ErrNotFound) {
		return Years{}, newError(ErrNotFound, "no seasons found for %s", idfg)
	}
	if err != nil {
		return Years{}, err
	}
	return Years{Start: start, End: end}, nil
}

// LoadCatalog reads a catalog file and imports it. With an empty path the
// embedded seed is imported, but only into an empty catalog so earlier
// imports are never overwritten.
func (s *Service) LoadCatalog(ctx context.Context, path string) (ImportResult, error) {
	if path == "" {
		c, err := s.store.Counts(ctx)
		if err != nil {
			return ImportResult{}, err
		}
		if c.PitcherSeasons > 0 {
			s.logger.Info(ctx, "catalog already populated, seed skipped",
				logger.Int("pitcher_seasons", c.PitcherSeasons))
			return ImportResult{}, nil
		}
	}
	rows, err := catalog.Load(path)
	if err != nil {
		return ImportResult{}, err
	}
	return s.ImportCatalog(ctx, rows)
}

// ImportCatalog upserts rows and, when the regrade pipeline runs, re-queues
// every rostered player of the imported seasons.
func (s *Service) ImportCatalog(ctx context.Context, rows []model.PitcherSeason) (ImportResult, error) {
	n, err := s.store.UpsertPitcherSeasons(ctx, rows)
	if err != nil {
		metrics.RecordErrorByComponent("catalog", "import")
		return ImportResult{}, err
	}
	metrics.RecordCatalogImport()
	res := ImportResult{Rows: n, Seasons: catalog.Seasons(rows)}

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		s.logger.Info(ctx, "catalog imported", logger.Int("rows", n))
		return res, nil
	}

requeue:
	for _, season := range res.Seasons {
		players, err := s.store.PlayersBySeason(ctx, season)
		if err != nil {
			return res, err
		}
		for _, p := range players {
			err := s.enqueueRegrade(ctx, p.ID, season)
			if errors.Is(err, errAlreadyPending) {
				continue
			}
			if err != nil {
				s.logger.Warn(ctx, "stopped re-queueing after import",
					logger.Int("season", season), logger.Error(err))
				break requeue
			}
			res.Requeued++
		}
	}
	s.logger.Info(ctx, "catalog imported",
		logger.Int("rows", n),
		logger.Int("requeued", res.Requeued))
	return res, nil
}
