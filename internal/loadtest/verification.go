package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/okian/rostr/internal/domain/roster"
	"github.com/okian/rostr/pkg/logger"
)

// ErrMismatch is returned when a team summary disagrees with the grades
// returned while the roster was built.
var ErrMismatch = errors.New("team summary mismatch")

// verifyTeams fetches every team's grades and recomputes the average and
// tier from the grades the server returned on add.
func verifyTeams(ctx context.Context, c *httpClient, teams []*team, stats *Stats) error {
	var errs []error
	for _, t := range teams {
		var sum teamSummary
		if err := c.do(ctx, http.MethodGet, "/api/teams/"+t.ID+"/grades", "", nil, &sum); err != nil {
			errs = append(errs, fmt.Errorf("team %s: %w", t.ID, err))
			continue
		}
		if err := checkSummary(t, sum); err != nil {
			errs = append(errs, fmt.Errorf("team %s: %w", t.ID, err))
			continue
		}
		stats.TeamsVerified++
	}

	if len(errs) > 0 {
		logger.Named("loadtest").Error(ctx, "verification failed",
			logger.Int("teams", len(teams)), logger.Int("mismatches", len(errs)))
		return errors.Join(errs...)
	}
	logger.Named("loadtest").Info(ctx, "all teams verified", logger.Int("teams", len(teams)))
	return nil
}

func checkSummary(t *team, sum teamSummary) error {
	if len(sum.Players) != len(t.grades) {
		return fmt.Errorf("%w: %d players listed, %d added", ErrMismatch, len(sum.Players), len(t.grades))
	}
	if len(t.grades) == 0 {
		if sum.TeamTier != roster.NoTier {
			return fmt.Errorf("%w: empty team has tier %q", ErrMismatch, sum.TeamTier)
		}
		return nil
	}

	var total float64
	for _, p := range sum.Players {
		want, ok := t.grades[p.Name]
		if !ok {
			return fmt.Errorf("%w: unexpected player %q", ErrMismatch, p.Name)
		}
		if p.Grade != want {
			return fmt.Errorf("%w: %s graded %.2f, added as %.2f", ErrMismatch, p.Name, p.Grade, want)
		}
		total += want
	}
	avg := math.Round(total/float64(len(t.grades))*10) / 10
	if sum.AverageGrade == nil || *sum.AverageGrade != avg {
		return fmt.Errorf("%w: average %v, want %.1f", ErrMismatch, sum.AverageGrade, avg)
	}
	if tier, _ := roster.TeamTier(avg); sum.TeamTier != tier {
		return fmt.Errorf("%w: tier %q, want %q", ErrMismatch, sum.TeamTier, tier)
	}
	return nil
}
