// Package repository persists users, teams, rostered players and the pitcher
// stats catalog in a SQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/pkg/metrics"
)

// Counts summarises table sizes.
type Counts struct {
	Users          int `json:"users"`
	Teams          int `json:"teams"`
	Players        int `json:"players"`
	PitcherSeasons int `json:"pitcher_seasons"`
}

// Store provides read/write access to persistent state.
type Store interface {
	// CreateUser stores a new account. Returns ErrConflict if the username exists.
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)

	CreateTeam(ctx context.Context, userID, name string) (model.Team, error)
	Team(ctx context.Context, teamID string) (model.Team, error)
	TeamsByUser(ctx context.Context, userID string) ([]model.Team, error)
	// DeleteTeam removes a team and its players.
	DeleteTeam(ctx context.Context, teamID string) error

	// AddPlayer inserts p unless the team already has that pitcher (by idfg
	// or case-insensitive name, ErrConflict) or holds maxRoster players
	// (ErrRosterFull). maxRoster <= 0 disables the size check.
	AddPlayer(ctx context.Context, p model.Player, maxRoster int) (model.Player, error)
	Player(ctx context.Context, playerID string) (model.Player, error)
	Players(ctx context.Context, teamID string) ([]model.Player, error)
	PlayersBySeason(ctx context.Context, season int) ([]model.Player, error)
	// RemovePlayer deletes a player by case-insensitive name.
	RemovePlayer(ctx context.Context, teamID, name string) error
	UpdatePlayerGrade(ctx context.Context, playerID string, grade float64, analysis string) error

	// UpsertPitcherSeasons writes catalog rows keyed by (idfg, season).
	UpsertPitcherSeasons(ctx context.Context, rows []model.PitcherSeason) (int, error)
	// SearchPitchers filters by season (0 = any) and name substring.
	SearchPitchers(ctx context.Context, season int, name string, limit int) ([]model.PitcherSeason, error)
	PitcherSeason(ctx context.Context, idfg string, season int) (model.PitcherSeason, error)
	// PitcherSeasonByName matches the name case-insensitively. season 0
	// selects the most recent season.
	PitcherSeasonByName(ctx context.Context, name string, season int) (model.PitcherSeason, error)
	PitcherSeasons(ctx context.Context, season int) ([]model.PitcherSeason, error)
	// PitcherYears returns the first and last catalog season of a pitcher.
	PitcherYears(ctx context.Context, idfg string) (start, end int, err error)

	Counts(ctx context.Context) (Counts, error)
	Close() error
}

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db     *sql.DB
	driver Driver
	now    func() time.Time
	newID  func() string
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an opened database. See Open.
func NewSQLStore(db *sql.DB, driver Driver, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:     db,
		driver: driver,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) observe(op string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000.0)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	return err
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// Users

func (s *SQLStore) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	defer s.observe("create_user", time.Now())

	u := model.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Unix())
	if isUniqueViolation(err) {
		metrics.RecordErrorByComponent("repository", "conflict")
		return model.User{}, ErrConflict
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (model.User, error) {
	defer s.observe("user_by_username", time.Now())

	var u model.User
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if err != nil {
		return model.User{}, notFound(err)
	}
	u.CreatedAt = fromUnix(created)
	return u, nil
}

// Teams

func (s *SQLStore) CreateTeam(ctx context.Context, userID, name string) (model.Team, error) {
	defer s.observe("create_team", time.Now())

	t := model.Team{
		ID:        s.newID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.UserID, t.Name, t.CreatedAt.Unix())
	if err != nil {
		return model.Team{}, err
	}
	return t, nil
}

func (s *SQLStore) Team(ctx context.Context, teamID string) (model.Team, error) {
	defer s.observe("team", time.Now())

	var t model.Team
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM teams WHERE id = $1`, teamID).
		Scan(&t.ID, &t.UserID, &t.Name, &created)
	if err != nil {
		return model.Team{}, notFound(err)
	}
	t.CreatedAt = fromUnix(created)
	return t, nil
}

func (s *SQLStore) TeamsByUser(ctx context.Context, userID string) ([]model.Team, error) {
	defer s.observe("teams_by_user", time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM teams WHERE user_id = $1 ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		var created int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = fromUnix(created)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLStore) DeleteTeam(ctx context.Context, teamID string) error {
	defer s.observe("delete_team", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE team_id = $1`, teamID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Players

const playerColumns = `id, team_id, name, mlbid, idfg, position, season, grade, analysis, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(r rowScanner) (model.Player, error) {
	var p model.Player
	var updated int64
	if err := r.Scan(&p.ID, &p.TeamID, &p.Name, &p.MLBID, &p.IDFG, &p.Position,
		&p.Season, &p.Grade, &p.Analysis, &updated); err != nil {
		return model.Player{}, err
	}
	p.UpdatedAt = fromUnix(updated)
	return p, nil
}

func (s *SQLStore) queryPlayers(ctx context.Context, query string, args ...any) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLStore) AddPlayer(ctx context.Context, p model.Player, maxRoster int) (model.Player, error) {
	defer s.observe("add_player", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Player{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Serialise roster writes per team. sqlite already runs one writer at a
	// time over its single connection.
	if s.driver == DriverPostgres {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM teams WHERE id = $1 FOR UPDATE`, p.TeamID).Scan(&id)
		if err != nil {
			return model.Player{}, notFound(err)
		}
	}

	dupQuery := `SELECT COUNT(*) FROM players WHERE team_id = $1 AND lower(name) = $2`
	args := []any{p.TeamID, strings.ToLower(p.Name)}
	if p.IDFG != "" {
		dupQuery = `SELECT COUNT(*) FROM players WHERE team_id = $1 AND (lower(name) = $2 OR idfg = $3)`
		args = append(args, p.IDFG)
	}
	var dups int
	if err := tx.QueryRowContext(ctx, dupQuery, args...).Scan(&dups); err != nil {
		return model.Player{}, err
	}
	if dups > 0 {
		metrics.RecordErrorByComponent("repository", "conflict")
		return model.Player{}, ErrConflict
	}

	if maxRoster > 0 {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE team_id = $1`, p.TeamID).Scan(&n); err != nil {
			return model.Player{}, err
		}
		if n >= maxRoster {
			metrics.RecordErrorByComponent("repository", "roster_full")
			return model.Player{}, ErrRosterFull
		}
	}

	if p.ID == "" {
		p.ID = s.newID()
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO players (`+playerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.TeamID, p.Name, p.MLBID, p.IDFG, p.Position, p.Season, p.Grade, p.Analysis, p.UpdatedAt.Unix())
	if isUniqueViolation(err) {
		metrics.RecordErrorByComponent("repository", "conflict")
		return model.Player{}, ErrConflict
	}
	if err != nil {
		return model.Player{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Player{}, err
	}
	return p, nil
}

func (s *SQLStore) Player(ctx context.Context, playerID string) (model.Player, error) {
	defer s.observe("player", time.Now())

	p, err := scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, playerID))
	if err != nil {
		return model.Player{}, notFound(err)
	}
	return p, nil
}

func (s *SQLStore) Players(ctx context.Context, teamID string) ([]model.Player, error) {
	defer s.observe("players", time.Now())
	return s.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE team_id = $1 ORDER BY lower(name)`, teamID)
}

func (s *SQLStore) PlayersBySeason(ctx context.Context, season int) ([]model.Player, error) {
	defer s.observe("players_by_season", time.Now())
	return s.queryPlayers(ctx,
		`SELECT `+playerColumns+` FROM players WHERE season = $1 ORDER BY team_id, lower(name)`, season)
}

func (s *SQLStore) RemovePlayer(ctx context.Context, teamID, name string) error {
	defer s.observe("remove_player", time.Now())

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM players WHERE team_id = $1 AND lower(name) = $2`, teamID, strings.ToLower(name))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) UpdatePlayerGrade(ctx context.Context, playerID string, grade float64, analysis string) error {
	defer s.observe("update_player_grade", time.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET grade = $1, analysis = $2, updated_at = $3 WHERE id = $4`,
		grade, analysis, s.now().UTC().Unix(), playerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Catalog

const seasonColumns = `idfg, season, mlbid, name, team, age, wins, losses, k_pct, ip, era,
  pitching_plus, stuff_plus, k_bb_pct, xfip_minus, barrel_pct, hardhit_pct, gb_pct, swstr_pct, wpa_li`

func scanSeason(r rowScanner) (model.PitcherSeason, error) {
	var p model.PitcherSeason
	a := &p.Advanced
	err := r.Scan(&p.IDFG, &p.Season, &p.MLBID, &p.Name, &p.Team, &p.Age, &p.Wins, &p.Losses,
		&p.KPct, &p.Innings, &p.ERA,
		&a.PitchingPlus, &a.StuffPlus, &a.KBBPct, &a.XFIPMinus, &a.BarrelPct, &a.HardHitPct,
		&a.GBPct, &a.SwStrPct, &a.WPALI)
	return p, err
}

func (s *SQLStore) querySeasons(ctx context.Context, query string, args ...any) ([]model.PitcherSeason, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PitcherSeason{}
	for rows.Next() {
		p, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertPitcherSeasons(ctx context.Context, rows []model.PitcherSeason) (int, error) {
	defer s.observe("upsert_pitcher_seasons", time.Now())

	if len(rows) == 0 {
		return 0, ErrEmptyCatalog
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pitcher_seasons (`+seasonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (idfg, season) DO UPDATE SET
		  mlbid = excluded.mlbid, name = excluded.name, team = excluded.team, age = excluded.age,
		  wins = excluded.wins, losses = excluded.losses, k_pct = excluded.k_pct, ip = excluded.ip,
		  era = excluded.era, pitching_plus = excluded.pitching_plus, stuff_plus = excluded.stuff_plus,
		  k_bb_pct = excluded.k_bb_pct, xfip_minus = excluded.xfip_minus, barrel_pct = excluded.barrel_pct,
		  hardhit_pct = excluded.hardhit_pct, gb_pct = excluded.gb_pct, swstr_pct = excluded.swstr_pct,
		  wpa_li = excluded.wpa_li`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, p := range rows {
		if p.IDFG == "" || p.Name == "" || p.Season == 0 {
			return 0, ErrInvalidSeasons
		}
		a := p.Advanced
		if _, err := stmt.ExecContext(ctx, p.IDFG, p.Season, p.MLBID, p.Name, p.Team, p.Age, p.Wins, p.Losses,
			p.KPct, p.Innings, p.ERA,
			a.PitchingPlus, a.StuffPlus, a.KBBPct, a.XFIPMinus, a.BarrelPct, a.HardHitPct,
			a.GBPct, a.SwStrPct, a.WPALI); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// likeEscaper escapes LIKE wildcards; patterns use ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *SQLStore) SearchPitchers(ctx context.Context, season int, name string, limit int) ([]model.PitcherSeason, error) {
	defer s.observe("search_pitchers", time.Now())

	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(name))) + "%"
	return s.querySeasons(ctx, `SELECT `+seasonColumns+` FROM pitcher_seasons
		WHERE ($1 = 0 OR season = $1) AND lower(name) LIKE $2 ESCAPE '\'
		ORDER BY lower(name), season DESC LIMIT $3`, season, pattern, limit)
}

func (s *SQLStore) PitcherSeason(ctx context.Context, idfg string, season int) (model.PitcherSeason, error) {
	defer s.observe("pitcher_season", time.Now())

	p, err := scanSeason(s.db.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM pitcher_seasons WHERE idfg = $1 AND season = $2`, idfg, season))
	if err != nil {
		return model.PitcherSeason{}, notFound(err)
	}
	return p, nil
}

func (s *SQLStore) PitcherSeasonByName(ctx context.Context, name string, season int) (model.PitcherSeason, error) {
	defer s.observe("pitcher_season_by_name", time.Now())

	p, err := scanSeason(s.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM pitcher_seasons
		WHERE lower(name) = $1 AND ($2 = 0 OR season = $2)
		ORDER BY season DESC LIMIT 1`, strings.ToLower(strings.TrimSpace(name)), season))
	if err != nil {
		return model.PitcherSeason{}, notFound(err)
	}
	return p, nil
}

func (s *SQLStore) PitcherSeasons(ctx context.Context, season int) ([]model.PitcherSeason, error) {
	defer s.observe("pitcher_seasons", time.Now())
	return s.querySeasons(ctx,
		`SELECT `+seasonColumns+` FROM pitcher_seasons WHERE season = $1 ORDER BY lower(name)`, season)
}

func (s *SQLStore) PitcherYears(ctx context.Context, idfg string) (int, int, error) {
	defer s.observe("pitcher_years", time.Now())

	var start, end sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(season), MAX(season) FROM pitcher_seasons WHERE idfg = $1`, idfg).Scan(&start, &end)
	if err != nil {
		return 0, 0, err
	}
	if !start.Valid {
		return 0, 0, ErrNotFound
	}
	return int(start.Int64), int(end.Int64), nil
}

func (s *SQLStore) Counts(ctx context.Context) (Counts, error) {
	defer s.observe("counts", time.Now())

	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM teams),
		(SELECT COUNT(*) FROM players),
		(SELECT COUNT(*) FROM pitcher_seasons)`).Scan(&c.Users, &c.Teams, &c.Players, &c.PitcherSeasons)
	return c, err
}
