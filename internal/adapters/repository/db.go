package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:rostr.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/rostr?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection also keeps
		// in-memory databases alive across calls.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS teams_user_idx ON teams(user_id);

CREATE TABLE IF NOT EXISTS players (
  id TEXT PRIMARY KEY,
  team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  mlbid TEXT NOT NULL DEFAULT '',
  idfg TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT '',
  season INTEGER NOT NULL,
  grade REAL NOT NULL DEFAULT 0,
  analysis TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS players_team_idx ON players(team_id);
CREATE UNIQUE INDEX IF NOT EXISTS players_team_name_idx ON players(team_id, lower(name));

CREATE TABLE IF NOT EXISTS pitcher_seasons (
  idfg TEXT NOT NULL,
  season INTEGER NOT NULL,
  mlbid TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  team TEXT NOT NULL DEFAULT '',
  age INTEGER NOT NULL DEFAULT 0,
  wins INTEGER NOT NULL DEFAULT 0,
  losses INTEGER NOT NULL DEFAULT 0,
  k_pct REAL NOT NULL DEFAULT 0,
  ip REAL NOT NULL DEFAULT 0,
  era REAL NOT NULL DEFAULT 0,
  pitching_plus REAL NOT NULL DEFAULT 0,
  stuff_plus REAL NOT NULL DEFAULT 0,
  k_bb_pct REAL NOT NULL DEFAULT 0,
  xfip_minus REAL NOT NULL DEFAULT 0,
  barrel_pct REAL NOT NULL DEFAULT 0,
  hardhit_pct REAL NOT NULL DEFAULT 0,
  gb_pct REAL NOT NULL DEFAULT 0,
  swstr_pct REAL NOT NULL DEFAULT 0,
  wpa_li REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (idfg, season)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS teams_user_idx ON teams(user_id);

CREATE TABLE IF NOT EXISTS players (
  id TEXT PRIMARY KEY,
  team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  mlbid TEXT NOT NULL DEFAULT '',
  idfg TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT '',
  season INTEGER NOT NULL,
  grade DOUBLE PRECISION NOT NULL DEFAULT 0,
  analysis TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS players_team_idx ON players(team_id);
CREATE UNIQUE INDEX IF NOT EXISTS players_team_name_idx ON players(team_id, lower(name));

CREATE TABLE IF NOT EXISTS pitcher_seasons (
  idfg TEXT NOT NULL,
  season INTEGER NOT NULL,
  mlbid TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  team TEXT NOT NULL DEFAULT '',
  age INTEGER NOT NULL DEFAULT 0,
  wins INTEGER NOT NULL DEFAULT 0,
  losses INTEGER NOT NULL DEFAULT 0,
  k_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  ip DOUBLE PRECISION NOT NULL DEFAULT 0,
  era DOUBLE PRECISION NOT NULL DEFAULT 0,
  pitching_plus DOUBLE PRECISION NOT NULL DEFAULT 0,
  stuff_plus DOUBLE PRECISION NOT NULL DEFAULT 0,
  k_bb_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  xfip_minus DOUBLE PRECISION NOT NULL DEFAULT 0,
  barrel_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  hardhit_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  gb_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  swstr_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
  wpa_li DOUBLE PRECISION NOT NULL DEFAULT 0,
  PRIMARY KEY (idfg, season)
);
`
