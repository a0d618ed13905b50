// Package loadtest drives a running rostr server concurrently: it signs up
// users, builds rosters from the stats catalog and checks that the team
// summaries the server reports agree with the grades it handed out.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Users          int           // Users to sign up, one team each
	PlayersPerTeam int           // Catalog pitchers added to every team
	Workers        int           // Concurrent requests in flight
	Timeout        time.Duration // HTTP request timeout
	Season         int           // Catalog season to draw pitchers from
	Verbose        bool          // Log every failed request
	AuthPerMinute  int           // Sign-up and login calls per minute, 0 for unpaced
	AuthBurst      int           // Auth calls allowed back to back
}

// Stats holds run statistics.
type Stats struct {
	UsersCreated    int
	TeamsCreated    int
	PlayersAdded    int
	PlayersRejected int
	RequestsFailed  int
	TeamsVerified   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// pitcher is the subset of a search result the run needs.
type pitcher struct {
	IDFG string `json:"IDfg"`
	Name string `json:"Name"`
}

type session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type team struct {
	ID    string
	Token string
	// grades handed back by add-player, keyed by player name.
	grades map[string]float64
}

type addedPlayer struct {
	Name  string  `json:"player_name"`
	Grade float64 `json:"grade"`
}

type teamSummary struct {
	Players      []addedPlayer `json:"players"`
	AverageGrade *float64      `json:"average_grade"`
	TeamTier     string        `json:"team_tier"`
}
