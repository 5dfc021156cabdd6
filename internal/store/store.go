package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides SQLite persistence for finished matches
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and runs pending migrations
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// MatchRecord represents a completed match
type MatchRecord struct {
	ID          string    `json:"id"`
	Rounds      int       `json:"rounds"`
	PlayerCount int       `json:"player_count"`
	Seed        int64     `json:"seed"`
	SaleCount   int       `json:"sale_count"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchResult represents one seat's final standing in a match
type MatchResult struct {
	ID        int64     `json:"id"`
	MatchID   string    `json:"match_id"`
	Seat      int       `json:"seat"`
	Name      string    `json:"name"`
	FinalCash int64     `json:"final_cash"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
}

// SaleRecord is one settled lot
type SaleRecord struct {
	ID        string `json:"id"`
	MatchID   string `json:"match_id"`
	Seq       int    `json:"seq"`
	Round     int    `json:"round"`
	Seller    int    `json:"seller"`
	Buyer     int    `json:"buyer"`
	Items     string `json:"items"`
	Mechanism string `json:"mechanism"`
	Amount    int64  `json:"amount"`
}

// RoundValue is one cell of the value table with the round's sold count
type RoundValue struct {
	MatchID  string `json:"match_id"`
	Round    int    `json:"round"`
	Category string `json:"category"`
	Sold     int    `json:"sold"`
	Value    int64  `json:"value"`
}

// PlayerStats represents aggregate stats for a player name
type PlayerStats struct {
	Name          string    `json:"name"`
	MatchesPlayed int       `json:"matches_played"`
	MatchesWon    int       `json:"matches_won"`
	TotalCash     int64     `json:"total_cash"`
	BestCash      int64     `json:"best_cash"`
	WorstCash     int64     `json:"worst_cash"`
	CurrentStreak int       `json:"current_streak"`
	BestStreak    int       `json:"best_streak"`
	UpdatedAt     time.Time `json:"updated_at"`
}
