package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a match id is unknown
var ErrNotFound = errors.New("store: not found")

// MatchArchive is everything persisted for one finished match
type MatchArchive struct {
	Match    MatchRecord
	Results  []MatchResult
	Sales    []SaleRecord
	Values   []RoundValue
	Snapshot []byte // CBOR, see EncodeSnapshot
}

// SaveMatch saves a completed match with its results, sale log and value
// table in one transaction, and folds the results into player stats.
func (s *Store) SaveMatch(a MatchArchive) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	m := a.Match
	_, err = tx.Exec(`
		INSERT INTO matches (id, rounds, player_count, seed, sale_count, started_at, ended_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Rounds, m.PlayerCount, m.Seed, m.SaleCount, m.StartedAt, m.EndedAt, a.Snapshot)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}

	for _, r := range a.Results {
		_, err = tx.Exec(`
			INSERT INTO match_results (match_id, seat, name, final_cash, rank)
			VALUES (?, ?, ?, ?, ?)
		`, m.ID, r.Seat, r.Name, r.FinalCash, r.Rank)
		if err != nil {
			return fmt.Errorf("insert result seat %d: %w", r.Seat, err)
		}

		if err := s.updatePlayerStatsInTx(tx, r.Name, r.FinalCash, r.Rank == 1); err != nil {
			return err
		}
	}

	for _, sale := range a.Sales {
		id := sale.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err = tx.Exec(`
			INSERT INTO sales (id, match_id, seq, round, seller, buyer, items, mechanism, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, m.ID, sale.Seq, sale.Round, sale.Seller, sale.Buyer, sale.Items, sale.Mechanism, sale.Amount)
		if err != nil {
			return fmt.Errorf("insert sale %d: %w", sale.Seq, err)
		}
	}

	for _, v := range a.Values {
		_, err = tx.Exec(`
			INSERT INTO round_values (match_id, round, category, sold, value)
			VALUES (?, ?, ?, ?, ?)
		`, m.ID, v.Round, v.Category, v.Sold, v.Value)
		if err != nil {
			return fmt.Errorf("insert value %s round %d: %w", v.Category, v.Round, err)
		}
	}

	return tx.Commit()
}

// updatePlayerStatsInTx updates player stats within a transaction
func (s *Store) updatePlayerStatsInTx(tx *sql.Tx, name string, cash int64, won bool) error {
	var stats PlayerStats
	err := tx.QueryRow(`
		SELECT name, matches_played, matches_won, total_cash, best_cash, worst_cash, current_streak, best_streak
		FROM player_stats WHERE name = ?
	`, name).Scan(
		&stats.Name, &stats.MatchesPlayed, &stats.MatchesWon,
		&stats.TotalCash, &stats.BestCash, &stats.WorstCash,
		&stats.CurrentStreak, &stats.BestStreak,
	)

	if err == sql.ErrNoRows {
		stats = PlayerStats{Name: name}
	} else if err != nil {
		return err
	}

	stats.MatchesPlayed++
	stats.TotalCash += cash

	if cash > stats.BestCash || stats.MatchesPlayed == 1 {
		stats.BestCash = cash
	}
	if cash < stats.WorstCash || stats.MatchesPlayed == 1 {
		stats.WorstCash = cash
	}

	if won {
		stats.MatchesWon++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
	} else {
		stats.CurrentStreak = 0
	}

	_, err = tx.Exec(`
		INSERT INTO player_stats (name, matches_played, matches_won, total_cash, best_cash, worst_cash, current_streak, best_streak, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			matches_played = excluded.matches_played,
			matches_won = excluded.matches_won,
			total_cash = excluded.total_cash,
			best_cash = excluded.best_cash,
			worst_cash = excluded.worst_cash,
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			updated_at = CURRENT_TIMESTAMP
	`, stats.Name, stats.MatchesPlayed, stats.MatchesWon, stats.TotalCash,
		stats.BestCash, stats.WorstCash, stats.CurrentStreak, stats.BestStreak)
	return err
}

// GetPlayerStats returns stats for a player name
func (s *Store) GetPlayerStats(name string) (*PlayerStats, error) {
	var stats PlayerStats
	err := s.db.QueryRow(`
		SELECT name, matches_played, matches_won, total_cash, best_cash, worst_cash, current_streak, best_streak, updated_at
		FROM player_stats WHERE name = ?
	`, name).Scan(
		&stats.Name, &stats.MatchesPlayed, &stats.MatchesWon,
		&stats.TotalCash, &stats.BestCash, &stats.WorstCash,
		&stats.CurrentStreak, &stats.BestStreak, &stats.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return &PlayerStats{Name: name}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

const matchColumns = `id, rounds, player_count, seed, sale_count, started_at, ended_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var m MatchRecord
	err := row.Scan(
		&m.ID, &m.Rounds, &m.PlayerCount, &m.Seed, &m.SaleCount,
		&m.StartedAt, &m.EndedAt, &m.CreatedAt,
	)
	return m, err
}

// GetMatch returns a match by ID
func (s *Store) GetMatch(matchID string) (*MatchRecord, error) {
	m, err := scanMatch(s.db.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, matchID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetRecentMatches returns recent completed matches
func (s *Store) GetRecentMatches(limit int) ([]MatchRecord, error) {
	rows, err := s.db.Query(`SELECT `+matchColumns+` FROM matches ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatchResults returns all results for a match, best rank first
func (s *Store) GetMatchResults(matchID string) ([]MatchResult, error) {
	rows, err := s.db.Query(`
		SELECT id, match_id, seat, name, final_cash, rank, created_at
		FROM match_results
		WHERE match_id = ?
		ORDER BY rank ASC, seat ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(&r.ID, &r.MatchID, &r.Seat, &r.Name, &r.FinalCash, &r.Rank, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetSales returns the sale log of a match in settlement order
func (s *Store) GetSales(matchID string) ([]SaleRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, match_id, seq, round, seller, buyer, items, mechanism, amount
		FROM sales
		WHERE match_id = ?
		ORDER BY seq ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []SaleRecord
	for rows.Next() {
		var r SaleRecord
		if err := rows.Scan(&r.ID, &r.MatchID, &r.Seq, &r.Round, &r.Seller, &r.Buyer, &r.Items, &r.Mechanism, &r.Amount); err != nil {
			return nil, err
		}
		sales = append(sales, r)
	}
	return sales, rows.Err()
}

// GetRoundValues returns the value table of a match by round, then category
func (s *Store) GetRoundValues(matchID string) ([]RoundValue, error) {
	rows, err := s.db.Query(`
		SELECT match_id, round, category, sold, value
		FROM round_values
		WHERE match_id = ?
		ORDER BY round ASC, category ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []RoundValue
	for rows.Next() {
		var v RoundValue
		if err := rows.Scan(&v.MatchID, &v.Round, &v.Category, &v.Sold, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// GetLeaderboard returns player names by matches won, then total cash
func (s *Store) GetLeaderboard(limit int) ([]PlayerStats, error) {
	rows, err := s.db.Query(`
		SELECT name, matches_played, matches_won, total_cash, best_cash, worst_cash, current_streak, best_streak, updated_at
		FROM player_stats
		WHERE matches_played > 0
		ORDER BY matches_won DESC, total_cash DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		var p PlayerStats
		if err := rows.Scan(
			&p.Name, &p.MatchesPlayed, &p.MatchesWon,
			&p.TotalCash, &p.BestCash, &p.WorstCash,
			&p.CurrentStreak, &p.BestStreak, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stats = append(stats, p)
	}
	return stats, rows.Err()
}
