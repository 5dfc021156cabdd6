package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"gallery/internal/item"
	"gallery/internal/match"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "gallery-test.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testArchive(id string, names ...string) MatchArchive {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := MatchArchive{
		Match: MatchRecord{
			ID:          id,
			Rounds:      3,
			PlayerCount: len(names),
			Seed:        42,
			SaleCount:   2,
			StartedAt:   started,
			EndedAt:     started.Add(time.Minute),
		},
		Sales: []SaleRecord{
			{Seq: 1, Round: 0, Seller: 0, Buyer: 1, Items: "Krypto/OPEN", Mechanism: "OPEN", Amount: 5000},
			{Seq: 2, Round: 0, Seller: 1, Buyer: 1, Items: "Yoko/PAIR,Yoko/PRICE", Mechanism: "PRICE", Amount: 20000},
		},
		Values: []RoundValue{
			{Round: 0, Category: "Krypto", Sold: 1, Value: 30000},
			{Round: 0, Category: "Yoko", Sold: 2, Value: 20000},
		},
	}
	for i, name := range names {
		a.Results = append(a.Results, MatchResult{
			Seat:      i,
			Name:      name,
			FinalCash: int64(200000 - i*50000),
			Rank:      i + 1,
		})
	}
	return a
}

func TestMigrationsApplied(t *testing.T) {
	st := setupTestStore(t)

	applied, pending, err := st.MigrationStatus()
	assert.NoError(t, err)
	check.Equal(t, len(migrations), len(applied))
	check.Equal(t, 0, len(pending))

	// Running again is a no-op
	check.NoError(t, st.Migrate())
}

func TestSaveAndGetMatch(t *testing.T) {
	st := setupTestStore(t)

	assert.NoError(t, st.SaveMatch(testArchive("m1", "alice", "bob", "carol")))

	m, err := st.GetMatch("m1")
	assert.NoError(t, err)
	check.Equal(t, "m1", m.ID)
	check.Equal(t, 3, m.PlayerCount)
	check.Equal(t, int64(42), m.Seed)
	check.Equal(t, 2, m.SaleCount)
	check.True(t, m.EndedAt.After(m.StartedAt))

	results, err := st.GetMatchResults("m1")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(results))
	check.Equal(t, "alice", results[0].Name)
	check.Equal(t, 1, results[0].Rank)
	check.Equal(t, int64(100000), results[2].FinalCash)

	sales, err := st.GetSales("m1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(sales))
	check.Equal(t, 1, sales[0].Seq)
	check.True(t, sales[0].ID != "")
	check.Equal(t, "Yoko/PAIR,Yoko/PRICE", sales[1].Items)

	values, err := st.GetRoundValues("m1")
	assert.NoError(t, err)
	check.Equal(t, 2, len(values))
	check.Equal(t, int64(30000), values[0].Value)
}

func TestGetMatchNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetMatch("nope")
	check.True(t, err == ErrNotFound)

	_, err = st.GetSnapshot("nope")
	check.True(t, err == ErrNotFound)
}

func TestSaveMatchDuplicateRollsBack(t *testing.T) {
	st := setupTestStore(t)

	assert.NoError(t, st.SaveMatch(testArchive("m1", "alice", "bob", "carol")))
	check.Error(t, st.SaveMatch(testArchive("m1", "alice", "bob", "carol")))

	stats, err := st.GetPlayerStats("alice")
	assert.NoError(t, err)
	check.Equal(t, 1, stats.MatchesPlayed)
}

func TestGetRecentMatches(t *testing.T) {
	st := setupTestStore(t)

	for i, id := range []string{"m1", "m2", "m3"} {
		a := testArchive(id, "alice", "bob", "carol")
		a.Match.EndedAt = a.Match.EndedAt.Add(time.Duration(i) * time.Hour)
		assert.NoError(t, st.SaveMatch(a))
	}

	matches, err := st.GetRecentMatches(2)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(matches))
	check.Equal(t, "m3", matches[0].ID)
	check.Equal(t, "m2", matches[1].ID)
}

func TestPlayerStatsAndLeaderboard(t *testing.T) {
	st := setupTestStore(t)

	assert.NoError(t, st.SaveMatch(testArchive("m1", "alice", "bob", "carol")))
	assert.NoError(t, st.SaveMatch(testArchive("m2", "alice", "carol", "bob")))
	assert.NoError(t, st.SaveMatch(testArchive("m3", "bob", "alice", "carol")))

	alice, err := st.GetPlayerStats("alice")
	assert.NoError(t, err)
	check.Equal(t, 3, alice.MatchesPlayed)
	check.Equal(t, 2, alice.MatchesWon)
	check.Equal(t, 0, alice.CurrentStreak)
	check.Equal(t, 2, alice.BestStreak)
	check.Equal(t, int64(550000), alice.TotalCash)
	check.Equal(t, int64(200000), alice.BestCash)
	check.Equal(t, int64(150000), alice.WorstCash)

	board, err := st.GetLeaderboard(10)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(board))
	check.Equal(t, "alice", board[0].Name)
	check.Equal(t, "bob", board[1].Name)

	unknown, err := st.GetPlayerStats("dave")
	assert.NoError(t, err)
	check.Equal(t, 0, unknown.MatchesPlayed)
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := setupTestStore(t)

	snap := match.Snapshot{
		ID:     "m1",
		State:  "COMPLETE",
		Round:  3,
		Rounds: 3,
		Players: []match.PlayerView{
			{Seat: 0, Name: "alice", Cash: 150000, Hand: []item.Item{item.New(item.CategoryKrypto, item.Pair)}},
			{Seat: 1, Name: "bob", Cash: 90000},
		},
		Sold:   [][]int{{5, 1, 0, 0, 2}},
		Values: [][]int64{{30000}, {10000}, {0}, {0}, {20000}},
		Spent:  8,
		Sales: []match.Sale{
			{Seq: 1, Seller: 0, Buyer: 1, Items: []item.Item{item.New(item.CategoryYoko, item.Once)}, Mechanism: item.Once, Amount: 4000},
		},
	}
	blob, err := EncodeSnapshot(snap)
	assert.NoError(t, err)

	a := testArchive("m1", "alice", "bob")
	a.Snapshot = blob
	assert.NoError(t, st.SaveMatch(a))

	got, err := st.GetSnapshot("m1")
	assert.NoError(t, err)
	check.Equal(t, snap.ID, got.ID)
	check.Equal(t, snap.Players[0].Hand, got.Players[0].Hand)
	check.Equal(t, snap.Sold, got.Sold)
	check.Equal(t, snap.Values, got.Values)
	check.Equal(t, snap.Sales[0].Items, got.Sales[0].Items)
	check.Equal(t, int64(90000), got.Players[1].Cash)
}

func TestSnapshotEncodingIsDeterministic(t *testing.T) {
	snap := match.Snapshot{ID: "m1", Sold: [][]int{{1, 2, 3, 4, 5}}}
	a, err := EncodeSnapshot(snap)
	assert.NoError(t, err)
	b, err := EncodeSnapshot(snap)
	assert.NoError(t, err)
	check.Equal(t, a, b)
}
