package match

import (
	"errors"
	"testing"

	"gallery/internal/item"
)

func TestRankCategories(t *testing.T) {
	tests := []struct {
		sold []int
		want []item.Category
	}{
		{[]int{4, 4, 4, 1, 4}, []item.Category{0, 1, 2, 4, 3}},
		{[]int{0, 0, 0, 0, 0}, []item.Category{0, 1, 2, 3, 4}},
		{[]int{1, 0, 5, 0, 2}, []item.Category{2, 4, 0, 1, 3}},
	}

	for _, tt := range tests {
		got := RankCategories(tt.sold)
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("RankCategories(%v) = %v, expected %v", tt.sold, got, tt.want)
				break
			}
		}
	}
}

func TestValuationOnlyTopThreeScore(t *testing.T) {
	m, _ := setupMatch(t, 3)
	copy(m.sold[0], []int{4, 4, 4, 1, 4})

	if err := m.EndRound(); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	want := []int64{30000, 20000, 10000, 0, 0}
	for c, w := range want {
		if got := m.Value(item.Category(c), 0); got != w {
			t.Errorf("category %d: expected value %d, got %d", c, w, got)
		}
	}
}

func TestValuesCarryForward(t *testing.T) {
	m, _ := setupMatch(t, 3)
	copy(m.sold[0], []int{4, 4, 4, 1, 4})
	m.EndRound()

	copy(m.sold[1], []int{0, 3, 0, 2, 1})
	m.EndRound()

	want := []int64{0, 50000, 0, 20000, 10000}
	for c, w := range want {
		if got := m.Value(item.Category(c), 1); got != w {
			t.Errorf("round 1 category %d: expected value %d, got %d", c, w, got)
		}
	}

	// Categories that missed round 1 keep their round 0 bonus.
	copy(m.sold[2], []int{1, 0, 0, 0, 0})
	m.EndRound()

	want = []int64{60000, 70000, 20000, 0, 0}
	for c, w := range want {
		if got := m.Value(item.Category(c), 2); got != w {
			t.Errorf("round 2 category %d: expected value %d, got %d", c, w, got)
		}
	}
	if got := m.Snapshot().Totals; got[item.CategoryKarlGitter] != 20000 {
		t.Errorf("expected KARL_GITTER total 20000, got %v", got)
	}
}

func TestUnrankedCategoryPaysNothing(t *testing.T) {
	m, players := setupMatch(t, 3)
	lm := item.CategoryLiteMetal

	copy(m.sold[0], []int{5, 0, 0, 0, 0})
	m.EndRound()
	if got := m.Value(lm, 0); got != 30000 {
		t.Fatalf("expected LITE_METAL worth 30000 in round 0, got %d", got)
	}

	players[0].board = []item.Item{item.New(lm, item.Open)}
	before := players[0].Cash()
	copy(m.sold[1], []int{0, 5, 4, 3, 0})
	m.EndRound()

	if got := m.Value(lm, 1); got != 0 {
		t.Errorf("expected LITE_METAL worth 0 in round 1, got %d", got)
	}
	if got := players[0].Cash(); got != before {
		t.Errorf("expected no payout for LITE_METAL, cash went %d -> %d", before, got)
	}
	if len(players[0].Board()) != 0 {
		t.Error("expected board cleared even when it paid nothing")
	}

	players[0].board = []item.Item{item.New(lm, item.Open)}
	before = players[0].Cash()
	copy(m.sold[2], []int{1, 0, 0, 0, 0})
	m.EndRound()

	if got := players[0].Cash() - before; got != 60000 {
		t.Errorf("expected LITE_METAL to pay 60000 in round 2, got %d", got)
	}
}

func TestEndOfRoundPayout(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2, p3 := players[0], players[1], players[2]
	lm, yoko, cp, kg, kr := item.CategoryLiteMetal, item.CategoryYoko, item.CategoryChristineP, item.CategoryKarlGitter, item.CategoryKrypto

	setHands(players, []item.Item{item.New(yoko, item.Price)}, nil, nil)
	p1.board = []item.Item{
		item.New(lm, item.Open), item.New(yoko, item.Open), item.New(cp, item.Open),
		item.New(cp, item.Open), item.New(kr, item.Open),
	}
	p2.board = []item.Item{
		item.New(lm, item.Open), item.New(yoko, item.Open), item.New(yoko, item.Open),
		item.New(yoko, item.Open), item.New(cp, item.Open), item.New(kg, item.Open),
		item.New(kr, item.Open),
	}
	p3.board = []item.Item{
		item.New(lm, item.Open), item.New(lm, item.Open), item.New(cp, item.Open),
		item.New(kr, item.Open), item.New(kr, item.Open),
	}
	copy(m.sold[0], []int{4, 4, 4, 1, 4})

	var ended *Event
	m.OnEvent(func(e Event) {
		if e.Type == EventRoundEnded {
			ended = &e
		}
	})

	// Fifth YOKO ends the round.
	if err := p1.Turn().Sell(0, 1000); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}

	if m.Round() != 1 {
		t.Fatalf("expected round 1, got %d", m.Round())
	}
	want := map[item.Category]int64{lm: 20000, yoko: 30000, cp: 10000, kg: 0, kr: 0}
	for c, w := range want {
		if got := m.Value(c, 0); got != w {
			t.Errorf("%s: expected value %d, got %d", c, w, got)
		}
	}
	assertCash(t, players, 170000, 220000, 150000)
	assertBoards(t, players, 0, 0, 0)

	if ended == nil {
		t.Fatal("expected a round ended event")
	}
	if ended.Round != 0 || ended.Values[yoko] != 30000 {
		t.Errorf("unexpected round ended event %+v", *ended)
	}
}

func TestEndRoundDiscardsInFlight(t *testing.T) {
	m, players := setupMatch(t, 3)
	setHands(players, []item.Item{item.New(item.CategoryKrypto, item.Blind)}, []item.Item{filler}, nil)

	players[0].Turn().Sell(0, 0)
	bid := players[1].Bid().(*SealedBid)
	if err := m.EndRound(); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}

	if !bid.Resolved() {
		t.Error("bid should be resolved after the round ended")
	}
	if err := bid.Submit(1000); !errors.Is(err, ErrStaleAction) {
		t.Errorf("expected ErrStaleAction, got %v", err)
	}
	snap := m.Snapshot()
	if snap.Discarded != 1 || snap.InFlight != 0 {
		t.Errorf("expected 1 discarded and 0 in flight, got %d and %d", snap.Discarded, snap.InFlight)
	}
	if got := m.SoldCount(0, item.CategoryKrypto); got != 0 {
		t.Errorf("discarded lot must not count as sold, got %d", got)
	}
}

func TestEndRoundBeforeStart(t *testing.T) {
	m, _ := NewMatch(DefaultConfig())
	if err := m.EndRound(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestShortMatch(t *testing.T) {
	config := DefaultConfig()
	config.Rounds = 1
	m, _ := NewMatch(config)
	for i := 0; i < 3; i++ {
		m.AddPlayer("p")
	}
	m.Start()

	var complete bool
	m.OnEvent(func(e Event) {
		if e.Type == EventMatchComplete {
			complete = true
		}
	})
	m.EndRound()

	if m.GetState() != StateComplete {
		t.Errorf("expected StateComplete, got %s", m.GetState())
	}
	if !complete {
		t.Error("expected match complete event")
	}
}
