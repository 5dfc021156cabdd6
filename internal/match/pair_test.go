package match

import (
	"errors"
	"testing"

	"gallery/internal/item"
)

func TestPairOfferNoTakers(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2, p3 := players[0], players[1], players[2]
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair)},
		[]item.Item{item.New(item.CategoryKrypto, item.Price)},
		nil,
	)
	m.sold[0][item.CategoryKrypto] = 3

	if err := p1.Turn().Sell(0, 0); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if m.Round() != 0 {
		t.Fatalf("expected round 0, got %d", m.Round())
	}
	if len(p1.Hand()) != 0 {
		t.Errorf("expected empty hand, got %d", len(p1.Hand()))
	}
	if got, ok := p2.Turn().PairOffer(); !ok || got != item.New(item.CategoryKrypto, item.Pair) {
		t.Errorf("expected pair offer for seat 1, got %v %v", got, ok)
	}
	if m.CurrentSeat() != 1 {
		t.Errorf("expected seat 1 active, got %d", m.CurrentSeat())
	}

	p2.Turn().Pass()
	if m.CurrentSeat() != 2 {
		t.Errorf("expected seat 2 active, got %d", m.CurrentSeat())
	}
	// An empty hand can still decline a pair offer.
	if err := p3.Turn().Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}

	// Seller keeps the item for free.
	assertCash(t, players, 100000, 100000, 100000)
	assertBoards(t, players, 1, 0, 0)
	if got := m.SoldCount(0, item.CategoryKrypto); got != 4 {
		t.Errorf("expected 4 sold, got %d", got)
	}
	if m.CurrentSeat() != 1 {
		t.Errorf("expected seat 1 active, got %d", m.CurrentSeat())
	}
	if !p1.Turn().Done() || !p3.Turn().Done() {
		t.Error("expected seats 0 and 2 to have no live turn")
	}
	turn := p2.Turn()
	if turn.Done() {
		t.Fatal("expected live turn for seat 1")
	}
	if _, ok := turn.PairOffer(); ok {
		t.Error("expected a normal turn, not a pair sub-turn")
	}
}

func TestPairOfferOneContribution(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2, p3 := players[0], players[1], players[2]
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair)},
		[]item.Item{filler},
		[]item.Item{item.New(item.CategoryKrypto, item.Price)},
	)

	p1.Turn().Sell(0, 0)
	p2.Turn().Pass()
	if err := p3.Turn().Sell(0, 25000); err != nil {
		t.Fatalf("contribution failed: %v", err)
	}
	if m.CurrentSeat() != 2 {
		t.Errorf("contributor should be the active seat, got %d", m.CurrentSeat())
	}

	// The PRICE protocol runs with the contributor as seller.
	if p1.Bid().Seller() != 2 {
		t.Errorf("expected seller 2, got %d", p1.Bid().Seller())
	}
	if got := len(p1.Bid().Items()); got != 2 {
		t.Errorf("expected 2 items in the lot, got %d", got)
	}
	p1.Bid().(*PriceBid).Decline()
	p2.Bid().(*PriceBid).Decline()

	assertCash(t, players, 100000, 100000, 75000)
	assertBoards(t, players, 0, 0, 2)
	if got := m.SoldCount(0, item.CategoryKrypto); got != 2 {
		t.Errorf("expected 2 sold, got %d", got)
	}
	if m.CurrentSeat() != 0 {
		t.Errorf("expected seat 0 active, got %d", m.CurrentSeat())
	}
	if p1.Turn().Done() {
		t.Error("expected live turn for seat 0")
	}
}

func TestPairSoldTogether(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2, p3 := players[0], players[1], players[2]
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair), item.New(item.CategoryKrypto, item.Price)},
		[]item.Item{filler},
		nil,
	)

	if err := p1.Turn().SellPair(0, 1, 10000); err != nil {
		t.Fatalf("SellPair failed: %v", err)
	}
	if p2.Bid().Mechanism() != item.Price {
		t.Errorf("expected PRICE protocol, got %s", p2.Bid().Mechanism())
	}
	p2.Bid().(*PriceBid).Accept()

	if got := m.SoldCount(0, item.CategoryKrypto); got != 2 {
		t.Errorf("expected 2 sold, got %d", got)
	}
	assertCash(t, players, 110000, 90000, 100000)
	assertBoards(t, players, 0, 2, 0)
	if m.CurrentSeat() != 1 {
		t.Errorf("expected seat 1 active, got %d", m.CurrentSeat())
	}
	if p3.Turn() != nil {
		t.Error("seat 2 should not have been handed a turn")
	}
}

func TestPairSubTurnValidation(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2 := players[0], players[1]
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair)},
		[]item.Item{
			item.New(item.CategoryYoko, item.Price),
			item.New(item.CategoryKrypto, item.Pair),
			item.New(item.CategoryKrypto, item.Open),
		},
		nil,
	)
	p1.Turn().Sell(0, 0)
	turn := p2.Turn()

	if err := turn.Sell(0, 1000); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for other category, got %v", err)
	}
	if err := turn.Sell(1, 1000); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for second PAIR, got %v", err)
	}
	if err := turn.SellPair(1, 2, 1000); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for SellPair on sub-turn, got %v", err)
	}
	if got := len(p2.Hand()); got != 3 {
		t.Errorf("expected hand unchanged, got %d", got)
	}
	if turn.Done() {
		t.Error("sub-turn should survive rejected actions")
	}

	if err := turn.Sell(2, 1000); err != nil {
		t.Fatalf("contribution failed: %v", err)
	}
	if p1.Bid().Mechanism() != item.Open {
		t.Errorf("expected OPEN protocol, got %s", p1.Bid().Mechanism())
	}
	if got := m.Snapshot().InFlight; got != 2 {
		t.Errorf("expected 2 items in flight, got %d", got)
	}
}

func TestTerminatorSingleItem(t *testing.T) {
	m, players := setupMatch(t, 3)
	setHands(players, []item.Item{item.New(item.CategoryKrypto, item.Pair)}, nil, nil)
	m.sold[0][item.CategoryKrypto] = 4

	if err := players[0].Turn().Sell(0, 0); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}

	if m.Round() != 1 {
		t.Fatalf("expected round 1, got %d", m.Round())
	}
	if got := m.Value(item.CategoryKrypto, 0); got != 30000 {
		t.Errorf("expected Krypto value 30000, got %d", got)
	}
	if got := m.SoldCount(0, item.CategoryKrypto); got != 5 {
		t.Errorf("expected sold count 5, got %d", got)
	}
	assertCash(t, players, 100000, 100000, 100000)
	if got := m.Snapshot().Discarded; got != 1 {
		t.Errorf("expected 1 discarded item, got %d", got)
	}
}

func TestTerminatorPairOffered(t *testing.T) {
	m, players := setupMatch(t, 3)
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair), item.New(item.CategoryKrypto, item.Price)},
		nil, nil,
	)
	m.sold[0][item.CategoryKrypto] = 3

	if err := players[0].Turn().SellPair(0, 1, 0); err != nil {
		t.Fatalf("SellPair failed: %v", err)
	}
	if m.Round() != 1 {
		t.Fatalf("expected round 1, got %d", m.Round())
	}
	if got := m.Value(item.CategoryKrypto, 0); got != 30000 {
		t.Errorf("expected Krypto value 30000, got %d", got)
	}
	assertCash(t, players, 100000, 100000, 100000)
	assertBoards(t, players, 0, 0, 0)
}

// With four already sold the pair is accepted as the terminator rather
// than rejected.
func TestTerminatorPairAtFourSold(t *testing.T) {
	m, players := setupMatch(t, 3)
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair), item.New(item.CategoryKrypto, item.Once)},
		[]item.Item{filler}, nil,
	)
	m.sold[0][item.CategoryKrypto] = 4

	turn := players[0].Turn()
	if err := turn.SellPair(0, 1, 0); err != nil {
		t.Fatalf("SellPair failed: %v", err)
	}
	if !turn.Done() {
		t.Error("expected the turn to be used")
	}
	if m.Round() != 1 {
		t.Fatalf("expected round 1, got %d", m.Round())
	}
	if got := m.SoldCount(0, item.CategoryKrypto); got != MaxSoldPerRound {
		t.Errorf("expected sold count %d, got %d", MaxSoldPerRound, got)
	}
	if snap := m.Snapshot(); snap.Discarded != 2 {
		t.Errorf("expected both items discarded, got %d", snap.Discarded)
	}
	if len(m.Sales()) != 0 {
		t.Errorf("expected no sale, got %d", len(m.Sales()))
	}
}

func TestTerminatorOnContribution(t *testing.T) {
	m, players := setupMatch(t, 3)
	p1, p2, p3 := players[0], players[1], players[2]
	setHands(players,
		[]item.Item{item.New(item.CategoryKrypto, item.Pair)},
		nil,
		[]item.Item{item.New(item.CategoryKrypto, item.Price)},
	)
	m.sold[0][item.CategoryKrypto] = 3

	p1.Turn().Sell(0, 0)
	if m.Round() != 0 {
		t.Fatalf("a lone PAIR at 3 sold must not end the round")
	}
	p2.Turn().Pass()
	if err := p3.Turn().Sell(0, 10000); err != nil {
		t.Fatalf("contribution failed: %v", err)
	}

	if m.Round() != 1 {
		t.Fatalf("expected round 1, got %d", m.Round())
	}
	if got := m.Value(item.CategoryKrypto, 0); got != 30000 {
		t.Errorf("expected Krypto value 30000, got %d", got)
	}
	assertCash(t, players, 100000, 100000, 100000)
	assertBoards(t, players, 0, 0, 0)
	// Play resumes clockwise from the seat that ended the round.
	if m.CurrentSeat() != 0 {
		t.Errorf("expected seat 0 active, got %d", m.CurrentSeat())
	}
	if p1.Turn().Done() {
		t.Error("expected live turn for seat 0")
	}
	if !p2.Turn().Done() || !p3.Turn().Done() {
		t.Error("expected seats 1 and 2 to have no live turn")
	}
}

func TestEndRoundDiscardsPendingPair(t *testing.T) {
	m, players := setupMatch(t, 3)
	setHands(players, []item.Item{item.New(item.CategoryKrypto, item.Pair)}, []item.Item{filler}, nil)

	players[0].Turn().Sell(0, 0)
	sub := players[1].Turn()
	if err := m.EndRound(); err != nil {
		t.Fatalf("EndRound failed: %v", err)
	}
	if !sub.Done() {
		t.Error("pair sub-turn should be superseded")
	}
	if err := sub.Pass(); !errors.Is(err, ErrStaleAction) {
		t.Errorf("expected ErrStaleAction, got %v", err)
	}
	if got := m.Snapshot().TotalItems(); got != item.DeckSize {
		t.Errorf("expected %d items, got %d", item.DeckSize, got)
	}
}
