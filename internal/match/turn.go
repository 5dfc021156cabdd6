package match

import "gallery/internal/item"

// Turn is the decision context of the seat that must offer an item.
// A pair sub-turn is a Turn that carries the PAIR item awaiting a
// contribution; only single items of the same category may be sold on it.
type Turn struct {
	m    *Match
	seq  uint64
	seat int
	done bool

	pair *pairOffer
}

type pairOffer struct {
	item   item.Item
	seller int // seat that offered the PAIR item alone
}

func (t *Turn) Seat() int   { return t.seat }
func (t *Turn) Seq() uint64 { return t.seq }

// Done reports whether the turn has been used or superseded.
func (t *Turn) Done() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return !t.liveLocked()
}

// PairOffer returns the PAIR item awaiting a contribution, if this is a
// pair sub-turn.
func (t *Turn) PairOffer() (item.Item, bool) {
	if t.pair == nil {
		return item.Item{}, false
	}
	return t.pair.item, true
}

func (t *Turn) liveLocked() bool {
	return !t.done && t.m.state == StatePlaying && t.m.turnSeq == t.seq
}

// Sell offers hand[index]. price is the named price for PRICE items and
// the starting bid for OPEN items; other mechanisms ignore it.
//
// On a pair sub-turn this contributes hand[index] to the pending PAIR item.
func (t *Turn) Sell(index int, price int64) error {
	return t.m.run(func() error {
		if !t.liveLocked() {
			return ErrStaleAction
		}
		p := t.m.players[t.seat]
		if index < 0 || index >= len(p.hand) {
			return invalid("hand index %d out of range", index)
		}
		it := p.hand[index]

		if t.pair != nil {
			if it.IsPair() || it.Category != t.pair.item.Category {
				return invalid("pair offer needs a single %s item", t.pair.item.Category)
			}
			if err := checkPrice(it.Mechanism, price); err != nil {
				return err
			}
			p.removeFromHand(index)
			t.done = true
			t.m.current = t.seat
			t.m.offerLocked(t.seat, []item.Item{t.pair.item, it}, price)
			return nil
		}

		if !it.IsPair() {
			if err := checkPrice(it.Mechanism, price); err != nil {
				return err
			}
		}
		p.removeFromHand(index)
		t.done = true
		t.m.offerLocked(t.seat, []item.Item{it}, price)
		return nil
	})
}

// SellPair offers the PAIR item hand[index] together with the matching
// non-PAIR item hand[pairedIndex]. The lot runs under the mechanism of
// the paired item.
func (t *Turn) SellPair(index, pairedIndex int, price int64) error {
	return t.m.run(func() error {
		if !t.liveLocked() {
			return ErrStaleAction
		}
		if t.pair != nil {
			return invalid("pair offer accepts a single item")
		}
		p := t.m.players[t.seat]
		if index < 0 || index >= len(p.hand) || pairedIndex < 0 || pairedIndex >= len(p.hand) {
			return invalid("hand index out of range")
		}
		if index == pairedIndex {
			return invalid("pair needs two distinct items")
		}
		first, second := p.hand[index], p.hand[pairedIndex]
		if !first.IsPair() {
			return invalid("%s is not a PAIR item", first)
		}
		if second.IsPair() {
			return invalid("paired item %s cannot itself be PAIR", second)
		}
		if first.Category != second.Category {
			return invalid("pair categories differ: %s vs %s", first.Category, second.Category)
		}
		if err := checkPrice(second.Mechanism, price); err != nil {
			return err
		}

		// Remove the higher index first so the lower stays valid.
		hi, lo := index, pairedIndex
		if lo > hi {
			hi, lo = lo, hi
		}
		p.removeFromHand(hi)
		p.removeFromHand(lo)
		t.done = true
		t.m.offerLocked(t.seat, []item.Item{first, second}, price)
		return nil
	})
}

// Pass declines a pair offer, forwarding it clockwise. On a normal turn it
// is only allowed when the seat holds no items.
func (t *Turn) Pass() error {
	return t.m.run(func() error {
		if !t.liveLocked() {
			return ErrStaleAction
		}
		if t.pair != nil {
			t.done = true
			t.m.declinePairLocked(t.seat, t.pair)
			return nil
		}
		if len(t.m.players[t.seat].hand) > 0 {
			return invalid("seat %d must offer an item", t.seat)
		}
		t.done = true
		t.m.openTurnLocked(t.m.nextSeat(t.seat))
		return nil
	})
}

func checkPrice(mech item.Mechanism, price int64) error {
	if (mech == item.Price || mech == item.Open) && price < 0 {
		return invalid("price must be >= 0, got %d", price)
	}
	return nil
}

// openTurnLocked hands a normal Turn to seat. When no seat holds an item
// the round ends instead.
func (m *Match) openTurnLocked(seat int) {
	if m.state != StatePlaying {
		return
	}
	if m.handsEmptyLocked() {
		m.endRoundLocked()
		return
	}
	m.giveTurnLocked(seat, nil)
	m.emit(Event{Type: EventTurnStarted, Seat: seat})
}

func (m *Match) giveTurnLocked(seat int, offer *pairOffer) *Turn {
	m.turnSeq++
	t := &Turn{m: m, seq: m.turnSeq, seat: seat, pair: offer}
	m.turn = t
	m.current = seat
	m.players[seat].turn = t
	return t
}

func (m *Match) handsEmptyLocked() bool {
	for _, p := range m.players {
		if len(p.hand) > 0 {
			return false
		}
	}
	return true
}

// offerLocked runs the round-terminator check and dispatches the lot.
// The items have already left the seller's hand.
func (m *Match) offerLocked(seller int, items []item.Item, price int64) {
	category := items[0].Category
	sold := m.sold[m.round][category]
	if sold+len(items) >= MaxSoldPerRound {
		m.sold[m.round][category] = MaxSoldPerRound
		m.discarded = append(m.discarded, items...)
		m.emit(Event{Type: EventRoundTerminated, Seat: seller, Items: items})
		m.endRoundLocked()
		return
	}

	if len(items) == 1 && items[0].IsPair() {
		m.startPairOfferLocked(seller, items[0])
		return
	}

	l := m.newLotLocked(seller, items)
	switch l.mechanism {
	case item.Price:
		m.startPriceLocked(l, price)
	case item.Blind:
		m.startSealedLocked(l)
	case item.Once:
		m.startOnceLocked(l)
	case item.Open:
		m.startOpenLocked(l, price)
	}
}
