package match

// onceAuction gives each seat one chance, clockwise from the seat after
// the seller and closing at the seller.
type onceAuction struct {
	lot        *lot
	high       int64
	highBidder int // -1 until someone bids
}

// OnceBid is the single chance of one seat in a one-circuit auction.
type OnceBid struct {
	bidBase
	a *onceAuction
}

// HighBid returns the running high bid and its seat, or -1 if none.
func (b *OnceBid) HighBid() (int64, int) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	return b.a.high, b.a.highBidder
}

func (m *Match) startOnceLocked(l *lot) {
	a := &onceAuction{lot: l, highBidder: -1}
	m.askOnceLocked(a, m.nextSeat(l.seller))
}

func (m *Match) askOnceLocked(a *onceAuction, seat int) {
	m.placeBidLocked(seat, &OnceBid{bidBase: bidBase{m: m, lot: a.lot, seat: seat}, a: a})
}

// Raise bids amount, capped at cash. An amount that does not beat the
// running high bid counts as a pass.
func (b *OnceBid) Raise(amount int64) error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		b.resolved = true
		if cash := b.m.players[b.seat].cash; amount > cash {
			amount = cash
		}
		if amount > b.a.high {
			b.a.high = amount
			b.a.highBidder = b.seat
		}
		b.m.advanceOnceLocked(b.a, b.seat)
		return nil
	})
}

func (b *OnceBid) Pass() error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		b.resolved = true
		b.m.advanceOnceLocked(b.a, b.seat)
		return nil
	})
}

// advanceOnceLocked moves the circuit on from seat. The circuit closes
// after the seller acts, or before reaching the seller when nobody bid,
// in which case the seller keeps the lot for free.
func (m *Match) advanceOnceLocked(a *onceAuction, seat int) {
	seller := a.lot.seller
	if seat == seller {
		m.closeOnceLocked(a)
		return
	}
	next := m.nextSeat(seat)
	if next == seller && a.highBidder < 0 {
		m.closeOnceLocked(a)
		return
	}
	m.askOnceLocked(a, next)
}

func (m *Match) closeOnceLocked(a *onceAuction) {
	if a.highBidder < 0 {
		m.settleLocked(a.lot, a.lot.seller, 0)
		return
	}
	m.settleLocked(a.lot, a.highBidder, a.high)
}
