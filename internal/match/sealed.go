package match

// sealedAuction collects one amount from every seat, seller included.
type sealedAuction struct {
	lot       *lot
	amounts   []int64
	submitted []bool
}

// SealedBid is one seat's slot in a sealed-bid auction.
type SealedBid struct {
	bidBase
	a *sealedAuction
}

func (m *Match) startSealedLocked(l *lot) {
	a := &sealedAuction{
		lot:       l,
		amounts:   make([]int64, len(m.players)),
		submitted: make([]bool, len(m.players)),
	}
	for seat := range m.players {
		m.placeBidLocked(seat, &SealedBid{bidBase: bidBase{m: m, lot: l, seat: seat}, a: a})
	}
}

// Submit records this seat's amount, capped at its cash. The auction
// resolves once every seat has submitted.
func (b *SealedBid) Submit(amount int64) error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		if amount < 0 {
			return invalid("amount must be >= 0, got %d", amount)
		}
		b.resolved = true

		if cash := b.m.players[b.seat].cash; amount > cash {
			amount = max(cash, 0)
		}
		b.a.amounts[b.seat] = amount
		b.a.submitted[b.seat] = true

		for _, ok := range b.a.submitted {
			if !ok {
				return nil
			}
		}
		winner, high := b.a.winner(len(b.m.players))
		b.m.settleLocked(b.a.lot, winner, high)
		return nil
	})
}

// winner picks the highest amount. Ties go to the first seat scanning
// clockwise from the one after the seller; the seller is checked last.
func (a *sealedAuction) winner(seats int) (int, int64) {
	var high int64
	for _, v := range a.amounts {
		if v > high {
			high = v
		}
	}
	for i := 1; i <= seats; i++ {
		seat := (a.lot.seller + i) % seats
		if a.amounts[seat] == high {
			return seat, high
		}
	}
	return a.lot.seller, high
}
