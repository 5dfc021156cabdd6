package match

// openAuction is the auctioneer state shared by every seat's OpenBid.
// The seller holds the opening bid. A raise re-opens the floor for every
// other seat; the lot settles once no seat has an unanswered chance.
type openAuction struct {
	lot     *lot
	current int64
	bidder  int
	pending []bool
}

// OpenBid is one seat's view of a shared open auction.
type OpenBid struct {
	bidBase
	a *openAuction
}

func (m *Match) startOpenLocked(l *lot, price int64) {
	a := &openAuction{
		lot:     l,
		current: price,
		bidder:  l.seller,
		pending: make([]bool, len(m.players)),
	}
	for seat := range a.pending {
		a.pending[seat] = true
	}
	for seat := range m.players {
		m.placeBidLocked(seat, &OpenBid{bidBase: bidBase{m: m, lot: l, seat: seat}, a: a})
	}
}

func (b *OpenBid) CurrentBid() int64 {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	return b.a.current
}

func (b *OpenBid) CurrentBidder() int {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	return b.a.bidder
}

// Pending reports whether seat still has an unanswered chance to outbid.
func (b *OpenBid) Pending(seat int) bool {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if seat < 0 || seat >= len(b.a.pending) {
		return false
	}
	return b.a.pending[seat]
}

// Raise bids amount, capped at cash. It is rejected unless it beats the
// current bid and the seat is not already the current bidder.
func (b *OpenBid) Raise(amount int64) error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		if cash := b.m.players[b.seat].cash; amount > cash {
			amount = cash
		}
		if b.seat == b.a.bidder {
			return invalid("seat %d already holds the bid", b.seat)
		}
		if amount <= b.a.current {
			return invalid("bid %d does not beat %d", amount, b.a.current)
		}

		b.a.current = amount
		b.a.bidder = b.seat
		for seat := range b.a.pending {
			b.a.pending[seat] = seat != b.seat
		}
		return nil
	})
}

// Pass gives up this seat's chance until the next raise.
func (b *OpenBid) Pass() error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		b.a.pending[b.seat] = false
		for _, p := range b.a.pending {
			if p {
				return nil
			}
		}
		b.m.settleLocked(b.a.lot, b.a.bidder, b.a.current)
		return nil
	})
}
