package match

// priceAuction offers a named price to each seat clockwise from the seller.
type priceAuction struct {
	lot   *lot
	price int64
}

// PriceBid asks one seat to accept or decline the named price.
type PriceBid struct {
	bidBase
	a *priceAuction
}

func (b *PriceBid) Price() int64 { return b.a.price }

func (m *Match) startPriceLocked(l *lot, price int64) {
	a := &priceAuction{lot: l, price: price}
	m.askPriceLocked(a, m.nextSeat(l.seller))
}

func (m *Match) askPriceLocked(a *priceAuction, seat int) {
	b := &PriceBid{bidBase: bidBase{m: m, lot: a.lot, seat: seat}, a: a}
	m.placeBidLocked(seat, b)
}

// Accept buys at the named price. A seat that cannot cover the price
// declines instead.
func (b *PriceBid) Accept() error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		b.resolved = true
		if b.m.players[b.seat].cash >= b.a.price {
			b.m.settleLocked(b.a.lot, b.seat, b.a.price)
			return nil
		}
		b.m.declinePriceLocked(b.a, b.seat)
		return nil
	})
}

// Decline forwards the offer clockwise.
func (b *PriceBid) Decline() error {
	return b.m.run(func() error {
		if !b.liveLocked() {
			return ErrStaleAction
		}
		b.resolved = true
		b.m.declinePriceLocked(b.a, b.seat)
		return nil
	})
}

// declinePriceLocked moves the offer on from seat. When it would return
// to the seller, the seller is forced to buy, charged at most its cash.
func (m *Match) declinePriceLocked(a *priceAuction, seat int) {
	next := m.nextSeat(seat)
	if next != a.lot.seller {
		m.askPriceLocked(a, next)
		return
	}

	charge := a.price
	if cash := m.players[next].cash; cash < charge {
		charge = max(cash, 0)
	}
	m.settleLocked(a.lot, next, charge)
}
