package match

import "gallery/internal/item"

// startPairOfferLocked circulates a lone PAIR item: each seat clockwise
// from the seller gets a sub-turn to contribute a matching item.
func (m *Match) startPairOfferLocked(seller int, it item.Item) {
	offer := &pairOffer{item: it, seller: seller}
	m.offerPairToLocked(m.nextSeat(seller), offer)
}

func (m *Match) offerPairToLocked(seat int, offer *pairOffer) {
	m.giveTurnLocked(seat, offer)
	m.emit(Event{
		Type:      EventPairOffered,
		Seat:      seat,
		Items:     []item.Item{offer.item},
		Mechanism: item.Pair,
	})
}

// declinePairLocked forwards the offer. Back at the seller, the seller
// keeps the PAIR item for free.
func (m *Match) declinePairLocked(seat int, offer *pairOffer) {
	next := m.nextSeat(seat)
	if next != offer.seller {
		m.offerPairToLocked(next, offer)
		return
	}
	m.current = offer.seller
	l := m.newLotLocked(offer.seller, []item.Item{offer.item})
	m.settleLocked(l, offer.seller, 0)
}
