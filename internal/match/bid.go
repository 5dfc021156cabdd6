package match

import "gallery/internal/item"

// Bid is a pending decision handed to one seat. Concrete handles are
// *PriceBid, *SealedBid, *OnceBid and *OpenBid.
type Bid interface {
	Seat() int
	Seller() int
	Mechanism() item.Mechanism
	Items() []item.Item
	// Resolved reports whether the handle can no longer act.
	Resolved() bool
}

// lot is the item set in flight for one protocol run.
type lot struct {
	seq       uint64
	seller    int
	items     []item.Item
	mechanism item.Mechanism
	settled   bool
}

func (l *lot) category() item.Category { return l.items[0].Category }

func (m *Match) newLotLocked(seller int, items []item.Item) *lot {
	mech := items[0].Mechanism
	for _, it := range items {
		if !it.IsPair() {
			mech = it.Mechanism
			break
		}
	}
	m.lotSeq++
	l := &lot{seq: m.lotSeq, seller: seller, items: items, mechanism: mech}
	m.lot = l
	return l
}

// bidBase holds what every handle shares.
type bidBase struct {
	m        *Match
	lot      *lot
	seat     int
	resolved bool
}

func (b *bidBase) Seat() int                 { return b.seat }
func (b *bidBase) Seller() int               { return b.lot.seller }
func (b *bidBase) Mechanism() item.Mechanism { return b.lot.mechanism }
func (b *bidBase) Items() []item.Item        { return append([]item.Item(nil), b.lot.items...) }

func (b *bidBase) Resolved() bool {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	return !b.liveLocked()
}

// liveLocked compares sequence numbers rather than handle identity.
func (b *bidBase) liveLocked() bool {
	return !b.resolved && !b.lot.settled && b.m.lot != nil && b.m.lot.seq == b.lot.seq
}

func (m *Match) placeBidLocked(seat int, b Bid) {
	m.players[seat].bid = b
	m.emit(Event{Type: EventBidRequested, Seat: seat, Mechanism: b.Mechanism()})
}

// settleLocked transfers the lot to buyer and advances play. The buyer
// pays the seller; when buyer is the seller the amount leaves the game.
// It runs at most once per lot.
func (m *Match) settleLocked(l *lot, buyer int, amount int64) {
	if l.settled {
		return
	}
	l.settled = true
	m.lot = nil

	b := m.players[buyer]
	b.cash -= amount
	if buyer != l.seller {
		m.players[l.seller].cash += amount
	}
	b.board = append(b.board, l.items...)
	m.sold[m.round][l.category()] += len(l.items)

	sale := Sale{
		Seq:       len(m.sales) + 1,
		Round:     m.round,
		Seller:    l.seller,
		Buyer:     buyer,
		Items:     append([]item.Item(nil), l.items...),
		Mechanism: l.mechanism,
		Amount:    amount,
	}
	m.sales = append(m.sales, sale)
	m.emit(Event{
		Type:      EventSale,
		Seat:      l.seller,
		Buyer:     buyer,
		Items:     sale.Items,
		Mechanism: l.mechanism,
		Amount:    amount,
	})

	m.openTurnLocked(m.nextSeat(l.seller))
}
