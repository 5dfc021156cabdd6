package match

import "gallery/internal/item"

// Player is one seat's ledger entry: hand, board and cash.
type Player struct {
	m *Match

	Name string
	Seat int

	hand  []item.Item
	board []item.Item // collected this round
	cash  int64       // may go negative through forced purchases

	turn *Turn
	bid  Bid
}

func (p *Player) Cash() int64 {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return p.cash
}

func (p *Player) Hand() []item.Item {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return append([]item.Item(nil), p.hand...)
}

func (p *Player) Board() []item.Item {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return append([]item.Item(nil), p.board...)
}

// Turn returns the last Turn handed to this seat. It may be Done.
func (p *Player) Turn() *Turn {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return p.turn
}

// Bid returns the last Bid handed to this seat. It may be Resolved.
func (p *Player) Bid() Bid {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return p.bid
}

func (p *Player) removeFromHand(index int) item.Item {
	it := p.hand[index]
	p.hand = append(p.hand[:index:index], p.hand[index+1:]...)
	return it
}
