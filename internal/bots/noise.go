package bots

import (
	"gallery/internal/match"
)

// NoiseBot makes random choices to give matches some texture
type NoiseBot struct {
	*BaseBot
	maxPrice int64   // highest price it names or bids
	bidRate  float64 // chance of bidding rather than passing
}

// NewNoiseBot creates a noise bot
func NewNoiseBot(id string, seed int64, maxPrice int64, bidRate float64) *NoiseBot {
	return &NoiseBot{
		BaseBot:  NewBaseBot(id, seed),
		maxPrice: maxPrice,
		bidRate:  bidRate,
	}
}

func (n *NoiseBot) randomPrice() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.Int63n(n.maxPrice/1000+1) * 1000
}

func (n *NoiseBot) chance(p float64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.Float64() < p
}

func (n *NoiseBot) intn(k int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.Intn(k)
}

func (n *NoiseBot) PlayTurn(m *match.Match, p *match.Player, t *match.Turn) error {
	hand := p.Hand()
	if pairItem, ok := t.PairOffer(); ok {
		if n.chance(n.bidRate) {
			for i, it := range hand {
				if !it.IsPair() && it.Category == pairItem.Category {
					return t.Sell(i, n.randomPrice())
				}
			}
		}
		return t.Pass()
	}
	if len(hand) == 0 {
		return t.Pass()
	}
	return t.Sell(n.intn(len(hand)), n.randomPrice())
}

func (n *NoiseBot) Respond(m *match.Match, p *match.Player, b match.Bid) error {
	switch b := b.(type) {
	case *match.PriceBid:
		if n.chance(n.bidRate) {
			return b.Accept()
		}
		return b.Decline()
	case *match.SealedBid:
		return b.Submit(n.randomPrice())
	case *match.OnceBid:
		high, _ := b.HighBid()
		if n.chance(n.bidRate) {
			return b.Raise(high + n.randomPrice() + 1000)
		}
		return b.Pass()
	case *match.OpenBid:
		// Raises stop at maxPrice so the auction always closes.
		next := b.CurrentBid() + 1000
		if b.CurrentBidder() != p.Seat && next <= n.maxPrice && n.chance(n.bidRate) {
			return b.Raise(next)
		}
		return b.Pass()
	}
	return nil
}

// Preset noise bots

// NewRandomSmall names small prices and bids often
func NewRandomSmall(id string, seed int64) *NoiseBot {
	return NewNoiseBot(id, seed, 20000, 0.5)
}

// NewRandomLarge names large prices and bids rarely
func NewRandomLarge(id string, seed int64) *NoiseBot {
	return NewNoiseBot(id, seed, 60000, 0.2)
}
