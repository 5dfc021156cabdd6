package bots

import (
	"gallery/internal/item"
	"gallery/internal/match"
)

// AppraiserConfig configures an appraiser bot
type AppraiserConfig struct {
	ID        string
	Seed      int64
	Markup    float64 // asking price as a multiple of the estimate
	Limit     float64 // highest bid as a multiple of the estimate
	Increment int64   // raise step in ascending auctions
	Contrib   float64 // minimum estimate share for contributing to a pair
}

// AppraiserBot prices every lot from the public value and sold tables:
// what the category is already worth plus the bonus it would earn if the
// round ended now.
type AppraiserBot struct {
	*BaseBot
	config AppraiserConfig
}

// NewAppraiserBot creates a new appraiser bot
func NewAppraiserBot(config AppraiserConfig) *AppraiserBot {
	if config.Increment <= 0 {
		config.Increment = 1000
	}
	return &AppraiserBot{
		BaseBot: NewBaseBot(config.ID, config.Seed),
		config:  config,
	}
}

// Estimate returns the expected payout of one item of c at the end of the
// current round: the bonuses c has earned so far plus the bonus for its
// current rank, or 0 when it would not rank.
func Estimate(snap match.Snapshot, c item.Category) int64 {
	r := min(snap.Round, len(snap.Sold)-1)
	var base int64
	if int(c) < len(snap.Totals) {
		base = snap.Totals[c]
	}
	ranked := match.RankCategories(snap.Sold[r])
	for i, rc := range ranked {
		if i >= len(match.RoundBonuses) {
			break
		}
		if rc != c {
			continue
		}
		bonus := match.RoundBonuses[i]
		if snap.Sold[r][c] == 0 {
			// Nothing sold yet; the rank is a guess.
			bonus /= 2
		}
		return base + bonus
	}
	return 0
}

func lotEstimate(snap match.Snapshot, items []item.Item) int64 {
	var total int64
	for _, it := range items {
		total += Estimate(snap, it.Category)
	}
	return total
}

// round to the nearest 1000, the unit every price is quoted in
func roundPrice(v float64) int64 {
	return int64(v/1000+0.5) * 1000
}

func (a *AppraiserBot) PlayTurn(m *match.Match, p *match.Player, t *match.Turn) error {
	snap := m.Snapshot()
	hand := p.Hand()

	if pairItem, ok := t.PairOffer(); ok {
		est := Estimate(snap, pairItem.Category)
		for i, it := range hand {
			if it.IsPair() || it.Category != pairItem.Category {
				continue
			}
			if float64(est) >= a.config.Contrib*float64(match.RoundBonuses[0]) {
				return t.Sell(i, a.askingPrice(snap, []item.Item{pairItem, it}))
			}
		}
		return t.Pass()
	}
	if len(hand) == 0 {
		return t.Pass()
	}

	// Sell a pair when one is available, otherwise the most valuable item.
	for i, it := range hand {
		if !it.IsPair() {
			continue
		}
		for j, other := range hand {
			if !other.IsPair() && other.Category == it.Category {
				return t.SellPair(i, j, a.askingPrice(snap, []item.Item{it, other}))
			}
		}
	}
	best := 0
	var bestEst int64 = -1
	for i, it := range hand {
		if est := Estimate(snap, it.Category); est > bestEst {
			best, bestEst = i, est
		}
	}
	return t.Sell(best, a.askingPrice(snap, hand[best:best+1]))
}

func (a *AppraiserBot) askingPrice(snap match.Snapshot, items []item.Item) int64 {
	return roundPrice(float64(lotEstimate(snap, items)) * a.config.Markup)
}

// limit is the most this bot pays for the lot, capped at cash. A seller
// bidding on its own lot only pays for it, so it bids lower.
func (a *AppraiserBot) limit(m *match.Match, p *match.Player, b match.Bid) int64 {
	l := roundPrice(float64(lotEstimate(m.Snapshot(), b.Items())) * a.config.Limit)
	if b.Seller() == p.Seat {
		l /= 2
	}
	return max(min(l, p.Cash()), 0)
}

func (a *AppraiserBot) Respond(m *match.Match, p *match.Player, b match.Bid) error {
	limit := a.limit(m, p, b)

	switch b := b.(type) {
	case *match.PriceBid:
		if b.Price() <= limit {
			return b.Accept()
		}
		return b.Decline()
	case *match.SealedBid:
		return b.Submit(limit)
	case *match.OnceBid:
		high, _ := b.HighBid()
		if high+a.config.Increment <= limit {
			return b.Raise(high + a.config.Increment)
		}
		return b.Pass()
	case *match.OpenBid:
		next := b.CurrentBid() + a.config.Increment
		if b.CurrentBidder() != p.Seat && next <= limit {
			return b.Raise(next)
		}
		return b.Pass()
	}
	return nil
}

// Preset appraisers

// NewCautious asks a premium and bids well under its estimate
func NewCautious(id string, seed int64) *AppraiserBot {
	return NewAppraiserBot(AppraiserConfig{
		ID:        id,
		Seed:      seed,
		Markup:    1.2,
		Limit:     0.6,
		Increment: 1000,
		Contrib:   0.5,
	})
}

// NewBold pays close to its estimate and contributes to any pair
func NewBold(id string, seed int64) *AppraiserBot {
	return NewAppraiserBot(AppraiserConfig{
		ID:        id,
		Seed:      seed,
		Markup:    0.9,
		Limit:     0.95,
		Increment: 2000,
		Contrib:   0,
	})
}

// NewDealer works a spread: sells high, buys low
func NewDealer(id string, seed int64) *AppraiserBot {
	return NewAppraiserBot(AppraiserConfig{
		ID:        id,
		Seed:      seed,
		Markup:    1.5,
		Limit:     0.5,
		Increment: 1000,
		Contrib:   0.8,
	})
}
