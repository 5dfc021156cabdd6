package bots

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"gallery/internal/match"
)

var (
	// ErrStalled means no seat had anything to do while the match was
	// still in play.
	ErrStalled = errors.New("bots: match stalled")
	// ErrStepLimit means the match was still in play after the step budget.
	ErrStepLimit = errors.New("bots: step limit reached")
)

// Bot is the interface all automated seats must implement. A bot only acts
// through the handles it is given; the manager decides when it is asked.
type Bot interface {
	ID() string
	// PlayTurn acts on a live Turn: a normal turn or a pair sub-turn.
	PlayTurn(m *match.Match, p *match.Player, t *match.Turn) error
	// Respond acts on a live Bid handed to p.
	Respond(m *match.Match, p *match.Player, b match.Bid) error
	ProcessSale(seat int, sale match.Sale)
}

// BaseBot provides common functionality for all bots
type BaseBot struct {
	mu sync.Mutex

	id  string
	rng *rand.Rand

	won    int   // lots bought
	sold   int   // lots sold to another seat
	spent  int64 // paid for lots
	earned int64 // received for lots
}

// NewBaseBot creates a new base bot. Bots built from the same seed make
// the same choices.
func NewBaseBot(id string, seed int64) *BaseBot {
	return &BaseBot{
		id:  id,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (b *BaseBot) ID() string {
	return b.id
}

// Tally returns lots won, lots sold, cash spent and cash earned.
func (b *BaseBot) Tally() (won, sold int, spent, earned int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.won, b.sold, b.spent, b.earned
}

// ProcessSale updates the tally when seat took part in the sale
func (b *BaseBot) ProcessSale(seat int, sale match.Sale) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A seller buying its own lot only counts as a purchase.
	switch {
	case sale.Buyer == seat:
		b.won++
		b.spent += sale.Amount
	case sale.Seller == seat:
		b.sold++
		b.earned += sale.Amount
	}
}

// BotManager seats one bot per player and drives a match to completion
type BotManager struct {
	mu sync.Mutex

	bots []Bot
}

// NewBotManager creates a new bot manager
func NewBotManager() *BotManager {
	return &BotManager{}
}

// AddBot adds a bot for the next seat
func (bm *BotManager) AddBot(bot Bot) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.bots = append(bm.bots, bot)
}

// Count returns number of bots
func (bm *BotManager) Count() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return len(bm.bots)
}

// Bot returns the bot in seat, or nil.
func (bm *BotManager) Bot(seat int) Bot {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if seat < 0 || seat >= len(bm.bots) {
		return nil
	}
	return bm.bots[seat]
}

// Seat registers a player for every bot and subscribes the bots to sales.
func (bm *BotManager) Seat(m *match.Match) error {
	bm.mu.Lock()
	bots := make([]Bot, len(bm.bots))
	copy(bots, bm.bots)
	bm.mu.Unlock()

	for _, bot := range bots {
		if _, err := m.AddPlayer(bot.ID()); err != nil {
			return err
		}
	}
	m.OnEvent(func(e match.Event) {
		if e.Type != match.EventSale {
			return
		}
		sale := match.Sale{
			Round:     e.Round,
			Seller:    e.Seat,
			Buyer:     e.Buyer,
			Items:     e.Items,
			Mechanism: e.Mechanism,
			Amount:    e.Amount,
		}
		for seat, bot := range bots {
			if seat == sale.Seller || seat == sale.Buyer {
				bot.ProcessSale(seat, sale)
			}
		}
	})
	return nil
}

// Play asks bots to act until the match completes. Each step answers one
// live Bid, or the active Turn when no Bid is waiting. A bot whose action
// is rejected falls back to the default action, so every step makes
// progress.
func (bm *BotManager) Play(ctx context.Context, m *match.Match, maxSteps int) (int, error) {
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return step, err
		}
		if m.GetState() == match.StateComplete {
			return step, nil
		}
		acted, err := bm.step(m)
		if err != nil {
			return step, err
		}
		if !acted {
			return step, ErrStalled
		}
	}
	if m.GetState() == match.StateComplete {
		return maxSteps, nil
	}
	return maxSteps, ErrStepLimit
}

func (bm *BotManager) step(m *match.Match) (bool, error) {
	for _, p := range m.Players() {
		b := p.Bid()
		if b == nil || b.Resolved() {
			continue
		}
		if ob, ok := b.(*match.OpenBid); ok && !ob.Pending(p.Seat) {
			continue
		}
		if bot := bm.Bot(p.Seat); bot != nil {
			if err := bot.Respond(m, p, b); err == nil {
				return true, nil
			}
		}
		return true, ignoreRejected(fallbackBid(b))
	}

	t := m.ActiveTurn()
	if t == nil {
		return false, nil
	}
	p := m.Player(t.Seat())
	if bot := bm.Bot(t.Seat()); bot != nil {
		if err := bot.PlayTurn(m, p, t); err == nil {
			return true, nil
		}
	}
	return true, ignoreRejected(fallbackTurn(p, t))
}

// fallbackTurn passes a pair offer or an empty hand, otherwise offers the
// first item at no price.
func fallbackTurn(p *match.Player, t *match.Turn) error {
	if _, ok := t.PairOffer(); ok || len(p.Hand()) == 0 {
		return t.Pass()
	}
	return t.Sell(0, 0)
}

func fallbackBid(b match.Bid) error {
	switch b := b.(type) {
	case *match.PriceBid:
		return b.Decline()
	case *match.SealedBid:
		return b.Submit(0)
	case *match.OnceBid:
		return b.Pass()
	case *match.OpenBid:
		return b.Pass()
	}
	return nil
}

// ignoreRejected drops the errors a game action reports when it is a
// no-op; anything else is returned.
func ignoreRejected(err error) error {
	if errors.Is(err, match.ErrInvalidAction) || errors.Is(err, match.ErrStaleAction) {
		return nil
	}
	return err
}
