package match

import "gallery/internal/item"

// EventType identifies a match event
type EventType int

const (
	EventMatchStarted EventType = iota
	EventTurnStarted
	EventPairOffered
	EventBidRequested
	EventSale
	EventRoundTerminated
	EventRoundEnded
	EventMatchComplete
)

func (e EventType) String() string {
	switch e {
	case EventMatchStarted:
		return "match_started"
	case EventTurnStarted:
		return "turn_started"
	case EventPairOffered:
		return "pair_offered"
	case EventBidRequested:
		return "bid_requested"
	case EventSale:
		return "sale"
	case EventRoundTerminated:
		return "round_terminated"
	case EventRoundEnded:
		return "round_ended"
	case EventMatchComplete:
		return "match_complete"
	default:
		return "unknown"
	}
}

// MarshalText lets events serialize their type by name.
func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Event describes a state change. Fields not relevant to Type are zero.
type Event struct {
	Type      EventType      `json:"type"`
	MatchID   string         `json:"match_id"`
	Round     int            `json:"round"`
	Seat      int            `json:"seat"`
	Buyer     int            `json:"buyer"`
	Items     []item.Item    `json:"items,omitempty"`
	Mechanism item.Mechanism `json:"mechanism"`
	Amount    int64          `json:"amount,omitempty"`
	Values    []int64        `json:"values,omitempty"` // per-category value at round end
}

// Sale is one settled lot.
type Sale struct {
	Seq       int            `json:"seq"`
	Round     int            `json:"round"`
	Seller    int            `json:"seller"`
	Buyer     int            `json:"buyer"`
	Items     []item.Item    `json:"items"`
	Mechanism item.Mechanism `json:"mechanism"`
	Amount    int64          `json:"amount"`
}

// OnEvent registers a listener. Listeners run after the match lock is
// released, in registration order.
func (m *Match) OnEvent(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Match) emit(e Event) {
	e.MatchID = m.ID
	e.Round = m.round
	m.pending = append(m.pending, e)
}

// run executes fn under the match lock, then delivers queued events.
func (m *Match) run(fn func() error) error {
	m.mu.Lock()
	err := fn()
	events := m.pending
	m.pending = nil
	listeners := make([]func(Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
	}
	return err
}
