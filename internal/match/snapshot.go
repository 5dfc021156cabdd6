package match

import "gallery/internal/item"

// PlayerView is a read-only copy of one seat.
type PlayerView struct {
	Seat  int         `json:"seat"`
	Name  string      `json:"name"`
	Cash  int64       `json:"cash"`
	Hand  []item.Item `json:"hand"`
	Board []item.Item `json:"board"`
}

// Snapshot is a read-only copy of the whole match for presentation and
// persistence. Mutating it has no effect on the match.
type Snapshot struct {
	ID            string       `json:"id"`
	State         string       `json:"state"`
	Round         int          `json:"round"`
	Rounds        int          `json:"rounds"`
	CurrentSeat   int          `json:"current_seat"`
	Players       []PlayerView `json:"players"`
	Sold          [][]int      `json:"sold"`   // [round][category]
	Values        [][]int64    `json:"values"` // [category][round]
	Totals        []int64      `json:"totals"` // [category], bonuses so far
	DeckRemaining int          `json:"deck_remaining"`
	InFlight      int          `json:"in_flight"`
	Discarded     int          `json:"discarded"`
	Spent         int          `json:"spent"`
	Sales         []Sale       `json:"sales"`
}

// TotalItems counts every item the match accounts for. It equals the
// deck size for the whole match.
func (s Snapshot) TotalItems() int {
	total := s.DeckRemaining + s.InFlight + s.Discarded + s.Spent
	for _, p := range s.Players {
		total += len(p.Hand) + len(p.Board)
	}
	return total
}

func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		ID:            m.ID,
		State:         m.state.String(),
		Round:         m.round,
		Rounds:        m.Config.Rounds,
		CurrentSeat:   m.current,
		Players:       make([]PlayerView, len(m.players)),
		Sold:          make([][]int, len(m.sold)),
		Values:        make([][]int64, len(m.values)),
		DeckRemaining: len(m.deck),
		Discarded:     len(m.discarded),
		Spent:         len(m.spent),
		Sales:         append([]Sale(nil), m.sales...),
		Totals:        append([]int64(nil), m.totals...),
	}
	if m.lot != nil && !m.lot.settled {
		s.InFlight += len(m.lot.items)
	}
	if m.turn != nil && !m.turn.done && m.turn.pair != nil {
		s.InFlight++
	}
	for i, p := range m.players {
		s.Players[i] = PlayerView{
			Seat:  p.Seat,
			Name:  p.Name,
			Cash:  p.cash,
			Hand:  append([]item.Item(nil), p.hand...),
			Board: append([]item.Item(nil), p.board...),
		}
	}
	for r := range m.sold {
		s.Sold[r] = append([]int(nil), m.sold[r]...)
	}
	for c := range m.values {
		s.Values[c] = append([]int64(nil), m.values[c]...)
	}
	return s
}
