package match

import (
	"sort"
	"time"

	"gallery/internal/item"
)

// EndRound ends the current round now, as if a terminator had been
// sold. Items in flight are discarded and live Bids go stale.
func (m *Match) EndRound() error {
	return m.run(func() error {
		switch m.state {
		case StateLobby:
			return ErrNotStarted
		case StateComplete:
			return ErrMatchComplete
		}
		m.endRoundLocked()
		return nil
	})
}

func (m *Match) dealLocked() {
	n, err := item.DealCount(len(m.players), m.round)
	if err != nil {
		return
	}
	for _, p := range m.players {
		take := min(n, len(m.deck))
		p.hand = append(p.hand, m.deck[:take]...)
		m.deck = m.deck[take:]
	}
}

// endRoundLocked values the round, pays out boards and either deals the
// next round or completes the match.
func (m *Match) endRoundLocked() {
	if m.lot != nil && !m.lot.settled {
		m.lot.settled = true
		m.discarded = append(m.discarded, m.lot.items...)
		m.lot = nil
	}
	if m.turn != nil && !m.turn.done {
		m.turn.done = true
		if m.turn.pair != nil {
			m.discarded = append(m.discarded, m.turn.pair.item)
		}
	}

	r := m.round
	m.valueRoundLocked(r)

	for _, p := range m.players {
		for _, it := range p.board {
			p.cash += m.values[it.Category][r]
		}
		m.spent = append(m.spent, p.board...)
		p.board = nil
	}

	values := make([]int64, item.NumCategories)
	for c := range values {
		values[c] = m.values[c][r]
	}
	m.emit(Event{Type: EventRoundEnded, Seat: m.current, Values: values})

	m.round++
	if m.round >= m.Config.Rounds {
		m.state = StateComplete
		m.EndedAt = time.Now()
		m.turn = nil
		m.emit(Event{Type: EventMatchComplete})
		return
	}

	m.current = m.nextSeat(m.current)
	m.dealLocked()
	m.openTurnLocked(m.current)
}

// valueRoundLocked adds the round bonus to the running total of the first
// three ranked categories, which are then worth that total. Every other
// category is worth 0 this round and keeps its total for later rounds.
func (m *Match) valueRoundLocked(r int) {
	ranked := RankCategories(m.sold[r])
	for i, bonus := range RoundBonuses {
		if i >= len(ranked) {
			break
		}
		c := ranked[i]
		m.totals[c] += bonus
		m.values[c][r] = m.totals[c]
	}
}

// RankCategories orders categories by sold count, most first, ties by
// category index. Only the first len(RoundBonuses) entries score, even
// when later categories tie with a scoring one.
func RankCategories(sold []int) []item.Category {
	ranked := make([]item.Category, len(sold))
	for c := range ranked {
		ranked[c] = item.Category(c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return sold[ranked[i]] > sold[ranked[j]]
	})
	return ranked
}
