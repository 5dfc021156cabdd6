package match

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gallery/internal/item"
)

// State represents the lifecycle state of a match
type State int

const (
	StateLobby    State = iota // Seating players
	StatePlaying               // Rounds in progress
	StateComplete              // All rounds valued
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "LOBBY"
	case StatePlaying:
		return "PLAYING"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// MaxSoldPerRound is the sale count of a category that ends the round.
const MaxSoldPerRound = 5

// RoundBonuses are awarded to the first three ranked categories.
var RoundBonuses = []int64{30000, 20000, 10000}

// MatchConfig contains configuration for a match
type MatchConfig struct {
	StartingCash int64       // Cash each seat starts with
	Rounds       int         // Scoring rounds, at most 3
	Seed         int64       // Deck permutation seed (0 => time-based)
	Deck         []item.Item // Optional fixed deal order; overrides Seed
}

// DefaultConfig returns the canonical game settings
func DefaultConfig() MatchConfig {
	return MatchConfig{
		StartingCash: 100000,
		Rounds:       3,
	}
}

func (c MatchConfig) validate() error {
	if c.StartingCash < 0 {
		return fmt.Errorf("StartingCash must be >= 0")
	}
	if c.Rounds <= 0 || c.Rounds > 3 {
		return fmt.Errorf("Rounds must be between 1 and 3, got %d", c.Rounds)
	}
	return nil
}

// Match is one game: the ledger plus the turn and round controllers.
// All exported methods are safe for concurrent use; actions are applied
// one at a time.
type Match struct {
	mu sync.Mutex

	ID        string
	Config    MatchConfig
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	state   State
	players []*Player

	deck      []item.Item
	discarded []item.Item // terminator items and lots cut off by EndRound
	spent     []item.Item // boards cleared after round valuation

	round   int
	current int // active seat

	sold   [][]int   // [round][category]
	values [][]int64 // [category][round], what one item paid that round
	totals []int64   // [category], bonuses awarded so far

	turn    *Turn
	turnSeq uint64
	lot     *lot
	lotSeq  uint64

	sales []Sale

	listeners []func(Event)
	pending   []Event
}

// NewMatch creates a new match in lobby state
func NewMatch(config MatchConfig) (*Match, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	deck := config.Deck
	if deck == nil {
		deck = item.Shuffled(config.Seed)
	} else {
		deck = append([]item.Item(nil), deck...)
	}

	m := &Match{
		ID:        uuid.New().String(),
		Config:    config,
		CreatedAt: time.Now(),
		state:     StateLobby,
		deck:      deck,
		sold:      make([][]int, config.Rounds),
		values:    make([][]int64, item.NumCategories),
		totals:    make([]int64, item.NumCategories),
	}
	for r := range m.sold {
		m.sold[r] = make([]int, item.NumCategories)
	}
	for c := range m.values {
		m.values[c] = make([]int64, config.Rounds)
	}
	return m, nil
}

// AddPlayer seats a new player in the next clockwise seat
func (m *Match) AddPlayer(name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateLobby {
		return nil, ErrAlreadyStarted
	}
	if len(m.players) >= item.MaxPlayers {
		return nil, ErrMatchFull
	}

	p := &Player{
		m:    m,
		Name: name,
		Seat: len(m.players),
		cash: m.Config.StartingCash,
	}
	m.players = append(m.players, p)
	return p, nil
}

// Start deals the first round and opens the first Turn for seat 0
func (m *Match) Start() error {
	return m.run(func() error {
		if m.state != StateLobby {
			return ErrAlreadyStarted
		}
		if len(m.players) < item.MinPlayers || len(m.players) > item.MaxPlayers {
			return ErrBadPlayerCount
		}

		m.state = StatePlaying
		m.StartedAt = time.Now()
		m.round = 0
		m.current = 0
		m.emit(Event{Type: EventMatchStarted})

		m.dealLocked()
		m.openTurnLocked(0)
		return nil
	})
}

// Getters

func (m *Match) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Match) Round() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.round
}

// CurrentSeat returns the seat holding the live Turn.
func (m *Match) CurrentSeat() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Match) Players() []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Player, len(m.players))
	copy(out, m.players)
	return out
}

func (m *Match) Player(seat int) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 0 || seat >= len(m.players) {
		return nil
	}
	return m.players[seat]
}

// ActiveTurn returns the live Turn, or nil when none is open.
func (m *Match) ActiveTurn() *Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.turn == nil || m.turn.done {
		return nil
	}
	return m.turn
}

// SoldCount returns the number of items of c sold in round r.
func (m *Match) SoldCount(r int, c item.Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r < 0 || r >= len(m.sold) || !c.Valid() {
		return 0
	}
	return m.sold[r][c]
}

// Value returns what one item of c paid at the end of round r: the
// category's bonuses so far when it ranked that round, otherwise 0.
func (m *Match) Value(c item.Category, r int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r < 0 || r >= m.Config.Rounds || !c.Valid() {
		return 0
	}
	return m.values[c][r]
}

// Sales returns every settled lot in order.
func (m *Match) Sales() []Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sale, len(m.sales))
	copy(out, m.sales)
	return out
}

// Standing is a seat's final position
type Standing struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
	Cash int64  `json:"cash"`
	Rank int    `json:"rank"`
}

// Standings ranks seats by cash, ties by seat order.
func (m *Match) Standings() []Standing {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Standing, len(m.players))
	for i, p := range m.players {
		out[i] = Standing{Seat: p.Seat, Name: p.Name, Cash: p.cash}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cash > out[j].Cash })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (m *Match) nextSeat(seat int) int {
	return (seat + 1) % len(m.players)
}
