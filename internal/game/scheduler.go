package game

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gallery/internal/bots"
	"gallery/internal/item"
	"gallery/internal/match"
	"gallery/internal/store"
)

// Scheduler runs bot matches back to back and archives each one
type Scheduler struct {
	mu sync.RWMutex

	store  *store.Store
	config SchedulerConfig

	currentMatch *match.Match
	botManager   *bots.BotManager
	played       int

	// State
	running bool
	stopCh  chan struct{}

	// Callbacks
	onMatchStart func(*match.Match)
	onMatchEnd   func(*match.Match, []store.MatchResult)
	onEvent      func(Event)
}

// SchedulerConfig configures the match scheduler
type SchedulerConfig struct {
	Players      int           // seats per match, 3 to 5
	Matches      int           // matches to run; 0 runs until stopped
	Rounds       int           // rounds per match
	Seed         int64         // first match seed; 0 picks a random one per match
	MaxSteps     int           // bot actions allowed per match
	Intermission time.Duration // pause between matches
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Players:  4,
		Matches:  1,
		Rounds:   3,
		MaxSteps: 20000,
	}
}

// NewScheduler creates a new match scheduler. st may be nil, in which
// case matches are not archived.
func NewScheduler(st *store.Store, config SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:  st,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Run plays the configured number of matches, pausing for the
// intermission between them. It returns when done, stopped or when ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for i := 0; s.config.Matches == 0 || i < s.config.Matches; i++ {
		select {
		case <-s.stopCh:
			return nil
		default:
		}
		if i > 0 {
			select {
			case <-time.After(s.config.Intermission):
			case <-s.stopCh:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var seed int64
		if s.config.Seed != 0 {
			seed = s.config.Seed + int64(i)
		}
		if _, err := s.RunMatch(ctx, seed); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts Run after the current match
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// RunMatch creates one match with seed, plays it to completion with bots
// and archives it. A zero seed picks one from the clock; the match config
// records the seed used.
func (s *Scheduler) RunMatch(ctx context.Context, seed int64) (*match.Match, error) {
	m, bm, err := s.createNewMatch(seed)
	if err != nil {
		return nil, err
	}

	if err := m.Start(); err != nil {
		return nil, fmt.Errorf("start match %s: %w", m.ID, err)
	}
	s.mu.RLock()
	onStart := s.onMatchStart
	s.mu.RUnlock()
	if onStart != nil {
		onStart(m)
	}

	steps, err := bm.Play(ctx, m, s.config.MaxSteps)
	if err != nil {
		return m, fmt.Errorf("play match %s: %w", m.ID, err)
	}
	log.Printf("[Scheduler] Match %s finished in %d steps", m.ID, steps)

	s.handleMatchEnd(m)
	return m, nil
}

// createNewMatch creates a new match and seats a bot ecosystem. A zero
// seed is replaced by a clock seed so the archived seed replays the match.
func (s *Scheduler) createNewMatch(seed int64) (*match.Match, *bots.BotManager, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	config := match.DefaultConfig()
	config.Seed = seed
	if s.config.Rounds > 0 {
		config.Rounds = s.config.Rounds
	}

	m, err := match.NewMatch(config)
	if err != nil {
		return nil, nil, err
	}

	bm := bots.CreateEcosystem(s.config.Players, seed)
	if err := bm.Seat(m); err != nil {
		return nil, nil, fmt.Errorf("seat bots: %w", err)
	}

	m.OnEvent(s.handleEvent)

	s.mu.Lock()
	s.currentMatch = m
	s.botManager = bm
	s.mu.Unlock()

	log.Printf("[Scheduler] Created match %s with %d bots (seed %d)", m.ID, bm.Count(), seed)
	return m, bm, nil
}

func (s *Scheduler) handleEvent(e Event) {
	switch e.Type {
	case match.EventRoundEnded:
		log.Printf("[Scheduler] Match %s round %d ended, values %v", e.MatchID, e.Round+1, e.Values)
	case match.EventMatchComplete:
		log.Printf("[Scheduler] Match %s complete", e.MatchID)
	}

	s.mu.RLock()
	fn := s.onEvent
	s.mu.RUnlock()
	if fn != nil {
		fn(e)
	}
}

// handleMatchEnd archives the finished match and notifies listeners
func (s *Scheduler) handleMatchEnd(m *match.Match) {
	results := collectResults(m)

	if s.store != nil {
		archive, err := BuildArchive(m)
		if err != nil {
			log.Printf("[Scheduler] Failed to build archive for %s: %v", m.ID, err)
		} else if err := s.store.SaveMatch(archive); err != nil {
			log.Printf("[Scheduler] Failed to save match %s: %v", m.ID, err)
		} else {
			log.Printf("[Scheduler] Saved match %s (%d sales)", m.ID, len(archive.Sales))
		}
	}

	s.mu.Lock()
	s.played++
	onEnd := s.onMatchEnd
	s.mu.Unlock()

	if onEnd != nil {
		onEnd(m, results)
	}
}

// collectResults gathers final standings for all seats
func collectResults(m *match.Match) []store.MatchResult {
	var results []store.MatchResult
	for _, st := range m.Standings() {
		results = append(results, store.MatchResult{
			MatchID:   m.ID,
			Seat:      st.Seat,
			Name:      st.Name,
			FinalCash: st.Cash,
			Rank:      st.Rank,
		})
	}
	return results
}

// BuildArchive converts a finished match into its stored form
func BuildArchive(m *match.Match) (store.MatchArchive, error) {
	snap := m.Snapshot()
	blob, err := store.EncodeSnapshot(snap)
	if err != nil {
		return store.MatchArchive{}, err
	}

	a := store.MatchArchive{
		Match: store.MatchRecord{
			ID:          m.ID,
			Rounds:      m.Config.Rounds,
			PlayerCount: len(snap.Players),
			Seed:        m.Config.Seed,
			SaleCount:   len(snap.Sales),
			StartedAt:   m.StartedAt,
			EndedAt:     m.EndedAt,
		},
		Results:  collectResults(m),
		Snapshot: blob,
	}

	for _, sale := range snap.Sales {
		names := make([]string, len(sale.Items))
		for i, it := range sale.Items {
			names[i] = it.String()
		}
		a.Sales = append(a.Sales, store.SaleRecord{
			MatchID:   m.ID,
			Seq:       sale.Seq,
			Round:     sale.Round,
			Seller:    sale.Seller,
			Buyer:     sale.Buyer,
			Items:     strings.Join(names, ","),
			Mechanism: sale.Mechanism.String(),
			Amount:    sale.Amount,
		})
	}

	for r := 0; r < m.Config.Rounds && r < len(snap.Sold); r++ {
		for c := 0; c < item.NumCategories; c++ {
			a.Values = append(a.Values, store.RoundValue{
				MatchID:  m.ID,
				Round:    r,
				Category: item.Category(c).String(),
				Sold:     snap.Sold[r][c],
				Value:    snap.Values[c][r],
			})
		}
	}

	return a, nil
}

// Getters

// CurrentMatch returns the most recent match
func (s *Scheduler) CurrentMatch() *match.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentMatch
}

// BotManager returns the bots of the most recent match
func (s *Scheduler) BotManager() *bots.BotManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botManager
}

// Played returns how many matches have finished
func (s *Scheduler) Played() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.played
}

// Callbacks

// OnMatchStart sets the callback for when a match starts
func (s *Scheduler) OnMatchStart(fn func(*match.Match)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMatchStart = fn
}

// OnMatchEnd sets the callback for when a match ends
func (s *Scheduler) OnMatchEnd(fn func(*match.Match, []store.MatchResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMatchEnd = fn
}

// OnEvent sets the callback for every event of every match
func (s *Scheduler) OnEvent(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}
