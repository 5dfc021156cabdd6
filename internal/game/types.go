package game

import "gallery/internal/match"

// Re-export match types for convenience
type Match = match.Match
type State = match.State
type Event = match.Event

const (
	StateLobby    = match.StateLobby
	StatePlaying  = match.StatePlaying
	StateComplete = match.StateComplete
)
