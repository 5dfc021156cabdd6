package item

import (
	"fmt"
	"math/rand"
	"time"
)

// DeckSize is the number of items in the full multiset.
const DeckSize = 70

// MinPlayers and MaxPlayers bound the supported table sizes.
const (
	MinPlayers = 3
	MaxPlayers = 5
)

// dealTable is indexed by player count then round.
var dealTable = map[int][]int{
	3: {10, 6, 6},
	4: {9, 4, 4},
	5: {8, 3, 3},
}

// hasThirdCopy reports whether the (category, mechanism) slot carries a
// third copy in the deck.
func hasThirdCopy(c Category, m Mechanism) bool {
	switch c {
	case CategoryLiteMetal:
		switch m {
		case Price, Blind, Pair:
			return false
		}
	case CategoryYoko:
		switch m {
		case Once, Pair:
			return false
		}
	case CategoryChristineP:
		return m != Pair
	}
	return true
}

// FullDeck returns the unshuffled multiset in table order.
func FullDeck() []Item {
	deck := make([]Item, 0, DeckSize)
	for c := Category(0); c < NumCategories; c++ {
		for m := Mechanism(0); m < NumMechanisms; m++ {
			deck = append(deck, New(c, m), New(c, m))
			if hasThirdCopy(c, m) {
				deck = append(deck, New(c, m))
			}
		}
	}
	// Krypto has a fourth open auction item.
	deck = append(deck, New(CategoryKrypto, Open))
	return deck
}

// Shuffled returns the full deck permuted deterministically by seed.
// A zero seed uses the current time.
func Shuffled(seed int64) []Item {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	deck := FullDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// DealCount returns how many items each player receives at the start of
// the given round.
func DealCount(players, round int) (int, error) {
	counts, ok := dealTable[players]
	if !ok {
		return 0, fmt.Errorf("unsupported player count %d", players)
	}
	if round < 0 || round >= len(counts) {
		return 0, fmt.Errorf("unsupported round %d", round)
	}
	return counts[round], nil
}
