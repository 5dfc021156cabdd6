package bots

import (
	"fmt"
	"strings"
)

// CreateEcosystem seats players bots of mixed temperament. The same seed
// gives the same lineup and the same choices.
func CreateEcosystem(players int, seed int64) *BotManager {
	manager := NewBotManager()

	for i := 0; i < players; i++ {
		botSeed := seed + int64(i)*7919
		switch i % 5 {
		case 0:
			manager.AddBot(NewCautious(fmt.Sprintf("cautious_%d", i+1), botSeed))
		case 1:
			manager.AddBot(NewBold(fmt.Sprintf("bold_%d", i+1), botSeed))
		case 2:
			manager.AddBot(NewRandomSmall(fmt.Sprintf("noise_small_%d", i+1), botSeed))
		case 3:
			manager.AddBot(NewDealer(fmt.Sprintf("dealer_%d", i+1), botSeed))
		case 4:
			manager.AddBot(NewRandomLarge(fmt.Sprintf("noise_large_%d", i+1), botSeed))
		}
	}

	return manager
}

// CreateMinimalEcosystem seats appraisers only, for deterministic tests
func CreateMinimalEcosystem(players int, seed int64) *BotManager {
	manager := NewBotManager()
	for i := 0; i < players; i++ {
		if i%2 == 0 {
			manager.AddBot(NewCautious(fmt.Sprintf("cautious_%d", i+1), seed+int64(i)))
		} else {
			manager.AddBot(NewBold(fmt.Sprintf("bold_%d", i+1), seed+int64(i)))
		}
	}
	return manager
}

// BotStats returns statistics about a bot manager's bots
type BotStats struct {
	TotalBots  int      `json:"total_bots"`
	Appraisers int      `json:"appraisers"`
	Noise      int      `json:"noise"`
	BotIDs     []string `json:"bot_ids"`
}

// Stats returns statistics about the seated bots
func (bm *BotManager) Stats() BotStats {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	stats := BotStats{
		TotalBots: len(bm.bots),
		BotIDs:    make([]string, len(bm.bots)),
	}

	for i, bot := range bm.bots {
		id := bot.ID()
		stats.BotIDs[i] = id

		// Categorize by ID prefix
		switch {
		case strings.HasPrefix(id, "cautious"), strings.HasPrefix(id, "bold"), strings.HasPrefix(id, "dealer"):
			stats.Appraisers++
		case strings.HasPrefix(id, "noise"):
			stats.Noise++
		}
	}

	return stats
}
