package gamification

import (
	"encoding/json"
	"fmt"

	"github.com/salescoach/coach/internal/domain"
)

// StateNamespace prefixes every profile's storage key.
const StateNamespace = "sales-coach-gamification"

// StateKey returns the storage key for a profile.
func StateKey(profile string) string {
	return StateNamespace + "/" + profile
}

// EncodeState serializes the durable part of state.
func EncodeState(state domain.State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// DecodeState parses a stored document and repairs it against catalog:
// level is recomputed from XP, badges are reconciled, history is capped and
// missing lifetime counters are rebuilt from history.
func DecodeState(data []byte, catalog []domain.BadgeDef) (domain.State, error) {
	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.State{}, fmt.Errorf("decode state: %w", err)
	}

	if state.XP < 0 {
		state.XP = 0
	}
	state.Level = LevelForXP(state.XP)
	if state.StreakDays < 0 {
		state.StreakDays = 0
	}
	if state.History == nil {
		state.History = []domain.XPEvent{}
	}
	if len(state.History) > domain.HistoryLimit {
		state.History = state.History[:domain.HistoryLimit]
	}
	if state.Counters == nil {
		state.Counters = countsFromHistory(state.History)
	}
	state.Badges = ReconcileBadges(state.Badges, catalog)
	return state, nil
}
