package cli

import (
	"fmt"
	"strings"

	"github.com/salescoach/coach/internal/domain"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Renders level progress as: [========>.....................]  42%

const barWidth = 30 // Characters for the progress bar

func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// renderLevel formats a level line with its progress bar.
func renderLevel(info domain.LevelInfo) string {
	return fmt.Sprintf("Level %d  %s  (%d/%d XP)",
		info.Level, renderBar(info.ProgressPercent), info.CurrentLevelXP, info.XPForNextLevel)
}

// renderBadgeProgress formats "3/10" or "done" for an unlocked badge.
func renderBadgeProgress(b domain.Badge) string {
	if b.Unlocked() {
		return "done"
	}
	return fmt.Sprintf("%d/%d", b.Progress, b.Target)
}
