package forecast

import (
	"math"
	"sort"
)

// maeOnlyPenalty pushes runs without an RMSE behind every run that has one
const maeOnlyPenalty = 1_000_000

// rankLeaderboard sorts entries best-first: RMSE when present, else MAE plus
// a large penalty, else positive infinity. The sort is stable so equal scores
// keep request order.
func rankLeaderboard(rows []LeaderboardEntry) []LeaderboardEntry {
	ranked := append([]LeaderboardEntry(nil), rows...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return leaderboardScore(ranked[i]) < leaderboardScore(ranked[j])
	})
	return ranked
}

func leaderboardScore(entry LeaderboardEntry) float64 {
	if entry.Metrics.RMSE != nil {
		return *entry.Metrics.RMSE
	}
	if entry.Metrics.MAE != nil {
		return *entry.Metrics.MAE + maeOnlyPenalty
	}
	return math.Inf(1)
}
