package forecast

import "testing"

func TestRankLeaderboard_RMSEBeforeMAEOnlyBeforeNothing(t *testing.T) {
	rows := []LeaderboardEntry{
		{ModelLabel: "no-metrics"},
		{ModelLabel: "mae-only", Metrics: Metrics{MAE: floatPtr(0.1)}},
		{ModelLabel: "big-rmse", Metrics: Metrics{RMSE: floatPtr(500), MAE: floatPtr(400)}},
		{ModelLabel: "small-rmse", Metrics: Metrics{RMSE: floatPtr(2)}},
	}

	ranked := rankLeaderboard(rows)
	want := []string{"small-rmse", "big-rmse", "mae-only", "no-metrics"}
	for i, label := range want {
		if ranked[i].ModelLabel != label {
			t.Errorf("Position %d: expected %s, got %s", i, label, ranked[i].ModelLabel)
		}
	}
}

func TestRankLeaderboard_StableForTies(t *testing.T) {
	rows := []LeaderboardEntry{
		{ModelLabel: "first", Metrics: Metrics{RMSE: floatPtr(3)}},
		{ModelLabel: "second", Metrics: Metrics{RMSE: floatPtr(3)}},
	}
	ranked := rankLeaderboard(rows)
	if ranked[0].ModelLabel != "first" || ranked[1].ModelLabel != "second" {
		t.Errorf("Expected submission order preserved for ties, got %s, %s",
			ranked[0].ModelLabel, ranked[1].ModelLabel)
	}
}

func TestRankLeaderboard_DoesNotMutateInput(t *testing.T) {
	rows := []LeaderboardEntry{
		{ModelLabel: "b", Metrics: Metrics{RMSE: floatPtr(9)}},
		{ModelLabel: "a", Metrics: Metrics{RMSE: floatPtr(1)}},
	}
	_ = rankLeaderboard(rows)
	if rows[0].ModelLabel != "b" {
		t.Error("Expected the input slice to stay in submission order")
	}
}
