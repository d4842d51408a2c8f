package forecast

// Metrics holds accuracy measures for one run. A nil field means the metric
// could not be computed (no holdout actuals, or no non-zero actuals for MAPE).
type Metrics struct {
	MAE  *float64 `json:"mae"`
	RMSE *float64 `json:"rmse"`
	MAPE *float64 `json:"mape"`
}

// ConfidenceInterval carries the lower and upper bound arrays for one level
type ConfidenceInterval struct {
	Level int       `json:"level"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// Series is a timestamp-aligned forecast segment. Timestamps, forecast and
// every bound array share one length.
type Series struct {
	Timestamps []string             `json:"timestamps"`
	Forecast   []float64            `json:"forecast"`
	Bounds     []ConfidenceInterval `json:"bounds"`
}

// Response is the result of a single forecast run
type Response struct {
	Timestamps []string             `json:"timestamps"`
	Forecast   []float64            `json:"forecast"`
	Bounds     []ConfidenceInterval `json:"bounds"`
	Metrics    Metrics              `json:"metrics"`
	Config     Config               `json:"config"`
	Fitted     *Series              `json:"fitted,omitempty"`
}

// LeaderboardEntry summarizes one run for cross-model comparison
type LeaderboardEntry struct {
	ModelLabel string     `json:"model_label"`
	ModuleType ModuleType `json:"module_type"`
	Metrics    Metrics    `json:"metrics"`
	Config     Config     `json:"config"`
}

// BatchResponse carries per-config results plus a ranked leaderboard
type BatchResponse struct {
	Results     []*Response        `json:"results"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// BacktestWindowResult is one rolling window's outcome
type BacktestWindowResult struct {
	Window    int     `json:"window"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	Metrics   Metrics `json:"metrics"`
}

// BacktestModelResult aggregates a config's windows
type BacktestModelResult struct {
	Config    Config                 `json:"config"`
	Aggregate Metrics                `json:"aggregate"`
	Windows   []BacktestWindowResult `json:"windows"`
}

// BacktestResponse carries per-config backtest results plus a leaderboard
type BacktestResponse struct {
	Results     []BacktestModelResult `json:"results"`
	Leaderboard []LeaderboardEntry    `json:"leaderboard"`
}
