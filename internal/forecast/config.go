// Package forecast implements the forecasting orchestration engine: holdout
// splitting, one-step rolling evaluation, rolling backtests, model-family
// dispatch, confidence-interval assembly, accuracy metrics, and leaderboard
// ranking over a validated time-series table.
package forecast

import (
	"fmt"
	"sort"
	"strings"
)

// ModuleType identifies a forecasting model family
type ModuleType string

const (
	ModuleStatistical   ModuleType = "statistical"
	ModuleLagRegression ModuleType = "lag_regression"
	ModuleNeural        ModuleType = "neural"
)

// Strategy controls how multi-period forecasts are generated
type Strategy string

const (
	StrategyOneStep   Strategy = "one_step"
	StrategyRecursive Strategy = "multi_step_recursive"
	StrategyDirect    Strategy = "multi_output_direct"
)

// MissingPolicy controls how rows with missing values are handled
type MissingPolicy string

const (
	MissingNone        MissingPolicy = "none"
	MissingDrop        MissingPolicy = "drop"
	MissingForwardFill MissingPolicy = "forward_fill"
	MissingInterpolate MissingPolicy = "interpolate"
)

// AllowedFrequencies is the set of supported calendar frequency codes
var AllowedFrequencies = map[string]bool{
	"H": true, "D": true, "W": true,
	"MS": true, "M": true,
	"QS": true, "Q": true,
	"YS": true, "Y": true,
}

// Model identifiers allowed per family.
var (
	StatisticalModels = map[string]bool{
		"arima":                   true,
		"auto_arima":              true,
		"auto_ets":                true,
		"naive":                   true,
		"seasonal_naive":          true,
		"random_walk_with_drift":  true,
		"window_average":          true,
		"seasonal_window_average": true,
	}
	LagRegressionModels = map[string]bool{
		"linear":        true,
		"random_forest": true,
		"xgboost":       true,
		"lightgbm":      true,
		"catboost":      true,
	}
	NeuralModels = map[string]bool{
		"mlp":  true,
		"rnn":  true,
		"lstm": true,
		"gru":  true,
	}
)

// Config describes a single forecasting run. Construct it from a request,
// then call Normalize followed by Validate before handing it to the engine.
type Config struct {
	ModuleType   ModuleType `json:"module_type"`
	ModelType    string     `json:"model_type"`
	Strategy     Strategy   `json:"strategy,omitempty"`
	Freq         string     `json:"freq"`
	SeasonLength int        `json:"season_length"`
	Horizon      int        `json:"horizon"`

	// Lag-regression only
	Lags []int `json:"lags,omitempty"`

	// Neural only
	InputSize   *int     `json:"input_size,omitempty"`
	NumLayers   *int     `json:"num_layers,omitempty"`
	HiddenSize  *int     `json:"hidden_size,omitempty"`
	Epochs      *int     `json:"epochs,omitempty"`
	ValFraction *float64 `json:"val_fraction,omitempty"`
	Patience    *int     `json:"patience,omitempty"`

	Level            []int         `json:"level,omitempty"`
	LogTransform     bool          `json:"log_transform,omitempty"`
	DetectFrequency  bool          `json:"detect_frequency,omitempty"`
	MissingPolicy    MissingPolicy `json:"missing_policy,omitempty"`
	DateStart        string        `json:"date_start,omitempty"`
	DateEnd          string        `json:"date_end,omitempty"`
	TestSizeFraction *float64      `json:"test_size_fraction,omitempty"`
}

// Normalize applies defaults and canonical forms in place: trimmed lowercase
// model identifier, default strategy and missing policy, sorted deduplicated
// lags and levels, default confidence levels {80, 90}.
func (c *Config) Normalize() {
	c.ModelType = strings.ToLower(strings.TrimSpace(c.ModelType))
	if c.Strategy == "" {
		c.Strategy = StrategyRecursive
	}
	if c.MissingPolicy == "" {
		c.MissingPolicy = MissingNone
	}
	if len(c.Level) == 0 {
		c.Level = []int{80, 90}
	} else {
		c.Level = dedupSorted(c.Level)
	}
	if len(c.Lags) > 0 {
		c.Lags = dedupSorted(c.Lags)
	}
}

// Validate checks all field and cross-field rules. It returns the first
// violated rule; a nil error means the config is fully usable.
func (c *Config) Validate() error {
	if !AllowedFrequencies[c.Freq] {
		return fmt.Errorf("unsupported freq %q; choose one of: %s", c.Freq, allowedFreqList())
	}
	if c.SeasonLength <= 0 {
		return fmt.Errorf("season_length must be greater than zero")
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be greater than zero")
	}
	if c.ModelType == "" {
		return fmt.Errorf("model_type cannot be empty")
	}
	switch c.Strategy {
	case StrategyOneStep, StrategyRecursive, StrategyDirect:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	switch c.MissingPolicy {
	case MissingNone, MissingDrop, MissingForwardFill, MissingInterpolate:
	default:
		return fmt.Errorf("unknown missing_policy %q", c.MissingPolicy)
	}
	for _, lag := range c.Lags {
		if lag <= 0 {
			return fmt.Errorf("lag values must be greater than zero")
		}
	}
	if c.InputSize != nil && *c.InputSize <= 0 {
		return fmt.Errorf("input_size must be greater than zero")
	}
	if c.NumLayers != nil && *c.NumLayers <= 0 {
		return fmt.Errorf("num_layers must be greater than zero")
	}
	if c.HiddenSize != nil && *c.HiddenSize <= 0 {
		return fmt.Errorf("hidden_size must be greater than zero")
	}
	if c.Epochs != nil && *c.Epochs <= 0 {
		return fmt.Errorf("epochs must be greater than zero")
	}
	if c.Patience != nil && *c.Patience <= 0 {
		return fmt.Errorf("patience must be greater than zero")
	}
	if c.ValFraction != nil && (*c.ValFraction <= 0 || *c.ValFraction >= 0.5) {
		return fmt.Errorf("val_fraction must be between 0 and 0.5 exclusive")
	}
	if len(c.Level) == 0 {
		return fmt.Errorf("at least one confidence level is required")
	}
	for _, lvl := range c.Level {
		if lvl < 1 || lvl > 99 {
			return fmt.Errorf("confidence levels must be between 1 and 99")
		}
	}
	if c.TestSizeFraction != nil && (*c.TestSizeFraction < 0 || *c.TestSizeFraction >= 1) {
		return fmt.Errorf("test_size_fraction must be in [0, 1)")
	}

	return c.validateModuleCombination()
}

// validateModuleCombination enforces family-specific field legality
func (c *Config) validateModuleCombination() error {
	var allowed map[string]bool

	switch c.ModuleType {
	case ModuleStatistical:
		allowed = StatisticalModels
		if c.Strategy == StrategyDirect {
			return fmt.Errorf("multi_output_direct is not supported for statistical models")
		}
		if c.Lags != nil {
			return fmt.Errorf("lags are only used with lag_regression models")
		}
		if c.InputSize != nil {
			return fmt.Errorf("input_size is only used with neural models")
		}
		if c.NumLayers != nil || c.HiddenSize != nil || c.Epochs != nil {
			return fmt.Errorf("num_layers, hidden_size and epochs are only used with neural models")
		}
	case ModuleLagRegression:
		allowed = LagRegressionModels
		if len(c.Lags) == 0 {
			return fmt.Errorf("provide at least one lag for lag_regression models")
		}
		if c.InputSize != nil {
			return fmt.Errorf("input_size is only used with neural models")
		}
		if c.NumLayers != nil || c.HiddenSize != nil || c.Epochs != nil {
			return fmt.Errorf("num_layers, hidden_size and epochs are only used with neural models")
		}
	case ModuleNeural:
		allowed = NeuralModels
		if c.InputSize == nil {
			return fmt.Errorf("input_size is required for neural models")
		}
		if c.Lags != nil {
			return fmt.Errorf("lags are not used with neural models")
		}
	default:
		return fmt.Errorf("module %q is not supported", c.ModuleType)
	}

	if !allowed[c.ModelType] {
		names := make([]string, 0, len(allowed))
		for name := range allowed {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("model %q is not valid for %s; allowed models: %s",
			c.ModelType, c.ModuleType, strings.Join(names, ", "))
	}
	return nil
}

// withHorizon returns a copy of the config with a different horizon
func (c Config) withHorizon(h int) Config {
	c.Horizon = h
	return c
}

// Label returns the leaderboard label for the config
func (c Config) Label() string {
	return fmt.Sprintf("%s/%s", c.ModuleType, c.ModelType)
}

func dedupSorted(values []int) []int {
	seen := make(map[int]bool, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func allowedFreqList() string {
	names := make([]string, 0, len(AllowedFrequencies))
	for f := range AllowedFrequencies {
		names = append(names, f)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
