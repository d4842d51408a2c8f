package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// regressor is the uniform fit/predict surface shared by the lag-regression
// backends.
type regressor interface {
	fit(X [][]float64, y []float64) error
	predict(x []float64) float64
}

// forecastLagRegression fits the chosen regressor on lag features and
// predicts cfg.Horizon steps. The recursive strategy feeds predictions back
// into the lag window; the direct strategy fits one regressor per step.
func (d *Dispatcher) forecastLagRegression(train *timeseries.Table, cfg Config) (*ModelResult, error) {
	if len(cfg.Lags) == 0 {
		return nil, fmt.Errorf("provide at least one lag for lag_regression models")
	}
	y := train.Values()
	maxLag := cfg.Lags[len(cfg.Lags)-1]
	if len(y) <= maxLag {
		return nil, fmt.Errorf("needs more than %d observations for the largest lag, got %d", maxLag, len(y))
	}

	var (
		point []float64
		err   error
	)
	if cfg.Strategy == StrategyDirect {
		point, err = directForecast(y, cfg)
	} else {
		point, err = recursiveForecast(y, cfg)
	}
	if err != nil {
		return nil, err
	}

	future := timeseries.NextTimes(train.Points[train.Len()-1].TS, cfg.Freq, cfg.Horizon)
	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	return &ModelResult{Forecast: f, ResolvedModel: cfg.ModelType}, nil
}

// lagFeatures extracts the feature vector for predicting index origin, i.e.
// the values at origin-lag for each configured lag.
func lagFeatures(y []float64, origin int, lags []int) []float64 {
	x := make([]float64, len(lags))
	for j, lag := range lags {
		x[j] = y[origin-lag]
	}
	return x
}

// trainingPairs builds the design matrix for predicting step steps ahead of
// the feature origin (step 1 is the classic one-step setup).
func trainingPairs(y []float64, lags []int, step int) (X [][]float64, targets []float64) {
	maxLag := lags[len(lags)-1]
	for origin := maxLag; origin+step-1 < len(y); origin++ {
		X = append(X, lagFeatures(y, origin, lags))
		targets = append(targets, y[origin+step-1])
	}
	return X, targets
}

// recursiveForecast fits a single one-step regressor and rolls it forward,
// appending each prediction so later steps see it through their lags.
func recursiveForecast(y []float64, cfg Config) ([]float64, error) {
	X, targets := trainingPairs(y, cfg.Lags, 1)
	if len(X) == 0 {
		return nil, fmt.Errorf("not enough observations to build lag features")
	}

	model, err := newLagRegressor(cfg.ModelType)
	if err != nil {
		return nil, err
	}
	if err := model.fit(X, targets); err != nil {
		return nil, err
	}

	extended := append([]float64(nil), y...)
	point := make([]float64, cfg.Horizon)
	for h := 0; h < cfg.Horizon; h++ {
		pred := model.predict(lagFeatures(extended, len(extended), cfg.Lags))
		point[h] = pred
		extended = append(extended, pred)
	}
	return point, nil
}

// directForecast fits an independent regressor per forecast step so no
// prediction is ever fed back as an input.
func directForecast(y []float64, cfg Config) ([]float64, error) {
	point := make([]float64, cfg.Horizon)
	features := lagFeatures(y, len(y), cfg.Lags)

	for h := 1; h <= cfg.Horizon; h++ {
		X, targets := trainingPairs(y, cfg.Lags, h)
		if len(X) == 0 {
			return nil, fmt.Errorf("not enough observations for a direct %d-step fit", h)
		}
		model, err := newLagRegressor(cfg.ModelType)
		if err != nil {
			return nil, err
		}
		if err := model.fit(X, targets); err != nil {
			return nil, err
		}
		point[h-1] = model.predict(features)
	}
	return point, nil
}

// newLagRegressor maps model names to regressors with fixed defaults
func newLagRegressor(modelType string) (regressor, error) {
	switch modelType {
	case "linear":
		return &linearRegressor{}, nil
	case "random_forest":
		return newForestRegressor(forestParams{
			trees:   200,
			minLeaf: 2,
			seed:    42,
		}), nil
	case "xgboost":
		return newBoostedRegressor(boostParams{
			rounds:    300,
			learnRate: 0.05,
			maxDepth:  6,
			subsample: 0.8,
			seed:      42,
		}), nil
	case "lightgbm":
		return newBoostedRegressor(boostParams{
			rounds:    400,
			learnRate: 0.05,
			maxDepth:  6,
			subsample: 0.8,
			seed:      42,
		}), nil
	case "catboost":
		return newBoostedRegressor(boostParams{
			rounds:    500,
			learnRate: 0.05,
			maxDepth:  8,
			subsample: 1.0,
			seed:      42,
		}), nil
	default:
		return nil, fmt.Errorf("model %q is not supported", modelType)
	}
}

// linearRegressor is ordinary least squares with an intercept, solved through
// gonum's QR-backed least-squares path.
type linearRegressor struct {
	coef []float64 // intercept first
}

func (l *linearRegressor) fit(X [][]float64, y []float64) error {
	rows, features := len(X), len(X[0])
	a := mat.NewDense(rows, features+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(rows, append([]float64(nil), y...))

	var solution mat.Dense
	if err := solution.Solve(a, b); err != nil {
		// Ill-conditioned systems still yield a usable least-squares
		// solution; only hard failures abort the fit.
		if _, nearSingular := err.(mat.Condition); !nearSingular {
			return fmt.Errorf("least squares solve: %w", err)
		}
	}

	l.coef = make([]float64, features+1)
	for j := range l.coef {
		l.coef[j] = solution.At(j, 0)
	}
	return nil
}

func (l *linearRegressor) predict(x []float64) float64 {
	pred := l.coef[0]
	for j, v := range x {
		pred += l.coef[j+1] * v
	}
	return pred
}
