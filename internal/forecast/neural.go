package forecast

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// Neural defaults applied when the optional hyperparameters are unset.
const (
	defaultHiddenSize = 32
	defaultMLPLayers  = 2
	defaultRNNLayers  = 1
	defaultEpochs     = 100
	defaultPatience   = 5
	neuralSeed        = 42
	neuralLearnRate   = 0.01
)

// forecastNeural trains the configured sequence model on the standardized
// series and predicts cfg.Horizon steps. Recurrent architectures only roll
// their own state forward under the recursive strategy; otherwise a direct
// multi-output head produces the whole horizon at once.
func (d *Dispatcher) forecastNeural(train *timeseries.Table, cfg Config) (*ModelResult, error) {
	if !NeuralModels[cfg.ModelType] {
		return nil, fmt.Errorf("model %q is not supported", cfg.ModelType)
	}

	inputSize := maxInt(1, cfg.SeasonLength)
	if cfg.InputSize != nil {
		inputSize = *cfg.InputSize
	}
	y := train.Values()
	if len(y) <= inputSize {
		return nil, fmt.Errorf("needs more than input_size (%d) observations, got %d", inputSize, len(y))
	}

	scaled, scale := standardize(y)

	var (
		point []float64
		err   error
	)
	if cfg.ModelType == "mlp" {
		point, err = d.mlpForecast(scaled, inputSize, cfg)
	} else {
		recurrent := cfg.Strategy == StrategyRecursive
		point, err = d.recurrentForecast(scaled, inputSize, cfg, recurrent)
	}
	if err != nil {
		return nil, err
	}
	for i := range point {
		point[i] = scale.invert(point[i])
	}

	future := timeseries.NextTimes(train.Points[train.Len()-1].TS, cfg.Freq, cfg.Horizon)
	f := NewFrame(future)
	f.SetColumn(cfg.ModelType, point)
	return &ModelResult{Forecast: f, ResolvedModel: cfg.ModelType}, nil
}

// scaleParams captures the standardization applied before training
type scaleParams struct {
	mean float64
	std  float64
}

func (s scaleParams) invert(v float64) float64 {
	return v*s.std + s.mean
}

func standardize(y []float64) ([]float64, scaleParams) {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	variance := 0.0
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(y)))
	if std == 0 {
		std = 1
	}

	scaled := make([]float64, len(y))
	for i, v := range y {
		scaled[i] = (v - mean) / std
	}
	return scaled, scaleParams{mean: mean, std: std}
}

// trainSpec bundles the training-loop knobs shared by both architectures
type trainSpec struct {
	epochs      int
	valFraction float64
	patience    int
}

func newTrainSpec(cfg Config) trainSpec {
	spec := trainSpec{epochs: defaultEpochs}
	if cfg.Epochs != nil {
		spec.epochs = *cfg.Epochs
	}
	if cfg.ValFraction != nil {
		spec.valFraction = *cfg.ValFraction
		spec.patience = defaultPatience
		if cfg.Patience != nil {
			spec.patience = *cfg.Patience
		}
	}
	return spec
}

// mlpForecast trains a feedforward network on sliding windows. The direct
// strategy uses a multi-output head; every other strategy predicts one step
// and recurses.
func (d *Dispatcher) mlpForecast(scaled []float64, inputSize int, cfg Config) ([]float64, error) {
	outDim := 1
	if cfg.Strategy == StrategyDirect {
		outDim = cfg.Horizon
	}

	X, targets := slidingWindows(scaled, inputSize, outDim)
	if len(X) == 0 {
		return nil, fmt.Errorf("not enough observations to build training windows")
	}

	layers := defaultMLPLayers
	if cfg.NumLayers != nil {
		layers = *cfg.NumLayers
	}
	hidden := d.selectHiddenSize(cfg, func(h int) float64 {
		net := newMLP(inputSize, h, layers, outDim, neuralSeed)
		return net.train(X, targets, newTrainSpec(cfg))
	})

	net := newMLP(inputSize, hidden, layers, outDim, neuralSeed)
	net.train(X, targets, newTrainSpec(cfg))

	if cfg.Strategy == StrategyDirect {
		return net.forward(scaled[len(scaled)-inputSize:]), nil
	}

	window := append([]float64(nil), scaled[len(scaled)-inputSize:]...)
	point := make([]float64, cfg.Horizon)
	for h := 0; h < cfg.Horizon; h++ {
		pred := net.forward(window)[0]
		point[h] = pred
		window = append(window[1:], pred)
	}
	return point, nil
}

// selectHiddenSize picks the hidden width. An explicit config value always
// wins; with tuning enabled a small candidate sweep picks the lowest loss,
// otherwise the default applies directly.
func (d *Dispatcher) selectHiddenSize(cfg Config, score func(hidden int) float64) int {
	if cfg.HiddenSize != nil {
		return *cfg.HiddenSize
	}
	if !d.caps.Tuning {
		return defaultHiddenSize
	}

	candidates := []int{8, defaultHiddenSize, 64}
	best, bestLoss := defaultHiddenSize, math.Inf(1)
	for _, h := range candidates {
		if loss := score(h); loss < bestLoss {
			best, bestLoss = h, loss
		}
	}
	d.log.Debug("hidden size selected by tuning sweep", "hidden", best)
	return best
}

// slidingWindows builds (window, next outDim values) training pairs
func slidingWindows(scaled []float64, inputSize, outDim int) (X [][]float64, targets [][]float64) {
	for start := 0; start+inputSize+outDim <= len(scaled); start++ {
		X = append(X, scaled[start:start+inputSize])
		targets = append(targets, scaled[start+inputSize:start+inputSize+outDim])
	}
	return X, targets
}

// mlp is a fully connected network with tanh hidden activations and a linear
// output layer, trained by SGD on absolute error.
type mlp struct {
	weights [][][]float64 // [layer][out][in]
	biases  [][]float64   // [layer][out]
}

func newMLP(inputSize, hidden, layers, outDim int, seed int64) *mlp {
	rng := rand.New(rand.NewSource(seed))
	sizes := make([]int, 0, layers+2)
	sizes = append(sizes, inputSize)
	for i := 0; i < layers; i++ {
		sizes = append(sizes, hidden)
	}
	sizes = append(sizes, outDim)

	net := &mlp{}
	for l := 0; l+1 < len(sizes); l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(2 / float64(in))
		w := make([][]float64, out)
		for o := range w {
			w[o] = make([]float64, in)
			for i := range w[o] {
				w[o][i] = rng.NormFloat64() * scale
			}
		}
		net.weights = append(net.weights, w)
		net.biases = append(net.biases, make([]float64, out))
	}
	return net
}

// forward returns the network output for one window
func (n *mlp) forward(x []float64) []float64 {
	activations, _ := n.forwardAll(x)
	return activations[len(activations)-1]
}

// forwardAll returns all layer activations plus pre-activation values,
// which the backward pass needs.
func (n *mlp) forwardAll(x []float64) (activations [][]float64, sums [][]float64) {
	current := append([]float64(nil), x...)
	activations = append(activations, current)

	last := len(n.weights) - 1
	for l, layer := range n.weights {
		next := make([]float64, len(layer))
		raw := make([]float64, len(layer))
		for o, row := range layer {
			sum := n.biases[l][o]
			for i, w := range row {
				sum += w * current[i]
			}
			raw[o] = sum
			if l == last {
				next[o] = sum
			} else {
				next[o] = math.Tanh(sum)
			}
		}
		sums = append(sums, raw)
		activations = append(activations, next)
		current = next
	}
	return activations, sums
}

// train runs SGD with optional early stopping and returns the final loss
// used for comparison during tuning sweeps (validation loss when a split is
// configured, else training loss).
func (n *mlp) train(X [][]float64, targets [][]float64, spec trainSpec) float64 {
	trainX, trainY, valX, valY := splitValidation(X, targets, spec.valFraction)

	bestLoss := math.Inf(1)
	badEpochs := 0
	for epoch := 0; epoch < spec.epochs; epoch++ {
		for s := range trainX {
			n.step(trainX[s], trainY[s])
		}

		if len(valX) == 0 {
			continue
		}
		loss := n.loss(valX, valY)
		if loss < bestLoss {
			bestLoss = loss
			badEpochs = 0
		} else if badEpochs++; badEpochs >= spec.patience {
			break
		}
	}

	if len(valX) > 0 {
		return bestLoss
	}
	return n.loss(trainX, trainY)
}

// step runs one backprop update on a single sample
func (n *mlp) step(x, target []float64) {
	activations, _ := n.forwardAll(x)
	out := activations[len(activations)-1]

	// MAE gradient at the output layer
	delta := make([]float64, len(out))
	for o := range out {
		diff := out[o] - target[o]
		switch {
		case diff > 0:
			delta[o] = 1
		case diff < 0:
			delta[o] = -1
		}
	}

	for l := len(n.weights) - 1; l >= 0; l-- {
		input := activations[l]
		var prevDelta []float64
		if l > 0 {
			prevDelta = make([]float64, len(input))
		}
		for o, row := range n.weights[l] {
			for i := range row {
				if prevDelta != nil {
					prevDelta[i] += row[i] * delta[o]
				}
				row[i] -= neuralLearnRate * delta[o] * input[i]
			}
			n.biases[l][o] -= neuralLearnRate * delta[o]
		}
		if prevDelta != nil {
			// tanh' = 1 - tanh^2 on the activated values
			for i := range prevDelta {
				prevDelta[i] *= 1 - input[i]*input[i]
			}
			delta = prevDelta
		}
	}
}

func (n *mlp) loss(X [][]float64, targets [][]float64) float64 {
	if len(X) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	count := 0
	for s := range X {
		out := n.forward(X[s])
		for o := range out {
			total += math.Abs(out[o] - targets[s][o])
			count++
		}
	}
	return total / float64(count)
}

// splitValidation holds out the trailing fraction of samples
func splitValidation(X [][]float64, targets [][]float64, fraction float64) (trainX, trainY, valX, valY [][]float64) {
	if fraction <= 0 || len(X) < 2 {
		return X, targets, nil, nil
	}
	valCount := int(math.Ceil(float64(len(X)) * fraction))
	if valCount >= len(X) {
		valCount = len(X) - 1
	}
	split := len(X) - valCount
	return X[:split], targets[:split], X[split:], targets[split:]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
