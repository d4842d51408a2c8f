package forecast

import (
	"fmt"
	"math"
	"math/rand"
)

// The recurrent models keep their cell weights fixed at scaled random
// initialization and train only a linear readout over the hidden state, in
// the echo-state tradition. That keeps training stable on the short series
// this service sees while still giving each cell type its own dynamics.

// recurrentForecast runs the cell over the standardized series, trains the
// readout on (state, future values) pairs, and predicts. In recurrent mode
// the one-step readout output is fed back as the next input; otherwise a
// direct head emits the whole horizon from the final state.
func (d *Dispatcher) recurrentForecast(scaled []float64, inputSize int, cfg Config, recurrent bool) ([]float64, error) {
	layers := defaultRNNLayers
	if cfg.NumLayers != nil {
		layers = *cfg.NumLayers
	}

	outDim := cfg.Horizon
	if recurrent {
		outDim = 1
	}

	hidden := d.selectHiddenSize(cfg, func(h int) float64 {
		cell := newCellStack(cfg.ModelType, h, layers, neuralSeed)
		_, loss := trainReadout(cell, scaled, inputSize, outDim, newTrainSpec(cfg))
		return loss
	})

	cell := newCellStack(cfg.ModelType, hidden, layers, neuralSeed)
	readout, _ := trainReadout(cell, scaled, inputSize, outDim, newTrainSpec(cfg))
	if readout == nil {
		return nil, fmt.Errorf("not enough observations to build training windows")
	}

	// Warm the state over the full history before predicting.
	cell.reset()
	for _, v := range scaled {
		cell.step(v)
	}

	point := make([]float64, cfg.Horizon)
	if recurrent {
		for h := 0; h < cfg.Horizon; h++ {
			pred := readout.apply(cell.state())[0]
			point[h] = pred
			cell.step(pred)
		}
		return point, nil
	}
	copy(point, readout.apply(cell.state()))
	return point, nil
}

// trainReadout builds (hidden state, next outDim values) samples by running
// the cell across the series, then fits the readout by SGD on absolute
// error. A nil readout means no sample could be built. The returned loss is
// the tuning-comparison score.
func trainReadout(cell *cellStack, scaled []float64, inputSize, outDim int, spec trainSpec) (*readout, float64) {
	var states [][]float64
	var targets [][]float64

	cell.reset()
	for t, v := range scaled {
		cell.step(v)
		// The state must have digested at least inputSize observations and
		// the target window must fit.
		if t+1 >= inputSize && t+outDim < len(scaled) {
			states = append(states, cell.state())
			targets = append(targets, scaled[t+1:t+1+outDim])
		}
	}
	if len(states) == 0 {
		return nil, math.Inf(1)
	}

	r := newReadout(len(states[0]), outDim, neuralSeed)
	loss := r.train(states, targets, spec)
	return r, loss
}

// readout is the trained linear map from hidden state to predictions
type readout struct {
	weights [][]float64
	biases  []float64
}

func newReadout(stateDim, outDim int, seed int64) *readout {
	rng := rand.New(rand.NewSource(seed))
	scale := math.Sqrt(1 / float64(stateDim))
	w := make([][]float64, outDim)
	for o := range w {
		w[o] = make([]float64, stateDim)
		for i := range w[o] {
			w[o][i] = rng.NormFloat64() * scale
		}
	}
	return &readout{weights: w, biases: make([]float64, outDim)}
}

func (r *readout) apply(state []float64) []float64 {
	out := make([]float64, len(r.weights))
	for o, row := range r.weights {
		sum := r.biases[o]
		for i, w := range row {
			sum += w * state[i]
		}
		out[o] = sum
	}
	return out
}

func (r *readout) train(states, targets [][]float64, spec trainSpec) float64 {
	trainX, trainY, valX, valY := splitValidation(states, targets, spec.valFraction)

	bestLoss := math.Inf(1)
	badEpochs := 0
	for epoch := 0; epoch < spec.epochs; epoch++ {
		for s := range trainX {
			out := r.apply(trainX[s])
			for o := range out {
				grad := 0.0
				switch diff := out[o] - trainY[s][o]; {
				case diff > 0:
					grad = 1
				case diff < 0:
					grad = -1
				}
				for i := range r.weights[o] {
					r.weights[o][i] -= neuralLearnRate * grad * trainX[s][i]
				}
				r.biases[o] -= neuralLearnRate * grad
			}
		}

		if len(valX) == 0 {
			continue
		}
		loss := r.loss(valX, valY)
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
	return r.loss(trainX, trainY)
}

func (r *readout) loss(states, targets [][]float64) float64 {
	if len(states) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	count := 0
	for s := range states {
		out := r.apply(states[s])
		for o := range out {
			total += math.Abs(out[o] - targets[s][o])
			count++
		}
	}
	return total / float64(count)
}

// cellStack runs num stacked recurrent layers; each layer feeds the next
type cellStack struct {
	cells []recurrentCell
}

// state returns the concatenated hidden vectors of all layers
func (cs *cellStack) state() []float64 {
	var out []float64
	for _, c := range cs.cells {
		out = append(out, c.hidden()...)
	}
	return out
}

func (cs *cellStack) step(x float64) {
	input := []float64{x}
	for _, c := range cs.cells {
		input = c.step(input)
	}
}

func (cs *cellStack) reset() {
	for _, c := range cs.cells {
		c.reset()
	}
}

func newCellStack(modelType string, hidden, layers int, seed int64) *cellStack {
	cs := &cellStack{}
	inDim := 1
	for l := 0; l < layers; l++ {
		// Offset the seed per layer so stacked layers differ.
		layerSeed := seed + int64(l)
		switch modelType {
		case "rnn":
			cs.cells = append(cs.cells, newRNNCell(inDim, hidden, layerSeed))
		case "lstm":
			cs.cells = append(cs.cells, newLSTMCell(inDim, hidden, layerSeed))
		case "gru":
			cs.cells = append(cs.cells, newGRUCell(inDim, hidden, layerSeed))
		}
		inDim = hidden
	}
	return cs
}

// recurrentCell advances one layer's state by one observation
type recurrentCell interface {
	step(input []float64) []float64
	hidden() []float64
	reset()
}

// cellWeights holds one gate's input and recurrent weight matrices
type cellWeights struct {
	wIn  [][]float64 // [hidden][inDim]
	wRec [][]float64 // [hidden][hidden]
	bias []float64
}

func newCellWeights(inDim, hidden int, rng *rand.Rand, biasInit float64) cellWeights {
	inScale := 0.5 / math.Sqrt(float64(inDim))
	// Keep recurrent dynamics contractive so long sequences stay bounded.
	recScale := 0.9 / math.Sqrt(float64(hidden))

	w := cellWeights{
		wIn:  make([][]float64, hidden),
		wRec: make([][]float64, hidden),
		bias: make([]float64, hidden),
	}
	for h := 0; h < hidden; h++ {
		w.wIn[h] = make([]float64, inDim)
		for i := range w.wIn[h] {
			w.wIn[h][i] = rng.NormFloat64() * inScale
		}
		w.wRec[h] = make([]float64, hidden)
		for i := range w.wRec[h] {
			w.wRec[h][i] = rng.NormFloat64() * recScale
		}
		w.bias[h] = biasInit
	}
	return w
}

// gate computes wIn*input + wRec*state + bias for one unit
func (w *cellWeights) gate(unit int, input, state []float64) float64 {
	sum := w.bias[unit]
	for i, v := range input {
		sum += w.wIn[unit][i] * v
	}
	for i, v := range state {
		sum += w.wRec[unit][i] * v
	}
	return sum
}

// rnnCell is a vanilla tanh recurrence
type rnnCell struct {
	w cellWeights
	h []float64
}

func newRNNCell(inDim, hidden int, seed int64) *rnnCell {
	rng := rand.New(rand.NewSource(seed))
	return &rnnCell{w: newCellWeights(inDim, hidden, rng, 0), h: make([]float64, hidden)}
}

func (c *rnnCell) step(input []float64) []float64 {
	next := make([]float64, len(c.h))
	for u := range next {
		next[u] = math.Tanh(c.w.gate(u, input, c.h))
	}
	c.h = next
	return c.h
}

func (c *rnnCell) hidden() []float64 { return append([]float64(nil), c.h...) }
func (c *rnnCell) reset()            { c.h = make([]float64, len(c.h)) }

// lstmCell keeps a separate cell state guarded by forget, input and output
// gates. Forget bias starts at 1 so early training does not wipe the state.
type lstmCell struct {
	forget, input, output, candidate cellWeights
	h, c                             []float64
}

func newLSTMCell(inDim, hidden int, seed int64) *lstmCell {
	rng := rand.New(rand.NewSource(seed))
	return &lstmCell{
		forget:    newCellWeights(inDim, hidden, rng, 1),
		input:     newCellWeights(inDim, hidden, rng, 0),
		output:    newCellWeights(inDim, hidden, rng, 0),
		candidate: newCellWeights(inDim, hidden, rng, 0),
		h:         make([]float64, hidden),
		c:         make([]float64, hidden),
	}
}

func (c *lstmCell) step(input []float64) []float64 {
	nextH := make([]float64, len(c.h))
	nextC := make([]float64, len(c.c))
	for u := range nextH {
		f := sigmoid(c.forget.gate(u, input, c.h))
		i := sigmoid(c.input.gate(u, input, c.h))
		o := sigmoid(c.output.gate(u, input, c.h))
		cand := math.Tanh(c.candidate.gate(u, input, c.h))

		nextC[u] = f*c.c[u] + i*cand
		nextH[u] = o * math.Tanh(nextC[u])
	}
	c.h, c.c = nextH, nextC
	return c.h
}

func (c *lstmCell) hidden() []float64 { return append([]float64(nil), c.h...) }
func (c *lstmCell) reset() {
	c.h = make([]float64, len(c.h))
	c.c = make([]float64, len(c.c))
}

// gruCell folds the memory into the hidden vector with update and reset gates
type gruCell struct {
	update, reset_, candidate cellWeights
	h                         []float64
}

func newGRUCell(inDim, hidden int, seed int64) *gruCell {
	rng := rand.New(rand.NewSource(seed))
	return &gruCell{
		update:    newCellWeights(inDim, hidden, rng, 0),
		reset_:    newCellWeights(inDim, hidden, rng, 0),
		candidate: newCellWeights(inDim, hidden, rng, 0),
		h:         make([]float64, hidden),
	}
}

func (c *gruCell) step(input []float64) []float64 {
	next := make([]float64, len(c.h))
	masked := make([]float64, len(c.h))
	for u := range c.h {
		r := sigmoid(c.reset_.gate(u, input, c.h))
		masked[u] = r * c.h[u]
	}
	for u := range next {
		z := sigmoid(c.update.gate(u, input, c.h))
		cand := math.Tanh(c.candidate.gate(u, input, masked))
		next[u] = (1-z)*c.h[u] + z*cand
	}
	c.h = next
	return c.h
}

func (c *gruCell) hidden() []float64 { return append([]float64(nil), c.h...) }
func (c *gruCell) reset()            { c.h = make([]float64, len(c.h)) }

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
