package forecast

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a CART regression tree
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

type treeParams struct {
	maxDepth int
	minLeaf  int
	// mtry features are sampled per split; 0 means use all
	mtry int
	rng  *rand.Rand
}

// buildTree grows a variance-reducing regression tree over the given sample
// indices.
func buildTree(X [][]float64, y []float64, indices []int, depth int, p treeParams) *treeNode {
	if depth >= p.maxDepth || len(indices) < 2*p.minLeaf || constantTargets(y, indices) {
		return &treeNode{leaf: true, value: meanTargets(y, indices)}
	}

	feature, threshold, ok := bestSplit(X, y, indices, p)
	if !ok {
		return &treeNode{leaf: true, value: meanTargets(y, indices)}
	}

	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return &treeNode{leaf: true, value: meanTargets(y, indices)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(X, y, left, depth+1, p),
		right:     buildTree(X, y, right, depth+1, p),
	}
}

// bestSplit scans candidate features for the threshold with the lowest
// weighted child variance.
func bestSplit(X [][]float64, y []float64, indices []int, p treeParams) (feature int, threshold float64, ok bool) {
	features := candidateFeatures(len(X[0]), p)
	bestScore := math.Inf(1)

	values := make([]float64, 0, len(indices))
	for _, f := range features {
		values = values[:0]
		for _, idx := range indices {
			values = append(values, X[idx][f])
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			t := (values[i] + values[i-1]) / 2
			score := splitScore(X, y, indices, f, t)
			if score < bestScore {
				bestScore = score
				feature, threshold, ok = f, t, true
			}
		}
	}
	return feature, threshold, ok
}

// splitScore is the summed squared deviation of both children
func splitScore(X [][]float64, y []float64, indices []int, feature int, threshold float64) float64 {
	var leftSum, leftSq, rightSum, rightSq float64
	var leftN, rightN int
	for _, idx := range indices {
		v := y[idx]
		if X[idx][feature] <= threshold {
			leftSum += v
			leftSq += v * v
			leftN++
		} else {
			rightSum += v
			rightSq += v * v
			rightN++
		}
	}
	if leftN == 0 || rightN == 0 {
		return math.Inf(1)
	}
	score := leftSq - leftSum*leftSum/float64(leftN)
	score += rightSq - rightSum*rightSum/float64(rightN)
	return score
}

func candidateFeatures(total int, p treeParams) []int {
	all := make([]int, total)
	for i := range all {
		all[i] = i
	}
	if p.mtry <= 0 || p.mtry >= total {
		return all
	}
	p.rng.Shuffle(total, func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:p.mtry]
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func meanTargets(y []float64, indices []int) float64 {
	sum := 0.0
	for _, idx := range indices {
		sum += y[idx]
	}
	return sum / float64(len(indices))
}

func constantTargets(y []float64, indices []int) bool {
	first := y[indices[0]]
	for _, idx := range indices[1:] {
		if y[idx] != first {
			return false
		}
	}
	return true
}

// forestRegressor is a bagged ensemble of regression trees with per-split
// feature subsampling.
type forestRegressor struct {
	params forestParams
	trees  []*treeNode
}

type forestParams struct {
	trees   int
	minLeaf int
	seed    int64
}

func newForestRegressor(p forestParams) *forestRegressor {
	return &forestRegressor{params: p}
}

func (f *forestRegressor) fit(X [][]float64, y []float64) error {
	rng := rand.New(rand.NewSource(f.params.seed))
	n := len(X)
	mtry := len(X[0]) / 3
	if mtry < 1 {
		mtry = 1
	}
	p := treeParams{maxDepth: 16, minLeaf: f.params.minLeaf, mtry: mtry, rng: rng}

	f.trees = make([]*treeNode, f.params.trees)
	indices := make([]int, n)
	for t := range f.trees {
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		f.trees[t] = buildTree(X, y, indices, 0, p)
	}
	return nil
}

func (f *forestRegressor) predict(x []float64) float64 {
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.predict(x)
	}
	return sum / float64(len(f.trees))
}

// boostedRegressor is gradient boosting with squared loss: each round fits a
// shallow tree to the current residuals.
type boostedRegressor struct {
	params boostParams
	base   float64
	trees  []*treeNode
}

type boostParams struct {
	rounds    int
	learnRate float64
	maxDepth  int
	subsample float64
	seed      int64
}

func newBoostedRegressor(p boostParams) *boostedRegressor {
	return &boostedRegressor{params: p}
}

func (b *boostedRegressor) fit(X [][]float64, y []float64) error {
	rng := rand.New(rand.NewSource(b.params.seed))
	n := len(X)

	b.base = 0
	for _, v := range y {
		b.base += v
	}
	b.base /= float64(n)

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = b.base
	}
	residuals := make([]float64, n)
	p := treeParams{maxDepth: b.params.maxDepth, minLeaf: 1, rng: rng}

	sampleSize := n
	if b.params.subsample > 0 && b.params.subsample < 1 {
		sampleSize = int(math.Ceil(float64(n) * b.params.subsample))
	}

	b.trees = make([]*treeNode, 0, b.params.rounds)
	for round := 0; round < b.params.rounds; round++ {
		for i := range residuals {
			residuals[i] = y[i] - preds[i]
		}

		indices := make([]int, sampleSize)
		if sampleSize == n {
			for i := range indices {
				indices[i] = i
			}
		} else {
			perm := rng.Perm(n)
			copy(indices, perm[:sampleSize])
		}

		tree := buildTree(X, residuals, indices, 0, p)
		b.trees = append(b.trees, tree)
		for i := range preds {
			preds[i] += b.params.learnRate * tree.predict(X[i])
		}
	}
	return nil
}

func (b *boostedRegressor) predict(x []float64) float64 {
	pred := b.base
	for _, tree := range b.trees {
		pred += b.params.learnRate * tree.predict(x)
	}
	return pred
}
