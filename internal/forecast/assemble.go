package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// resolveModelColumn locates the point-forecast column in an adapter's frame.
// Candidates are tried against the non-interval columns in frame order; when
// none matches, the first non-interval column wins.
func resolveModelColumn(f *Frame, modelType string) (string, error) {
	candidates := map[string]bool{
		modelType:                  true,
		strings.ToLower(modelType): true,
		strings.ToUpper(modelType): true,
		capitalize(modelType):      true,
		"mean":                     true,
	}
	var nonInterval []string
	for _, col := range f.Columns() {
		if !isIntervalColumn(col) {
			nonInterval = append(nonInterval, col)
		}
	}
	for _, col := range nonInterval {
		if candidates[col] {
			return col, nil
		}
	}
	if len(nonInterval) > 0 {
		return nonInterval[0], nil
	}
	return "", fmt.Errorf("unable to locate forecast column in model output")
}

// dropNonFiniteRows removes rows where the forecast column or any present
// interval bound is NaN or infinite. When required is set and nothing
// survives, it errors instead of returning an empty frame.
func (e *Engine) dropNonFiniteRows(f *Frame, modelColumn string, levels []int, required bool) (*Frame, error) {
	if f.Len() == 0 {
		if required {
			return nil, fmt.Errorf("forecast produced no rows")
		}
		return f, nil
	}

	columns := []string{modelColumn}
	for _, lvl := range levels {
		if _, ok := f.Column(lowerColumn(modelColumn, lvl)); ok {
			columns = append(columns, lowerColumn(modelColumn, lvl))
		}
		if _, ok := f.Column(upperColumn(modelColumn, lvl)); ok {
			columns = append(columns, upperColumn(modelColumn, lvl))
		}
	}

	keep := make([]bool, f.Len())
	kept := 0
	for i := range keep {
		keep[i] = true
		for _, col := range columns {
			vals, _ := f.Column(col)
			if !isFinite(vals[i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}
	if kept == f.Len() {
		return f, nil
	}
	e.log.Debug("dropped non-finite forecast rows", "before", f.Len(), "after", kept)

	cleaned := f.filterRows(keep)
	if cleaned.Len() == 0 && required {
		return nil, fmt.Errorf("forecast contained no finite predictions")
	}
	return cleaned, nil
}

// invertLogTransform applies expm1 to the point column and every interval
// bound column in place.
func invertLogTransform(f *Frame, modelColumn string, levels []int) {
	columns := []string{modelColumn}
	for _, lvl := range levels {
		columns = append(columns, lowerColumn(modelColumn, lvl), upperColumn(modelColumn, lvl))
	}
	for _, col := range columns {
		vals, ok := f.Column(col)
		if !ok {
			continue
		}
		for i := range vals {
			vals[i] = math.Expm1(vals[i])
		}
	}
}

// alignWithActuals lines forecast rows up with holdout actuals positionally
// and computes metrics over the overlap. Forecast timestamps are overwritten
// with the actual timestamps for the overlapping prefix, which keeps the
// response rows comparable to the holdout even when a model's future index
// drifts from the observed calendar. Without actuals the frame passes
// through and no metrics are computed.
func alignWithActuals(f *Frame, actuals *timeseries.Table, modelColumn string) (*Frame, Metrics) {
	if actuals == nil || actuals.Len() == 0 {
		return f, Metrics{}
	}

	n := f.Len()
	if actuals.Len() < n {
		n = actuals.Len()
	}
	for i := 0; i < n; i++ {
		f.Times[i] = actuals.Points[i].TS
	}

	preds, _ := f.Column(modelColumn)
	return f, computeMetrics(actuals.Values()[:n], preds[:n])
}

// computeMetrics calculates MAE, RMSE and MAPE over the shorter of the two
// slices. MAPE only considers rows with a non-zero actual and is nil when no
// row qualifies.
func computeMetrics(yTrue, yPred []float64) Metrics {
	n := len(yTrue)
	if len(yPred) < n {
		n = len(yPred)
	}
	if n == 0 {
		return Metrics{}
	}

	var absSum, sqSum float64
	var pctSum float64
	pctCount := 0
	for i := 0; i < n; i++ {
		err := yTrue[i] - yPred[i]
		absSum += math.Abs(err)
		sqSum += err * err
		if yTrue[i] != 0 {
			pctSum += math.Abs(err / yTrue[i])
			pctCount++
		}
	}

	mae := absSum / float64(n)
	rmse := math.Sqrt(sqSum / float64(n))
	m := Metrics{MAE: &mae, RMSE: &rmse}
	if pctCount > 0 {
		mape := pctSum / float64(pctCount) * 100
		m.MAPE = &mape
	}
	return m
}

// averageMetrics takes the arithmetic mean of each metric across windows,
// skipping windows where that metric is missing.
func averageMetrics(all []Metrics) Metrics {
	var maes, rmses, mapes []float64
	for _, m := range all {
		if m.MAE != nil {
			maes = append(maes, *m.MAE)
		}
		if m.RMSE != nil {
			rmses = append(rmses, *m.RMSE)
		}
		if m.MAPE != nil {
			mapes = append(mapes, *m.MAPE)
		}
	}
	out := Metrics{}
	if v, ok := mean(maes); ok {
		out.MAE = &v
	}
	if v, ok := mean(rmses); ok {
		out.RMSE = &v
	}
	if v, ok := mean(mapes); ok {
		out.MAPE = &v
	}
	return out
}

// buildIntervals converts bound columns into the response schema, keeping
// only levels where both bounds are present.
func buildIntervals(f *Frame, modelColumn string, levels []int) []ConfidenceInterval {
	intervals := make([]ConfidenceInterval, 0, len(levels))
	for _, lvl := range levels {
		lower, okLo := f.Column(lowerColumn(modelColumn, lvl))
		upper, okHi := f.Column(upperColumn(modelColumn, lvl))
		if okLo && okHi {
			intervals = append(intervals, ConfidenceInterval{
				Level: lvl,
				Lower: append([]float64(nil), lower...),
				Upper: append([]float64(nil), upper...),
			})
		}
	}
	return intervals
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
