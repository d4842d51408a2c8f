package forecast

import (
	"fmt"
	"math"

	"github.com/forecastlab/forecastlab/internal/timeseries"
)

// minObservations is the smallest table any model can be fit on
const minObservations = 2

// preprocess applies the date filter and missing-value policy, then detects
// the frequency when requested. It returns the cleaned table and the config
// to use for the run (possibly with an overridden frequency). The input table
// is never mutated.
func (e *Engine) preprocess(tbl *timeseries.Table, cfg Config) (*timeseries.Table, Config, error) {
	filtered, err := filterDateRange(tbl, cfg.DateStart, cfg.DateEnd)
	if err != nil {
		return nil, cfg, err
	}
	filled, err := applyMissingPolicy(filtered, cfg.MissingPolicy)
	if err != nil {
		return nil, cfg, err
	}
	if filled.Len() < minObservations {
		return nil, cfg, fmt.Errorf("not enough observations after filtering; adjust the date range")
	}
	if cfg.DetectFrequency {
		if detected := timeseries.InferFrequency(filled.Timestamps()); detected != "" &&
			AllowedFrequencies[detected] && detected != cfg.Freq {
			e.log.Debug("frequency override from timestamp deltas",
				"configured", cfg.Freq, "detected", detected)
			cfg.Freq = detected
		}
	}
	return filled, cfg, nil
}

// filterDateRange keeps rows inside the inclusive [start, end] bounds.
// Empty bounds are open ends.
func filterDateRange(tbl *timeseries.Table, start, end string) (*timeseries.Table, error) {
	if start == "" && end == "" {
		return tbl.Clone(), nil
	}
	out := &timeseries.Table{}
	var err error
	startTS, endTS := tbl.Points[0].TS, tbl.Points[tbl.Len()-1].TS
	if start != "" {
		startTS, err = timeseries.ParseTimestamp(start)
		if err != nil {
			return nil, fmt.Errorf("unparseable date_start %q", start)
		}
	}
	if end != "" {
		endTS, err = timeseries.ParseTimestamp(end)
		if err != nil {
			return nil, fmt.Errorf("unparseable date_end %q", end)
		}
	}
	for _, p := range tbl.Points {
		if !p.TS.Before(startTS) && !p.TS.After(endTS) {
			out.Append(p.TS, p.Value)
		}
	}
	return out, nil
}

// applyMissingPolicy resolves NaN values per the configured policy. Validated
// uploads never contain NaN, but date filtering combined with engine-internal
// callers can still hand over gaps, so the policy runs unconditionally.
func applyMissingPolicy(tbl *timeseries.Table, policy MissingPolicy) (*timeseries.Table, error) {
	switch policy {
	case MissingNone, "":
		return tbl, nil
	case MissingDrop:
		out := &timeseries.Table{}
		for _, p := range tbl.Points {
			if !math.IsNaN(p.Value) {
				out.Append(p.TS, p.Value)
			}
		}
		return out, nil
	case MissingForwardFill:
		out := tbl.Clone()
		last := math.NaN()
		for i := range out.Points {
			if math.IsNaN(out.Points[i].Value) {
				out.Points[i].Value = last
			} else {
				last = out.Points[i].Value
			}
		}
		// Leading gaps have no previous value; drop them.
		return applyMissingPolicy(out, MissingDrop)
	case MissingInterpolate:
		out := tbl.Clone()
		interpolateGaps(out)
		return applyMissingPolicy(out, MissingDrop)
	default:
		return nil, fmt.Errorf("unknown missing_policy %q", policy)
	}
}

// interpolateGaps fills NaN runs linearly in time between the surrounding
// valid points, and extends flat at both edges.
func interpolateGaps(tbl *timeseries.Table) {
	n := tbl.Len()
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(tbl.Points[i].Value) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			t0, v0 := tbl.Points[prev].TS, tbl.Points[prev].Value
			t1, v1 := tbl.Points[i].TS, tbl.Points[i].Value
			span := t1.Sub(t0).Seconds()
			for j := prev + 1; j < i; j++ {
				frac := tbl.Points[j].TS.Sub(t0).Seconds() / span
				tbl.Points[j].Value = v0 + frac*(v1-v0)
			}
		}
		if prev < 0 {
			for j := 0; j < i; j++ {
				tbl.Points[j].Value = tbl.Points[i].Value
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < n; j++ {
			tbl.Points[j].Value = tbl.Points[prev].Value
		}
	}
}

// applyLogTransform returns a log1p-transformed copy of the table, rejecting
// values outside the transform's domain.
func applyLogTransform(tbl *timeseries.Table) (*timeseries.Table, error) {
	for _, p := range tbl.Points {
		if p.Value <= -1 {
			return nil, fmt.Errorf("log_transform requires all values to be greater than -1")
		}
	}
	out := tbl.Clone()
	for i := range out.Points {
		out.Points[i].Value = math.Log1p(out.Points[i].Value)
	}
	return out, nil
}
