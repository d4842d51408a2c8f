package forecast

import (
	"fmt"
	"strings"
	"time"
)

// Frame is a timestamp-indexed table of float columns, the uniform shape every
// model adapter returns. The point forecast lives in one column named after
// the model; interval bounds use "<model>-lo-<level>" / "<model>-hi-<level>".
type Frame struct {
	Times []time.Time

	order []string
	cols  map[string][]float64
}

// NewFrame creates an empty frame over the given timestamps
func NewFrame(times []time.Time) *Frame {
	return &Frame{
		Times: times,
		cols:  make(map[string][]float64),
	}
}

// SetColumn adds or replaces a column. The values slice must match the
// frame length; mismatches are a programming error and panic.
func (f *Frame) SetColumn(name string, values []float64) {
	if len(values) != len(f.Times) {
		panic(fmt.Sprintf("frame column %q has %d values for %d rows", name, len(values), len(f.Times)))
	}
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = values
}

// Column returns the named column, or false when absent
func (f *Frame) Column(name string) ([]float64, bool) {
	vals, ok := f.cols[name]
	return vals, ok
}

// Columns returns column names in insertion order
func (f *Frame) Columns() []string {
	return f.order
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Times)
}

// filterRows keeps only rows where keep[i] is true, returning a new frame
func (f *Frame) filterRows(keep []bool) *Frame {
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	out := &Frame{
		Times: make([]time.Time, 0, kept),
		cols:  make(map[string][]float64, len(f.cols)),
	}
	out.order = append(out.order, f.order...)
	for i, k := range keep {
		if k {
			out.Times = append(out.Times, f.Times[i])
		}
	}
	for name, vals := range f.cols {
		filtered := make([]float64, 0, kept)
		for i, k := range keep {
			if k {
				filtered = append(filtered, vals[i])
			}
		}
		out.cols[name] = filtered
	}
	return out
}

// Interval column naming shared by adapters and the assembler.
func lowerColumn(model string, level int) string {
	return fmt.Sprintf("%s-lo-%d", model, level)
}

func upperColumn(model string, level int) string {
	return fmt.Sprintf("%s-hi-%d", model, level)
}

func isIntervalColumn(name string) bool {
	return strings.Contains(name, "-lo-") || strings.Contains(name, "-hi-")
}
