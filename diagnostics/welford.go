package diagnostics

import "math"

// FrontierStats holds running statistics of the frontier size using
// Welford's online algorithm.
type FrontierStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"` // sum of squared differences from mean
	Max   int     `json:"max"`
}

// Update adds one observation.
func (w *FrontierStats) Update(size int) {
	v := float64(size)
	w.Count++
	delta := v - w.Mean
	w.Mean += delta / float64(w.Count)
	w.M2 += delta * (v - w.Mean)
	if size > w.Max {
		w.Max = size
	}
}

// StdDev returns the population standard deviation, 0 with fewer than two
// observations.
func (w FrontierStats) StdDev() float64 {
	if w.Count < 2 {
		return 0
	}
	return math.Sqrt(w.M2 / float64(w.Count))
}

// Combine merges two independent streams (Chan et al. parallel update).
func (w FrontierStats) Combine(o FrontierStats) FrontierStats {
	if w.Count == 0 {
		return o
	}
	if o.Count == 0 {
		return w
	}
	n := w.Count + o.Count
	delta := o.Mean - w.Mean
	out := FrontierStats{
		Count: n,
		Mean:  w.Mean + delta*float64(o.Count)/float64(n),
		M2:    w.M2 + o.M2 + delta*delta*float64(w.Count)*float64(o.Count)/float64(n),
		Max:   max(w.Max, o.Max),
	}
	return out
}
