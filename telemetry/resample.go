package telemetry

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrEmptyInput is returned when a store is empty or its time span is too
// short to produce a single uniform sample at the requested rate.
var ErrEmptyInput = errors.New("no samples to resample")

// Channel classification for resampling. Channels in neither list fall back
// to the continuous rule.
var (
	continuousChannels = []string{
		ChannelSpeed, ChannelThrottle, ChannelBrake, ChannelRPM, ChannelDRS,
	}
	discreteChannels = []string{ChannelGear}
)

// UniformSeries is the fixed-rate output of Resample. Times are strictly
// increasing with Interval spacing.
type UniformSeries struct {
	Times    []float64
	Channels map[string][]float64
	Interval float64 // seconds between consecutive samples
}

func (u *UniformSeries) Len() int {
	return len(u.Times)
}

func (u *UniformSeries) Channel(name string) []float64 {
	if u.Channels == nil {
		return nil
	}
	return u.Channels[name]
}

// Resample converts the irregular raw series into floor(duration*rate)
// samples spaced exactly 1/rate apart, starting at the first raw timestamp.
// Duplicate timestamps keep their first occurrence and out-of-order input is
// sorted, not rejected. A degenerate input yields an empty series and
// ErrEmptyInput.
func Resample(store *SampleStore, rate float64) (*UniformSeries, error) {
	empty := &UniformSeries{Channels: map[string][]float64{}}
	if store == nil || store.Len() == 0 || rate <= 0 {
		return empty, ErrEmptyInput
	}

	order := cleanOrder(store.Times)
	first := store.Times[order[0]]
	last := store.Times[order[len(order)-1]]
	duration := last - first

	count := int(math.Floor(duration * rate))
	if count <= 0 {
		return empty, ErrEmptyInput
	}

	interval := 1.0 / rate
	grid := make([]float64, count)
	for i := range grid {
		grid[i] = first + float64(i)*interval
	}

	times := make([]float64, len(order))
	for i, idx := range order {
		times[i] = store.Times[idx]
	}

	out := &UniformSeries{
		Times:    grid,
		Channels: make(map[string][]float64, len(store.Channels)),
		Interval: interval,
	}
	for name, col := range store.Channels {
		values := make([]float64, len(order))
		for i, idx := range order {
			values[i] = col[idx]
		}
		switch {
		case lo.Contains(discreteChannels, name):
			out.Channels[name] = resampleNearest(times, values, grid)
		case lo.Contains(continuousChannels, name):
			out.Channels[name] = resampleLinear(times, values, grid)
		default:
			// unclassified channels get the continuous rule
			out.Channels[name] = resampleLinear(times, values, grid)
		}
	}
	return out, nil
}

// cleanOrder returns sample indices with duplicate timestamps removed (first
// occurrence wins) and sorted by time. The sort is stable so equal times
// keep their recorded order.
func cleanOrder(times []float64) []int {
	seen := make(map[float64]struct{}, len(times))
	order := make([]int, 0, len(times))
	for i, t := range times {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]] < times[order[b]]
	})
	return order
}

// resampleLinear interpolates linearly between the bracketing raw samples.
// Grid points outside the raw range fill with 0.
func resampleLinear(times, values, grid []float64) []float64 {
	out := make([]float64, len(grid))
	j := 0
	for i, t := range grid {
		if t < times[0] || t > times[len(times)-1] {
			out[i] = 0
			continue
		}
		for j < len(times)-2 && times[j+1] < t {
			j++
		}
		t0, t1 := times[j], times[j+1]
		if t1 == t0 {
			out[i] = values[j]
			continue
		}
		frac := (t - t0) / (t1 - t0)
		out[i] = values[j] + (values[j+1]-values[j])*frac
	}
	return out
}

// resampleNearest holds the value of the nearest raw sample, preferring the
// earlier one on ties.
func resampleNearest(times, values, grid []float64) []float64 {
	out := make([]float64, len(grid))
	if len(times) == 0 {
		return out
	}
	j := 0
	for i, t := range grid {
		for j < len(times)-1 && times[j+1] <= t {
			j++
		}
		out[i] = values[j]
		if j < len(times)-1 {
			if times[j+1]-t < t-times[j] {
				out[i] = values[j+1]
			}
		}
	}
	return out
}
