package stream

import (
	"sort"
	"time"
)

// DefaultLatencyWindow bounds the rolling latency buffer. Old samples are
// overwritten; the window feeds rolling statistics, it is not an audit log.
const DefaultLatencyWindow = 1000

// Aggregator accumulates per-packet send results and derives throughput and
// latency statistics on demand. It is mutated only by the single pacing
// flow, so it needs no locking.
type Aggregator struct {
	latencies []time.Duration
	next      int
	count     int

	sent    int64
	dropped int64
	bytes   int64

	start time.Time
}

func NewAggregator(windowSize int) *Aggregator {
	if windowSize <= 0 {
		windowSize = DefaultLatencyWindow
	}
	return &Aggregator{
		latencies: make([]time.Duration, windowSize),
		start:     time.Now(),
	}
}

// MarkStart resets the elapsed-time baseline. Called once the first packet
// is out so startup overhead does not skew the rate figures.
func (a *Aggregator) MarkStart() {
	a.start = time.Now()
}

// RecordLatency appends one send latency, evicting the oldest sample when
// the window is full.
func (a *Aggregator) RecordLatency(d time.Duration) {
	a.latencies[a.next] = d
	a.next = (a.next + 1) % len(a.latencies)
	if a.count < len(a.latencies) {
		a.count++
	}
}

// AddSent records one successfully sent packet of n wire bytes.
func (a *Aggregator) AddSent(n int) {
	a.sent++
	a.bytes += int64(n)
}

// AddDropped records one drop, whether from transport backpressure or a
// latency budget violation.
func (a *Aggregator) AddDropped() {
	a.dropped++
}

func (a *Aggregator) Sent() int64    { return a.sent }
func (a *Aggregator) Dropped() int64 { return a.dropped }

// Snapshot holds derived statistics at one point in time.
type Snapshot struct {
	PacketsSent    int64
	PacketsDropped int64
	BytesSent      int64
	Elapsed        time.Duration

	PacketsPerSecond float64
	ThroughputMbps   float64
	MeanLatency      time.Duration
	P99Latency       time.Duration
	LossRatePercent  float64
}

func (a *Aggregator) Snapshot() Snapshot {
	s := Snapshot{
		PacketsSent:    a.sent,
		PacketsDropped: a.dropped,
		BytesSent:      a.bytes,
		Elapsed:        time.Since(a.start),
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.PacketsPerSecond = float64(a.sent) / secs
		s.ThroughputMbps = float64(a.bytes) * 8 / (secs * 1e6)
	}
	if a.count > 0 {
		window := make([]time.Duration, a.count)
		copy(window, a.latencies[:a.count])
		sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })

		var sum time.Duration
		for _, d := range window {
			sum += d
		}
		s.MeanLatency = sum / time.Duration(len(window))

		idx := int(float64(len(window)) * 0.99)
		if idx >= len(window) {
			idx = len(window) - 1
		}
		s.P99Latency = window[idx]
	}
	denom := a.sent
	if denom < 1 {
		denom = 1
	}
	s.LossRatePercent = float64(a.dropped) / float64(denom) * 100
	return s
}
