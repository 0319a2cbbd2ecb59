package stream

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pitwall/pitstream/telemetry"
	"github.com/pitwall/pitstream/transport"
)

// Sender is the outbound transport owned by the pacer for the lifetime of a
// stream.
type Sender interface {
	Send(b []byte) error
	Close() error
}

type state int

const (
	stateWarmingUp state = iota
	stateStreaming
	stateDraining
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateWarmingUp:
		return "warming_up"
	case stateStreaming:
		return "streaming"
	case stateDraining:
		return "draining"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

type PacerConfig struct {
	// Rate is the nominal output frequency in packets per second.
	Rate int
	// LatencyBudget is the per-packet send latency ceiling. A send that
	// takes longer counts as a drop even though the packet went out.
	LatencyBudget time.Duration
	// WindowSize bounds the rolling latency window; 0 uses the default.
	WindowSize int
}

// Pacer drives the timed send loop: one packet per nominal interval, send
// latency measured against the budget, drops and lag accounted for. All
// state is owned by the single Run flow.
type Pacer struct {
	cfg      PacerConfig
	sender   Sender
	metrics  *Aggregator
	interval time.Duration

	state      state
	currentLap telemetry.LapInfo
}

func NewPacer(cfg PacerConfig, sender Sender) *Pacer {
	if cfg.Rate <= 0 {
		cfg.Rate = 500
	}
	return &Pacer{
		cfg:      cfg,
		sender:   sender,
		metrics:  NewAggregator(cfg.WindowSize),
		interval: time.Second / time.Duration(cfg.Rate),
		state:    stateWarmingUp,
	}
}

func (p *Pacer) Metrics() *Aggregator {
	return p.metrics
}

func (p *Pacer) CurrentLap() telemetry.LapInfo {
	return p.currentLap
}

// Run streams the source to exhaustion. Cancellation is observed between
// packets, never mid-send, and the transport is released exactly once on
// every exit path.
func (p *Pacer) Run(ctx context.Context, src *PacketSource) error {
	log.WithFields(log.Fields{
		"packets":   src.Len(),
		"rate":      p.cfg.Rate,
		"budget_ms": p.cfg.LatencyBudget.Milliseconds(),
		"interval":  p.interval,
	}).Info("starting telemetry stream")

	defer func() {
		p.state = stateDraining
		p.logSummary()
		if cerr := p.sender.Close(); cerr != nil {
			log.WithField("err", cerr).Warn("unable to close transport")
		}
		p.state = stateClosed
	}()

	target := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pkt, lap, ok := src.Next()
		if !ok {
			return nil
		}
		p.currentLap = lap

		b, err := pkt.Encode()
		if err != nil {
			return errors.Wrap(err, "unable to serialize packet")
		}

		sendStart := time.Now()
		sendErr := p.sender.Send(b)
		latency := time.Since(sendStart)

		switch {
		case transport.IsBackpressure(sendErr):
			p.metrics.AddDropped()
			log.WithField("packet", pkt.ID).Warn("packet dropped: send buffer full")
		case sendErr != nil:
			p.metrics.AddDropped()
			log.WithFields(log.Fields{"packet": pkt.ID, "err": sendErr}).Error("unable to send packet")
		default:
			p.metrics.AddSent(len(b))
			p.metrics.RecordLatency(latency)
			if latency > p.cfg.LatencyBudget {
				p.metrics.AddDropped()
				log.WithFields(log.Fields{
					"packet":  pkt.ID,
					"latency": latency,
					"budget":  p.cfg.LatencyBudget,
				}).Warn("packet dropped: latency budget exceeded")
			}
		}

		if p.state == stateWarmingUp {
			// First packet absorbs startup overhead; pacing starts now.
			p.state = stateStreaming
			p.metrics.MarkStart()
			target = time.Now()
			log.WithField("state", p.state).Debug("pacing engaged")
			continue
		}

		target = target.Add(p.interval)
		now := time.Now()
		if now.Before(target) {
			timer := time.NewTimer(target.Sub(now))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		} else if lag := now.Sub(target); lag > p.cfg.LatencyBudget {
			log.WithField("lag", lag).Error("stream lagging behind target cadence")
		}

		// keyed on packets processed, not sent, so a run of drops at a
		// boundary cannot repeat the snapshot
		if processed := pkt.ID + 1; processed%int64(p.cfg.Rate) == 0 {
			p.logSnapshot()
		}
	}
}

func (p *Pacer) logSnapshot() {
	s := p.metrics.Snapshot()
	log.WithFields(log.Fields{
		"sent":     s.PacketsSent,
		"dropped":  s.PacketsDropped,
		"pps":      int(s.PacketsPerSecond),
		"mbps":     s.ThroughputMbps,
		"mean_lat": s.MeanLatency,
		"p99_lat":  s.P99Latency,
		"loss_pct": s.LossRatePercent,
		"lap":      p.currentLap.Number,
		"lap_pct":  int(p.currentLap.Progress),
	}).Info("stream metrics")
}

func (p *Pacer) logSummary() {
	s := p.metrics.Snapshot()
	log.WithFields(log.Fields{
		"sent":     s.PacketsSent,
		"dropped":  s.PacketsDropped,
		"bytes":    s.BytesSent,
		"pps":      int(s.PacketsPerSecond),
		"mean_lat": s.MeanLatency,
		"p99_lat":  s.P99Latency,
		"loss_pct": s.LossRatePercent,
		"elapsed":  s.Elapsed.Round(time.Millisecond),
	}).Info("stream complete")
}
