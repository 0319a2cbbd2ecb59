package telemetry

import (
	"github.com/pkg/errors"
)

// Channel names recorded for every session. Any additional channel found in
// a recording is carried through the pipeline with the default resampling
// rule.
const (
	ChannelSpeed    = "speed"
	ChannelThrottle = "throttle"
	ChannelBrake    = "brake"
	ChannelGear     = "gear"
	ChannelRPM      = "rpm"
	ChannelDRS      = "drs"
)

// LapBoundary is the inclusive index range of one lap within the
// concatenated sample sequence.
type LapBoundary struct {
	Start    int
	End      int
	Number   int
	Duration float64 // recorded lap time in seconds
}

// SampleStore holds the concatenated multi-lap raw series, column oriented.
// Times are cumulative across laps and non-decreasing within a lap.
// Populated once at load time, read-only afterwards.
type SampleStore struct {
	Times      []float64
	Channels   map[string][]float64
	Boundaries []LapBoundary
}

func (s *SampleStore) Len() int {
	return len(s.Times)
}

// Channel returns the named column or nil if the recording lacks it.
func (s *SampleStore) Channel(name string) []float64 {
	if s.Channels == nil {
		return nil
	}
	return s.Channels[name]
}

// Validate checks the boundary table invariants: contiguous, ordered by lap
// number and jointly covering the full sample range.
func (s *SampleStore) Validate() error {
	for name, col := range s.Channels {
		if len(col) != len(s.Times) {
			return errors.Errorf("channel %s has %d samples, expected %d", name, len(col), len(s.Times))
		}
	}
	if len(s.Boundaries) == 0 {
		if len(s.Times) == 0 {
			return nil
		}
		return errors.New("samples present but no lap boundaries")
	}
	if s.Boundaries[0].Start != 0 {
		return errors.Errorf("first lap starts at index %d, expected 0", s.Boundaries[0].Start)
	}
	for i, b := range s.Boundaries {
		if b.End < b.Start {
			return errors.Errorf("lap %d has end %d before start %d", b.Number, b.End, b.Start)
		}
		if i > 0 {
			prev := s.Boundaries[i-1]
			if b.Start != prev.End+1 {
				return errors.Errorf("lap %d starts at %d, expected %d", b.Number, b.Start, prev.End+1)
			}
			if b.Number <= prev.Number {
				return errors.Errorf("lap numbers not increasing: %d after %d", b.Number, prev.Number)
			}
		}
	}
	if last := s.Boundaries[len(s.Boundaries)-1]; last.End != len(s.Times)-1 {
		return errors.Errorf("last lap ends at %d, expected %d", last.End, len(s.Times)-1)
	}
	return nil
}
