package telemetry

import "math"

// LapInfo describes where a uniform-sequence index falls within the session.
type LapInfo struct {
	Number   int
	Progress float64 // percent of the lap completed, 0-100
	Duration float64 // recorded lap time in seconds
}

type scaledBoundary struct {
	start, end int
	lap        LapBoundary
}

// LapLocator maps uniform-sequence indices back to lap context. Boundaries
// recorded against the raw sequence are projected into uniform index space
// once, at construction.
type LapLocator struct {
	scaled []scaledBoundary
}

// NewLapLocator scales each raw boundary by uniformCount/rawCount. The
// scaled ranges are contiguous and cover [0, uniformCount-1]; floor rounding
// can leave a small tail past the final boundary, which Locate attributes to
// the last lap.
func NewLapLocator(boundaries []LapBoundary, rawCount, uniformCount int) *LapLocator {
	scale := 1.0
	if rawCount > 0 {
		scale = float64(uniformCount) / float64(rawCount)
	}
	scaled := make([]scaledBoundary, 0, len(boundaries))
	for _, b := range boundaries {
		scaled = append(scaled, scaledBoundary{
			start: int(math.Floor(float64(b.Start) * scale)),
			end:   int(math.Floor(float64(b.End+1)*scale)) - 1,
			lap:   b,
		})
	}
	return &LapLocator{scaled: scaled}
}

// Locate returns the lap containing the uniform index. Indices beyond the
// last scaled boundary fall back to the last lap at 100% progress.
func (l *LapLocator) Locate(index int) LapInfo {
	if len(l.scaled) == 0 {
		return LapInfo{Number: 1}
	}
	for _, sb := range l.scaled {
		if index < sb.start || index > sb.end {
			continue
		}
		length := sb.end - sb.start + 1
		progress := 0.0
		if length > 0 {
			progress = float64(index-sb.start) / float64(length) * 100
		}
		return LapInfo{
			Number:   sb.lap.Number,
			Progress: clampPercent(progress),
			Duration: sb.lap.Duration,
		}
	}
	last := l.scaled[len(l.scaled)-1].lap
	return LapInfo{Number: last.Number, Progress: 100, Duration: last.Duration}
}

// Laps returns the number of laps known to the locator.
func (l *LapLocator) Laps() int {
	return len(l.scaled)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
