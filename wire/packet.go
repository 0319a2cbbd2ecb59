package wire

// Priority classifies a packet for downstream consumers. All four levels
// are part of the wire schema; the current classification rule only ever
// assigns Critical and High, the remaining levels are kept for
// compatibility with receivers that understand them.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// ClassifyPriority applies the packet priority rule, first match wins.
func ClassifyPriority(waterTempC int, drsActive bool) Priority {
	switch {
	case waterTempC > 120:
		return PriorityCritical
	case drsActive:
		return PriorityHigh
	default:
		return PriorityHigh
	}
}

// TelemetryPacket is one wire packet for one uniform sample. Immutable once
// built; ID is the sole identity key and increases by one per packet.
type TelemetryPacket struct {
	TimestampMs int64
	CarNumber   int
	ID          int64
	Priority    Priority

	SpeedKmh        int
	ThrottlePercent float64 // fraction, 0.0-1.0
	BrakePercent    float64 // fraction, 0.0-1.0
	SteeringAngle   float64 // -1.0 to 1.0
	Gear            int
	EngineRPM       int
	DRSActive       bool

	OilPressureBar float64
	OilTempC       int
	WaterTempC     int
	ExhaustTempC   int

	TyrePressurePsi  [4]float64 // FL, FR, RL, RR
	TyreTempSurfaceC [4]int
	TyreTempCoreC    [4]int

	ERSStoreJ     float64
	ERSDeployMode int
	MGUKPowerW    float64
	MGUHPowerW    float64

	FuelFlowRateKgH float64
	FuelRemainingKg float64
}

// DefaultTyrePressures is applied when a packet is built without measured
// values.
var DefaultTyrePressures = [4]float64{23.0, 23.0, 21.0, 21.0}
