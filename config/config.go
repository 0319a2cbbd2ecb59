package config

// Resolved configuration values from the CLI.
var (
	LogLevel string // logrus level name

	Recording     string  // path to a recorded session directory
	TestMode      bool    // generate a synthetic session instead of loading one
	TestLaps      int     // laps in the synthetic session
	TestLapSecs   float64 // lap length of the synthetic session in seconds
	Server        string  // UDP target host
	Port          int     // UDP target port
	TransportTOML string  // transport config file next to the binary, overrides Server/Port
	Rate          int     // target sample rate in Hz
	MaxLatencyMs  int     // per-packet latency budget in milliseconds
	Car           int     // car number stamped on every packet

	ListenPort int // UDP port the listener binds
)
