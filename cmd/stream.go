package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitwall/pitstream/config"
	"github.com/pitwall/pitstream/session"
	"github.com/pitwall/pitstream/stream"
	"github.com/pitwall/pitstream/telemetry"
	"github.com/pitwall/pitstream/transport"
)

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Resample a recorded session and stream it over UDP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.Recording, "recording", "",
		"directory holding session.toml and the sample csv")
	cmd.Flags().BoolVar(&config.TestMode, "testmode", false,
		"stream a synthetic session instead of a recording")
	cmd.Flags().IntVar(&config.TestLaps, "laps", 3,
		"laps in the synthetic session")
	cmd.Flags().Float64Var(&config.TestLapSecs, "lap-seconds", 60,
		"lap length of the synthetic session")
	cmd.Flags().StringVar(&config.Server, "server", "127.0.0.1",
		"UDP target host")
	cmd.Flags().IntVar(&config.Port, "port", 20777,
		"UDP target port")
	cmd.Flags().StringVar(&config.TransportTOML, "transport-config", "",
		"TOML transport config relative to the binary, overrides --server/--port")
	cmd.Flags().IntVar(&config.Rate, "rate", 500,
		"target sample rate in Hz")
	cmd.Flags().IntVar(&config.MaxLatencyMs, "max-latency", 10,
		"per-packet latency budget in milliseconds")
	cmd.Flags().IntVar(&config.Car, "car", 44,
		"car number stamped on every packet")
	return cmd
}

func runStream(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := loadRecording()
	if err != nil {
		return err
	}
	car := rec.Car
	if config.Car != 0 {
		car = config.Car
	}

	series, err := telemetry.Resample(rec.Store, float64(config.Rate))
	if err != nil {
		return errors.Wrap(err, "unable to resample session")
	}
	locator := telemetry.NewLapLocator(rec.Store.Boundaries, rec.Store.Len(), series.Len())
	log.WithFields(log.Fields{
		"raw":     rec.Store.Len(),
		"uniform": series.Len(),
		"laps":    locator.Laps(),
		"rate":    config.Rate,
	}).Info("session resampled")

	sender, err := openTransport()
	if err != nil {
		return errors.Wrap(err, "unable to open transport")
	}

	src := stream.NewPacketSource(series, locator, car, time.Now())
	pacer := stream.NewPacer(stream.PacerConfig{
		Rate:          config.Rate,
		LatencyBudget: time.Duration(config.MaxLatencyMs) * time.Millisecond,
	}, sender)

	if err := pacer.Run(ctx, src); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("stream interrupted")
			return nil
		}
		return err
	}
	return nil
}

func openTransport() (*transport.UDPSender, error) {
	if config.TransportTOML != "" {
		return transport.NewUDPSenderFromFile(config.TransportTOML)
	}
	return transport.NewUDPSender(&transport.Config{
		Server: config.Server,
		Port:   config.Port,
	})
}

func loadRecording() (*session.Recording, error) {
	if config.TestMode {
		return session.Synthetic(config.TestLaps, config.TestLapSecs, 10, config.Car), nil
	}
	if config.Recording == "" {
		return nil, errors.New("either --recording or --testmode is required")
	}
	return session.Load(config.Recording)
}
