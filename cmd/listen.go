package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitwall/pitstream/config"
	"github.com/pitwall/pitstream/transport"
	"github.com/pitwall/pitstream/wire"
)

func newListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive and decode a telemetry stream, reporting consumer-side metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&config.ListenPort, "port", 20777,
		"UDP port to bind")
	return cmd
}

func runListen(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := &listener{port: config.ListenPort}
	err := transport.Retry(ctx, l)
	if errors.Is(err, context.Canceled) {
		l.report()
		return nil
	}
	return err
}

// listener is the consumer side of the stream: it decodes each datagram and
// tracks loss visible through sequence-id gaps.
type listener struct {
	port int
	pc   net.PacketConn

	received   int64
	bytes      int64
	decodeErrs int64
	gaps       int64
	critical   int64
	lastID     int64

	lastReport time.Time
}

func (l *listener) Name() string {
	return "listener"
}

func (l *listener) Open() error {
	pc, err := net.ListenPacket("udp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return errors.Wrapf(err, "unable to bind udp port %d", l.port)
	}
	l.pc = pc
	l.lastID = -1
	l.lastReport = time.Now()
	log.WithField("port", l.port).Info("listening for telemetry")
	return nil
}

func (l *listener) Close() error {
	if l.pc == nil {
		return nil
	}
	return l.pc.Close()
}

func (l *listener) Start(ctx context.Context) error {
	buffer := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.pc.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
			return errors.Wrap(err, "unable to set read deadline")
		}
		n, _, err := l.pc.ReadFrom(buffer)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}
			return errors.Wrap(err, "unable to read datagram")
		}
		l.track(buffer[:n])
		if time.Since(l.lastReport) >= time.Second {
			l.report()
			l.lastReport = time.Now()
		}
	}
}

func (l *listener) track(b []byte) {
	l.received++
	l.bytes += int64(len(b))

	pkt, err := wire.Decode(b)
	if err != nil {
		l.decodeErrs++
		return
	}
	if l.lastID >= 0 && pkt.ID > l.lastID+1 {
		l.gaps += pkt.ID - l.lastID - 1
	}
	l.lastID = pkt.ID
	if pkt.Priority == wire.PriorityCritical {
		l.critical++
	}
}

func (l *listener) report() {
	log.WithFields(log.Fields{
		"received":    l.received,
		"bytes":       l.bytes,
		"seq_gaps":    l.gaps,
		"decode_errs": l.decodeErrs,
		"critical":    l.critical,
		"last_id":     l.lastID,
	}).Info("listener metrics")
}
