package transport

import (
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ErrBackpressure marks a send that failed because the outbound socket
// buffer was full. It is a recoverable per-packet condition, not a stream
// failure.
var ErrBackpressure = errors.New("transport backpressure")

const defaultWriteBuffer = 1 << 16

type Config struct {
	Server      string
	Port        int
	WriteBuffer int
}

// UDPSender owns a connected datagram socket for the lifetime of one
// stream. The socket is acquired once and released exactly once; Close is
// safe to call on every exit path.
type UDPSender struct {
	Config *Config

	conn   net.Conn
	closed bool
}

func NewUDPSender(config *Config) (*UDPSender, error) {
	udp := &UDPSender{Config: config}
	if err := udp.connect(); err != nil {
		return nil, err
	}
	return udp, nil
}

// NewUDPSenderFromFile loads a TOML config relative to the binary location.
func NewUDPSenderFromFile(fileName string) (*UDPSender, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return NewUDPSenderFromReader(file)
}

func NewUDPSenderFromReader(configReader io.Reader) (*UDPSender, error) {
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrap(err, "unable to load udp sender configuration")
	}
	return NewUDPSender(&config)
}

func (udp *UDPSender) connect() error {
	writeBufSize := udp.Config.WriteBuffer
	if writeBufSize <= 0 {
		writeBufSize = defaultWriteBuffer
	}

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d",
		udp.Config.Server,
		udp.Config.Port))
	if err != nil {
		return errors.Wrap(err, "unable to dial udp target")
	}
	udpConn := conn.(*net.UDPConn)
	if err = udpConn.SetWriteBuffer(writeBufSize); err != nil {
		return errors.Wrapf(err, "unable to set OS write buffer to %v", writeBufSize)
	}

	udp.conn = conn
	return nil
}

// Send writes one packet without blocking on a full socket buffer. A full
// buffer surfaces as ErrBackpressure so the caller can count the drop and
// move on.
func (udp *UDPSender) Send(b []byte) error {
	if udp.closed {
		return errors.New("send on closed transport")
	}
	_, err := udp.conn.Write(b)
	return classifySendErr(err)
}

func (udp *UDPSender) Close() error {
	if udp.closed {
		return nil
	}
	udp.closed = true
	return udp.conn.Close()
}

// IsBackpressure reports whether the error from Send is a recoverable
// buffer-full condition.
func IsBackpressure(err error) bool {
	return stderrors.Is(err, ErrBackpressure)
}

func classifySendErr(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.ENOBUFS:
			return ErrBackpressure
		}
	}
	var nerr net.Error
	if stderrors.As(err, &nerr) && nerr.Timeout() {
		return ErrBackpressure
	}
	return errors.Wrap(err, "unable to send packet")
}
