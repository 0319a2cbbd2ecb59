package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall/pitstream/wire"
)

func encodePacket(t *testing.T, id int64, priority wire.Priority) []byte {
	t.Helper()
	pkt := &wire.TelemetryPacket{ID: id, Priority: priority}
	b, err := pkt.Encode()
	require.NoError(t, err)
	return b
}

func TestListenerTracksSequenceGaps(t *testing.T) {
	l := &listener{lastID: -1}

	l.track(encodePacket(t, 0, wire.PriorityHigh))
	l.track(encodePacket(t, 1, wire.PriorityHigh))
	l.track(encodePacket(t, 5, wire.PriorityCritical))

	assert.Equal(t, int64(3), l.received)
	assert.Equal(t, int64(3), l.gaps, "ids 2-4 went missing")
	assert.Equal(t, int64(1), l.critical)
	assert.Equal(t, int64(5), l.lastID)
}

func TestListenerCountsDecodeErrors(t *testing.T) {
	l := &listener{lastID: -1}

	l.track([]byte{0xc1})
	l.track(encodePacket(t, 0, wire.PriorityHigh))

	assert.Equal(t, int64(2), l.received)
	assert.Equal(t, int64(1), l.decodeErrs)
	assert.Equal(t, int64(0), l.lastID)
}
