package websocket

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientFrame encodes a masked frame the way a browser sends it.
func clientFrame(opCode byte, fin bool, payload []byte) []byte {
	var buf bytes.Buffer

	first := opCode
	if fin {
		first |= 0x80
	}
	buf.WriteByte(first)

	switch {
	case len(payload) < 126:
		buf.WriteByte(0x80 | byte(len(payload)))
	case len(payload) < 1<<16:
		buf.WriteByte(0x80 | 126)
		_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)))
	default:
		buf.WriteByte(0x80 | 127)
		_ = binary.Write(&buf, binary.BigEndian, uint64(len(payload)))
	}

	mask := []byte{0x12, 0x34, 0x56, 0x78}
	buf.Write(mask)
	for i, b := range payload {
		buf.WriteByte(b ^ mask[i%4])
	}

	return buf.Bytes()
}

func TestGenerateAcceptKey(t *testing.T) {
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", GenerateAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestWriteFrame_ReadFrame(t *testing.T) {
	sizes := []int{0, 5, 125, 126, 300, 1 << 16}

	for _, size := range sizes {
		// Given: an unmasked server frame
		payload := bytes.Repeat([]byte{'x'}, size)
		var buf bytes.Buffer

		// When: it is written and read back
		require.NoError(t, writeFrame(bufio.NewWriter(&buf), frame{isFin: true, opCode: opText, payload: payload}))

		got, err := readFrame(bufio.NewReader(&buf))

		// Then: the payload survives unchanged
		require.NoError(t, err, "size %d", size)
		assert.True(t, got.isFin)
		assert.Equal(t, opText, got.opCode)
		assert.Equal(t, payload, got.payload)
	}
}

func TestReadFrame_Masked(t *testing.T) {
	reader := bufio.NewReader(bytes.NewReader(clientFrame(opText, true, []byte(`{"action":"game:pause"}`))))

	got, err := readFrame(reader)

	require.NoError(t, err)
	assert.Equal(t, `{"action":"game:pause"}`, string(got.payload))
}

func TestReadFrame_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(bufio.NewWriter(&buf), frame{isFin: true, opCode: opText, payload: make([]byte, maxMessageSize+1)}))

	_, err := readFrame(bufio.NewReader(&buf))

	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReadFrame_TruncatedHeader(t *testing.T) {
	_, err := readFrame(bufio.NewReader(strings.NewReader("\x81")))

	require.Error(t, err)
}

func TestReadMessage(t *testing.T) {
	t.Run("joins fragments and answers pings", func(t *testing.T) {
		// Given: a fragmented message with a ping in between
		var stream []byte
		stream = append(stream, clientFrame(opText, false, []byte(`{"action":`))...)
		stream = append(stream, clientFrame(opPing, true, []byte("hi"))...)
		stream = append(stream, clientFrame(opContinuation, true, []byte(`"game:quit"}`))...)

		var pongs [][]byte
		pong := func(payload []byte) { pongs = append(pongs, payload) }

		// When: the message is read
		message, err := readMessage(bufio.NewReader(bytes.NewReader(stream)), pong)

		// Then: the fragments are joined and the ping answered
		require.NoError(t, err)
		assert.Equal(t, `{"action":"game:quit"}`, string(message))
		assert.Equal(t, [][]byte{[]byte("hi")}, pongs)
	})

	t.Run("close frame ends the stream", func(t *testing.T) {
		stream := clientFrame(opClose, true, nil)

		_, err := readMessage(bufio.NewReader(bytes.NewReader(stream)), func([]byte) {})

		require.ErrorIs(t, err, ErrConnectionClosed)
	})

	t.Run("oversized fragmented message", func(t *testing.T) {
		chunk := bytes.Repeat([]byte{'a'}, maxMessageSize/2+1)
		var stream []byte
		stream = append(stream, clientFrame(opText, false, chunk)...)
		stream = append(stream, clientFrame(opContinuation, true, chunk)...)

		_, err := readMessage(bufio.NewReader(bytes.NewReader(stream)), func([]byte) {})

		require.ErrorIs(t, err, ErrMessageTooLarge)
	})
}
