package websocket

import (
	"bufio"
	"crypto/sha1" //nolint: gosec // RFC 6455 requires the use of SHA-1 for WebSocket
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opBinary       byte = 0x2
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA
)

const maxMessageSize = 64 << 10

var (
	ErrConnectionClosed = errors.New("connection closed by peer")
	ErrMessageTooLarge  = errors.New("message too large")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	payload []byte
}

// GenerateAcceptKey - generates key for WebSocket handshake.
func GenerateAcceptKey(key string) string {
	h := sha1.New() //nolint: gosec // RFC 6455 requires the use of SHA-1 for WebSocket

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// writeFrame - writes an unmasked server frame and flushes it.
func writeFrame(writer *bufio.Writer, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode
	if frameData.isFin {
		header[0] |= 0x80
	}

	length := uint64(len(frameData.payload))

	switch {
	case length < 126:
		header[1] = byte(length)
	case length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, length)
	}

	if _, err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := writer.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readFrame - reads a single frame, unmasking the payload when needed.
func readFrame(reader *bufio.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(reader, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	isFin := header[0]&0x80 != 0
	opCode := header[0] & 0x0f
	masked := header[1]&0x80 != 0

	size, err := readPayloadLength(reader, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if size > maxMessageSize {
		return frame{}, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}

	var mask []byte
	if masked {
		mask = make([]byte, 4)
		if _, err = io.ReadFull(reader, mask); err != nil {
			return frame{}, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	payload := make([]byte, size)
	if _, err = io.ReadFull(reader, payload); err != nil {
		return frame{}, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return frame{isFin: isFin, opCode: opCode, payload: payload}, nil
}

func readPayloadLength(reader *bufio.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(reader, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

// readMessage - reads frames until a complete data message arrives.
// Pings are answered through pong; a close frame ends the stream.
func readMessage(reader *bufio.Reader, pong func(payload []byte)) ([]byte, error) {
	var message []byte

	for {
		current, err := readFrame(reader)
		if err != nil {
			return nil, err
		}

		switch current.opCode {
		case opClose:
			return nil, ErrConnectionClosed
		case opPing:
			pong(current.payload)
			continue
		case opPong:
			continue
		case opText, opBinary, opContinuation:
			message = append(message, current.payload...)
		default:
			continue
		}

		if len(message) > maxMessageSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(message))
		}

		if current.isFin {
			return message, nil
		}
	}
}
