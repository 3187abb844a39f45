// Package frame defines the Frame and Builder abstractions plus the built-in
// wire formats: Simple (2-byte length prefix), Checksum32 (length, payload
// and a 32-bit byte-sum trailer) and WebSocket base framing.
package frame

import (
	"errors"
	"fmt"
)

// Terminal protocol violations. A stream that observes either cannot trust
// the peer to resynchronize and should be shut down.
var (
	ErrTooLarge  = errors.New("frame: declared payload length exceeds maximum")
	ErrMalformed = errors.New("frame: malformed frame")
)

// Frame is one discrete message extracted from or destined for a byte
// stream. Implementations are immutable once constructed.
type Frame interface {
	// Payload returns the application bytes carried by the frame.
	Payload() []byte
	// Bytes returns the complete wire encoding of the frame.
	Bytes() []byte
	// Len returns len(Bytes()) without encoding.
	Len() int
}

// Builder parses and builds frames for one wire format. Builders never
// perform I/O and never block.
type Builder interface {
	// New wraps payload in an outbound frame.
	New(payload []byte) (Frame, error)

	// FromBytes parses at most one frame from the front of buf.
	//
	// On success it returns the frame and the number of wire bytes it
	// occupied. When buf does not yet hold a complete frame it returns
	// (nil, 0, nil) without consuming anything, so the caller can retry
	// with the same prefix once more bytes arrive. Protocol violations
	// return ErrTooLarge or ErrMalformed.
	//
	// The returned frame must not alias buf.
	FromBytes(buf []byte) (Frame, int, error)
}

// WireLimiter is implemented by builders that can bound the wire size of a
// single frame, letting streams cap receive-buffer growth against a
// misbehaving peer.
type WireLimiter interface {
	MaxWireLen() int
}

// NewBuilder returns the named built-in builder: "simple", "checksum32" or
// "websocket". maxPayload caps the accepted payload length; zero keeps the
// format's default.
func NewBuilder(format string, maxPayload int) (Builder, error) {
	switch format {
	case "simple":
		return SimpleBuilder{MaxPayload: maxPayload}, nil
	case "checksum32":
		return Checksum32Builder{MaxPayload: maxPayload}, nil
	case "websocket":
		return WebSocketBuilder{MaxPayload: maxPayload}, nil
	}
	return nil, fmt.Errorf("frame: unknown format %q", format)
}
