package frame

import "encoding/binary"

// WebSocket base framing (RFC 6455 section 5.2), big-endian:
//
//	Byte 0    FIN (1 bit) | RSV1-3 (3 bits, must be zero) | opcode (4 bits)
//	Byte 1    MASK (1 bit) | payload length (7 bits)
//	          length 126: next 2 bytes are a 16-bit length
//	          length 127: next 8 bytes are a 64-bit length, MSB must be zero
//	          MASK set:   next 4 bytes are the masking key
//	Payload   masked with the key when MASK is set
//
// Extensions and fragment reassembly are out of scope; each parsed frame is
// handed out as-is with its payload unmasked.

// WebSocket opcodes.
const (
	OpContinuation byte = 0x0
	OpText         byte = 0x1
	OpBinary       byte = 0x2
	OpClose        byte = 0x8
	OpPing         byte = 0x9
	OpPong         byte = 0xA
)

const (
	wsFinBit  = 0x80
	wsRsvMask = 0x70
	wsOpMask  = 0x0F
	wsMaskBit = 0x80
	wsLenMask = 0x7F

	// WebSocketDefaultMaxPayload bounds a single frame when the builder
	// does not configure its own limit.
	WebSocketDefaultMaxPayload = 1 << 20
)

func validOpcode(op byte) bool {
	switch op {
	case OpContinuation, OpText, OpBinary, OpClose, OpPing, OpPong:
		return true
	}
	return false
}

// WebSocketFrame is one base frame. Outbound frames built with New or
// NewWebSocketFrame encode unmasked with FIN set (server-side convention);
// inbound frames keep the FIN/opcode they arrived with, payload unmasked.
type WebSocketFrame struct {
	fin     bool
	opcode  byte
	payload []byte
}

// NewWebSocketFrame builds a final frame with the given opcode.
func NewWebSocketFrame(opcode byte, payload []byte) (*WebSocketFrame, error) {
	if !validOpcode(opcode) {
		return nil, ErrMalformed
	}
	if opcode >= OpClose && len(payload) > 125 {
		// Control frames carry at most 125 bytes.
		return nil, ErrTooLarge
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return &WebSocketFrame{fin: true, opcode: opcode, payload: p}, nil
}

func (f *WebSocketFrame) Payload() []byte { return f.payload }

// Fin reports whether the frame is the final fragment of its message.
func (f *WebSocketFrame) Fin() bool { return f.fin }

// Opcode returns the frame's opcode.
func (f *WebSocketFrame) Opcode() byte { return f.opcode }

func (f *WebSocketFrame) Bytes() []byte {
	buf := make([]byte, 0, f.Len())
	b0 := f.opcode
	if f.fin {
		b0 |= wsFinBit
	}
	buf = append(buf, b0)
	switch n := len(f.payload); {
	case n < 126:
		buf = append(buf, byte(n))
	case n <= 65535:
		buf = append(buf, 126, byte(n>>8), byte(n))
	default:
		var ext [8]byte
		binary.BigEndian.PutUint64(ext[:], uint64(n))
		buf = append(buf, 127)
		buf = append(buf, ext[:]...)
	}
	return append(buf, f.payload...)
}

func (f *WebSocketFrame) Len() int {
	n := len(f.payload)
	switch {
	case n < 126:
		return 2 + n
	case n <= 65535:
		return 4 + n
	default:
		return 10 + n
	}
}

// WebSocketBuilder parses and builds base frames. MaxPayload caps the
// declared payload length; zero means WebSocketDefaultMaxPayload.
type WebSocketBuilder struct {
	MaxPayload int
}

func (b WebSocketBuilder) maxPayload() int {
	if b.MaxPayload <= 0 {
		return WebSocketDefaultMaxPayload
	}
	return b.MaxPayload
}

// MaxWireLen reports the largest legal encoded frame size.
func (b WebSocketBuilder) MaxWireLen() int {
	// Worst-case header: 2 base bytes, 8 extended-length bytes, 4 key bytes.
	return 14 + b.maxPayload()
}

// New builds an unmasked final binary frame around payload.
func (b WebSocketBuilder) New(payload []byte) (Frame, error) {
	if len(payload) > b.maxPayload() {
		return nil, ErrTooLarge
	}
	return NewWebSocketFrame(OpBinary, payload)
}

func (b WebSocketBuilder) FromBytes(buf []byte) (Frame, int, error) {
	if len(buf) < 2 {
		return nil, 0, nil
	}
	if buf[0]&wsRsvMask != 0 {
		return nil, 0, ErrMalformed
	}
	opcode := buf[0] & wsOpMask
	if !validOpcode(opcode) {
		return nil, 0, ErrMalformed
	}
	fin := buf[0]&wsFinBit != 0
	masked := buf[1]&wsMaskBit != 0

	length := uint64(buf[1] & wsLenMask)
	off := 2
	switch length {
	case 126:
		if len(buf) < off+2 {
			return nil, 0, nil
		}
		length = uint64(binary.BigEndian.Uint16(buf[off:]))
		off += 2
	case 127:
		if len(buf) < off+8 {
			return nil, 0, nil
		}
		length = binary.BigEndian.Uint64(buf[off:])
		if length&(1<<63) != 0 {
			return nil, 0, ErrMalformed
		}
		off += 8
	}
	if opcode >= OpClose && (!fin || length > 125) {
		return nil, 0, ErrMalformed
	}
	if length > uint64(b.maxPayload()) {
		return nil, 0, ErrTooLarge
	}

	var key [4]byte
	if masked {
		if len(buf) < off+4 {
			return nil, 0, nil
		}
		copy(key[:], buf[off:])
		off += 4
	}

	total := off + int(length)
	if len(buf) < total {
		return nil, 0, nil
	}
	payload := make([]byte, length)
	copy(payload, buf[off:total])
	if masked {
		for i := range payload {
			payload[i] ^= key[i%4]
		}
	}
	return &WebSocketFrame{fin: fin, opcode: opcode, payload: payload}, total, nil
}
