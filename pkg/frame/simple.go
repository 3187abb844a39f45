package frame

import "encoding/binary"

// Simple wire layout, all fields packed, big-endian:
//
//	Offset  Field           Size
//	0       Payload Length  16 bits, unsigned
//	2       Payload         Payload Length bytes
const (
	simpleHeaderLen = 2

	// SimpleMaxPayload is the largest payload the 16-bit length field can
	// describe.
	SimpleMaxPayload = 65535
)

// SimpleFrame is a payload behind a 2-byte length prefix.
type SimpleFrame struct {
	payload []byte
}

// NewSimpleFrame copies payload into a frame.
func NewSimpleFrame(payload []byte) (*SimpleFrame, error) {
	if len(payload) > SimpleMaxPayload {
		return nil, ErrTooLarge
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return &SimpleFrame{payload: p}, nil
}

func (f *SimpleFrame) Payload() []byte { return f.payload }

func (f *SimpleFrame) Bytes() []byte {
	buf := make([]byte, simpleHeaderLen+len(f.payload))
	binary.BigEndian.PutUint16(buf, uint16(len(f.payload)))
	copy(buf[simpleHeaderLen:], f.payload)
	return buf
}

func (f *SimpleFrame) Len() int { return simpleHeaderLen + len(f.payload) }

// SimpleBuilder parses and builds Simple frames. MaxPayload caps the
// declared payload length; zero or anything above SimpleMaxPayload means
// SimpleMaxPayload.
type SimpleBuilder struct {
	MaxPayload int
}

func (b SimpleBuilder) maxPayload() int {
	if b.MaxPayload <= 0 || b.MaxPayload > SimpleMaxPayload {
		return SimpleMaxPayload
	}
	return b.MaxPayload
}

// MaxWireLen reports the largest legal encoded frame size.
func (b SimpleBuilder) MaxWireLen() int { return simpleHeaderLen + b.maxPayload() }

func (b SimpleBuilder) New(payload []byte) (Frame, error) {
	if len(payload) > b.maxPayload() {
		return nil, ErrTooLarge
	}
	return NewSimpleFrame(payload)
}

func (b SimpleBuilder) FromBytes(buf []byte) (Frame, int, error) {
	if len(buf) < simpleHeaderLen {
		return nil, 0, nil
	}
	length := int(binary.BigEndian.Uint16(buf))
	if length > b.maxPayload() {
		return nil, 0, ErrTooLarge
	}
	if len(buf)-simpleHeaderLen < length {
		// Header stays buffered so the next call re-evaluates atomically.
		return nil, 0, nil
	}
	payload := make([]byte, length)
	copy(payload, buf[simpleHeaderLen:simpleHeaderLen+length])
	return &SimpleFrame{payload: payload}, simpleHeaderLen + length, nil
}
