package frame

import "encoding/binary"

// Checksum32 wire layout, big-endian:
//
//	Offset  Field           Size
//	0       Payload Length  32 bits, unsigned
//	4       Payload         Payload Length bytes
//	4+N     Checksum        32 bits, sum of all payload bytes
const (
	checksumHeaderLen  = 4
	checksumTrailerLen = 4

	// Checksum32MaxPayload is the largest payload whose worst-case byte sum
	// (every byte 0xFF) still fits the 32-bit checksum field.
	Checksum32MaxPayload = 16843009
)

// Checksum32Frame is a payload wrapped in a 4-byte length prefix and a
// 4-byte byte-sum trailer.
type Checksum32Frame struct {
	payload  []byte
	checksum uint32
}

// NewChecksum32Frame copies payload into a frame and computes its checksum.
func NewChecksum32Frame(payload []byte) (*Checksum32Frame, error) {
	if len(payload) > Checksum32MaxPayload {
		return nil, ErrTooLarge
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	return &Checksum32Frame{payload: p, checksum: byteSum(p)}, nil
}

func byteSum(p []byte) uint32 {
	var sum uint32
	for _, b := range p {
		sum += uint32(b)
	}
	return sum
}

func (f *Checksum32Frame) Payload() []byte { return f.payload }

// Checksum returns the 32-bit byte sum carried in the trailer.
func (f *Checksum32Frame) Checksum() uint32 { return f.checksum }

func (f *Checksum32Frame) Bytes() []byte {
	buf := make([]byte, f.Len())
	binary.BigEndian.PutUint32(buf, uint32(len(f.payload)))
	copy(buf[checksumHeaderLen:], f.payload)
	binary.BigEndian.PutUint32(buf[checksumHeaderLen+len(f.payload):], f.checksum)
	return buf
}

func (f *Checksum32Frame) Len() int {
	return checksumHeaderLen + len(f.payload) + checksumTrailerLen
}

// Checksum32Builder parses and builds Checksum32 frames. MaxPayload caps
// the declared payload length; zero or anything above Checksum32MaxPayload
// means Checksum32MaxPayload.
type Checksum32Builder struct {
	MaxPayload int
}

func (b Checksum32Builder) maxPayload() int {
	if b.MaxPayload <= 0 || b.MaxPayload > Checksum32MaxPayload {
		return Checksum32MaxPayload
	}
	return b.MaxPayload
}

// MaxWireLen reports the largest legal encoded frame size.
func (b Checksum32Builder) MaxWireLen() int {
	return checksumHeaderLen + b.maxPayload() + checksumTrailerLen
}

func (b Checksum32Builder) New(payload []byte) (Frame, error) {
	if len(payload) > b.maxPayload() {
		return nil, ErrTooLarge
	}
	return NewChecksum32Frame(payload)
}

func (b Checksum32Builder) FromBytes(buf []byte) (Frame, int, error) {
	if len(buf) < checksumHeaderLen+checksumTrailerLen {
		return nil, 0, nil
	}
	length := binary.BigEndian.Uint32(buf)
	if length > uint32(b.maxPayload()) {
		return nil, 0, ErrTooLarge
	}
	total := checksumHeaderLen + int(length) + checksumTrailerLen
	if len(buf) < total {
		return nil, 0, nil
	}
	payload := make([]byte, length)
	copy(payload, buf[checksumHeaderLen:checksumHeaderLen+int(length)])
	declared := binary.BigEndian.Uint32(buf[checksumHeaderLen+int(length):])
	if declared != byteSum(payload) {
		return nil, 0, ErrMalformed
	}
	return &Checksum32Frame{payload: payload, checksum: declared}, total, nil
}
