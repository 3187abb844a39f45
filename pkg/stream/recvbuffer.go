package stream

// ReceiveBuffer accumulates raw transport bytes until a frame builder claims
// them. Bytes keep wire order and are only ever consumed from the front.
type ReceiveBuffer struct {
	buf []byte
	off int // start of the unconsumed window
}

// Append adds p after any buffered bytes.
func (b *ReceiveBuffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// Bytes returns the unconsumed window. The slice aliases internal storage
// and is valid only until the next Append or Compact.
func (b *ReceiveBuffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Len reports the number of unconsumed bytes.
func (b *ReceiveBuffer) Len() int {
	return len(b.buf) - b.off
}

// Advance marks n bytes consumed from the front. Advancing past the
// unconsumed window is a caller bug and panics.
func (b *ReceiveBuffer) Advance(n int) {
	if n < 0 || n > b.Len() {
		panic("stream: Advance past end of receive buffer")
	}
	b.off += n
}

// Compact physically drops the consumed prefix so the backing array stops
// growing. Buffered bytes of an incomplete frame are preserved.
func (b *ReceiveBuffer) Compact() {
	if b.off == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.off:])
	b.buf = b.buf[:n]
	b.off = 0
}
