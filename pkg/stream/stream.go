// Package stream turns a byte-oriented transport into a sequence of
// length-delimited frames. A Stream owns one transport, one receive buffer
// and one frame builder; it is driven externally, one Recv per readiness
// event, and performs no readiness polling of its own.
package stream

import (
	"errors"
	"io"

	"framecore/pkg/frame"
	"framecore/pkg/transport"
)

// ErrPeerClosed reports an orderly shutdown by the remote end (a zero-byte
// read). The stream will produce no further data; the caller should call
// Shutdown.
var ErrPeerClosed = errors.New("stream: peer closed connection")

const defaultReadChunk = 4096

// Options configure a Stream.
type Options struct {
	// Transport supplies raw bytes. The Stream takes exclusive ownership;
	// no other owner may use it afterwards.
	Transport transport.Transport

	// Builder is the installed wire format. Defaults to frame.SimpleBuilder{}.
	Builder frame.Builder

	// Nonblocking marks the transport as non-blocking: reads with no data
	// available count as success with zero progress, and Send makes a
	// single write attempt instead of retrying short writes.
	Nonblocking bool

	// ReadChunk is the size of each transport read. Defaults to 4096.
	ReadChunk int

	// MaxBuffered caps receive-buffer growth. Zero derives the cap from the
	// builder's maximum wire length when the builder exposes one; negative
	// disables the cap.
	MaxBuffered int
}

// Stream orchestrates one transport, one receive buffer, one frame builder
// and the queue of completed inbound frames. It holds exclusive mutable
// state with no internal locking: concurrent Recv/Send calls require
// external synchronization.
type Stream struct {
	t           transport.Transport
	builder     frame.Builder
	rx          ReceiveBuffer
	queue       []frame.Frame
	chunk       []byte
	maxBuffered int
	nonblocking bool
}

// New wraps a live transport. The zero values of everything but Transport
// are usable defaults.
func New(opts Options) (*Stream, error) {
	if opts.Transport == nil {
		return nil, errors.New("stream: transport required")
	}
	builder := opts.Builder
	if builder == nil {
		builder = frame.SimpleBuilder{}
	}
	chunk := opts.ReadChunk
	if chunk <= 0 {
		chunk = defaultReadChunk
	}
	maxBuffered := opts.MaxBuffered
	if maxBuffered == 0 {
		if wl, ok := builder.(frame.WireLimiter); ok {
			// Room for one maximum frame plus the start of the next.
			maxBuffered = wl.MaxWireLen() + chunk
		}
	}
	return &Stream{
		t:           opts.Transport,
		builder:     builder,
		chunk:       make([]byte, chunk),
		maxBuffered: maxBuffered,
		nonblocking: opts.Nonblocking,
	}, nil
}

// Recv performs exactly one transport read, appends whatever arrived to the
// receive buffer and moves every complete frame into the rx queue in wire
// order.
//
// In non-blocking mode a read that would block is success with zero
// progress; the caller retries after the next readiness event. An orderly
// peer close returns ErrPeerClosed once any bytes read alongside it have
// been parsed. All other errors are transport failures.
func (s *Stream) Recv() error {
	n, err := s.t.Read(s.chunk)
	if n > 0 {
		if s.maxBuffered > 0 && s.rx.Len()+n > s.maxBuffered {
			return frame.ErrTooLarge
		}
		s.rx.Append(s.chunk[:n])
		if perr := s.consume(); perr != nil {
			return perr
		}
	}
	switch {
	case err == nil:
		return nil
	case s.nonblocking && errors.Is(err, transport.ErrWouldBlock):
		return nil
	case errors.Is(err, io.EOF):
		return ErrPeerClosed
	}
	return err
}

// consume runs the builder over the buffered bytes, draining as many
// complete frames as they hold, then compacts the buffer.
func (s *Stream) consume() error {
	for {
		f, n, err := s.builder.FromBytes(s.rx.Bytes())
		if err != nil {
			return err
		}
		if f == nil {
			break
		}
		s.rx.Advance(n)
		s.queue = append(s.queue, f)
	}
	s.rx.Compact()
	return nil
}

// DrainRxQueue removes and returns all completed frames in arrival order,
// leaving the queue empty. It never blocks.
func (s *Stream) DrainRxQueue() []frame.Frame {
	q := s.queue
	s.queue = nil
	return q
}

// Pending reports how many completed frames await DrainRxQueue.
func (s *Stream) Pending() int {
	return len(s.queue)
}

// Buffered reports how many raw bytes sit in the receive buffer awaiting
// the rest of an incomplete frame.
func (s *Stream) Buffered() int {
	return s.rx.Len()
}

// Send frames payload with the installed builder and writes it to the
// transport, returning the number of wire bytes written.
func (s *Stream) Send(payload []byte) (int, error) {
	f, err := s.builder.New(payload)
	if err != nil {
		return 0, err
	}
	return s.SendFrame(f)
}

// SendFrame writes a pre-built frame.
//
// Blocking mode flushes the whole encoding, retrying short writes
// internally. Non-blocking mode makes a single write attempt: a count short
// of f.Len() or transport.ErrWouldBlock tells the caller to retry with the
// remaining bytes. Nothing is buffered internally, so backpressure stays
// visible to the caller.
func (s *Stream) SendFrame(f frame.Frame) (int, error) {
	out := f.Bytes()
	if s.nonblocking {
		return s.t.Write(out)
	}
	return s.writeFull(out)
}

// writeFull is the blocking-mode retry loop over the single-attempt write.
func (s *Stream) writeFull(out []byte) (int, error) {
	var total int
	for total < len(out) {
		n, err := s.t.Write(out[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Shutdown passes through to the transport. The stream must not be used
// afterwards; buffered frames already in the rx queue remain drainable.
func (s *Stream) Shutdown() error {
	return s.t.Shutdown()
}
