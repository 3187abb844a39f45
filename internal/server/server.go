// Package server implements the framed echo server behind cmd/framed-server:
// every frame received on a connection is sent straight back in the same
// wire format.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"framecore/pkg/frame"
	"framecore/pkg/stream"
	"framecore/pkg/transport"
)

// Options configure the echo server.
type Options struct {
	// Builder is the wire format every connection speaks. Defaults to
	// frame.SimpleBuilder{}.
	Builder frame.Builder

	// Key enables the AEAD record layer when set; it must be 32 bytes.
	Key []byte

	// AcceptRate / AcceptBurst bound accepted connections per second.
	// Zero rate disables limiting.
	AcceptRate  int
	AcceptBurst int

	// HandshakeTimeout bounds the secure-session nonce exchange.
	HandshakeTimeout time.Duration

	Log zerolog.Logger
}

// Server accepts connections and echoes frames until the peer closes.
type Server struct {
	opts    Options
	limiter *TokenBucket
}

func New(opts Options) (*Server, error) {
	if opts.Key != nil && len(opts.Key) != 32 {
		return nil, fmt.Errorf("server: key must be 32 bytes, got %d", len(opts.Key))
	}
	if opts.Builder == nil {
		opts.Builder = frame.SimpleBuilder{}
	}
	if opts.HandshakeTimeout == 0 {
		opts.HandshakeTimeout = 5 * time.Second
	}
	s := &Server{opts: opts}
	if opts.AcceptRate > 0 {
		s.limiter = NewTokenBucket(opts.AcceptRate, opts.AcceptBurst)
	}
	return s, nil
}

// Serve accepts connections until the listener fails. Each connection runs
// on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.opts.Log.Warn().
				Str("remote", conn.RemoteAddr().String()).
				Msg("accept rate exceeded, dropping connection")
			conn.Close()
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	log := s.opts.Log.With().Str("remote", conn.RemoteAddr().String()).Logger()

	var t transport.Transport = transport.NewConn(conn)
	if s.opts.Key != nil {
		if err := conn.SetDeadline(time.Now().Add(s.opts.HandshakeTimeout)); err != nil {
			log.Warn().Err(err).Msg("set handshake deadline")
		}
		sec, err := transport.EstablishSecure(t, s.opts.Key, true)
		if err != nil {
			log.Warn().Err(err).Msg("secure session failed")
			conn.Close()
			return
		}
		if err := conn.SetDeadline(time.Time{}); err != nil {
			log.Warn().Err(err).Msg("clear handshake deadline")
		}
		t = sec
	}

	st, err := stream.New(stream.Options{Transport: t, Builder: s.opts.Builder})
	if err != nil {
		log.Error().Err(err).Msg("stream setup failed")
		conn.Close()
		return
	}
	defer st.Shutdown()

	for {
		if err := st.Recv(); err != nil {
			if errors.Is(err, stream.ErrPeerClosed) {
				log.Debug().Msg("peer closed")
			} else {
				log.Warn().Err(err).Msg("recv failed")
			}
			return
		}
		for _, f := range st.DrainRxQueue() {
			if _, err := st.SendFrame(f); err != nil {
				log.Warn().Err(err).Int("payload_len", len(f.Payload())).Msg("echo failed")
				return
			}
		}
	}
}
