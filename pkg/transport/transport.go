// Package transport provides byte-level read/write providers for streams:
// an adapter over net.Conn, a raw file-descriptor transport with optional
// non-blocking mode, and an AEAD record layer for pre-shared-key sessions.
package transport

import "errors"

// ErrWouldBlock reports that a non-blocking operation could make no
// immediate progress. It is never fatal; retry after the next readiness
// event.
var ErrWouldBlock = errors.New("transport: operation would block")

// Transport is anything exposing read/write over bytes: a plain socket, an
// encrypted session, or any descriptor-backed stream.
//
// Read returns io.EOF once the peer has performed an orderly shutdown.
// Non-blocking implementations return ErrWouldBlock when no data or buffer
// space is available. Shutdown must be safe to call repeatedly and after an
// error on either direction.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Shutdown() error
}
