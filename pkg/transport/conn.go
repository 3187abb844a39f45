package transport

import "net"

// Conn adapts a blocking net.Conn to the Transport interface, taking
// ownership of it.
type Conn struct {
	c    net.Conn
	done bool
}

// NewConn wraps c. The caller must not use c afterwards.
func NewConn(c net.Conn) *Conn {
	return &Conn{c: c}
}

func (t *Conn) Read(p []byte) (int, error)  { return t.c.Read(p) }
func (t *Conn) Write(p []byte) (int, error) { return t.c.Write(p) }

// Shutdown half-closes the write side when the connection supports it, then
// closes the descriptor. Repeat calls are no-ops.
func (t *Conn) Shutdown() error {
	if t.done {
		return nil
	}
	t.done = true
	if cw, ok := t.c.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	return t.c.Close()
}
