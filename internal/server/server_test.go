package server

import (
	"bytes"
	"net"
	"testing"

	"github.com/rs/zerolog"

	"framecore/pkg/crypto"
	"framecore/pkg/frame"
	"framecore/pkg/stream"
	"framecore/pkg/transport"
)

func startEcho(t *testing.T, opts Options) net.Addr {
	t.Helper()
	opts.Log = zerolog.Nop()
	srv, err := New(opts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go srv.Serve(ln)
	return ln.Addr()
}

func TestEchoFrames(t *testing.T) {
	addr := startEcho(t, Options{})

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	st, err := stream.New(stream.Options{Transport: transport.NewConn(conn)})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer st.Shutdown()

	payloads := [][]byte{[]byte("alpha"), []byte("beta"), {}}
	for _, p := range payloads {
		if _, err := st.Send(p); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var got [][]byte
	for len(got) < len(payloads) {
		if err := st.Recv(); err != nil {
			t.Fatalf("recv: %v", err)
		}
		for _, f := range st.DrainRxQueue() {
			got = append(got, f.Payload())
		}
	}
	for i, p := range payloads {
		if !bytes.Equal(got[i], p) {
			t.Fatalf("echo %d: got %q want %q", i, got[i], p)
		}
	}
}

func TestEchoWebSocketFormat(t *testing.T) {
	addr := startEcho(t, Options{Builder: frame.WebSocketBuilder{}})

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	st, err := stream.New(stream.Options{
		Transport: transport.NewConn(conn),
		Builder:   frame.WebSocketBuilder{},
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer st.Shutdown()

	if _, err := st.Send([]byte("ws payload")); err != nil {
		t.Fatalf("send: %v", err)
	}
	for st.Pending() == 0 {
		if err := st.Recv(); err != nil {
			t.Fatalf("recv: %v", err)
		}
	}
	f := st.DrainRxQueue()[0]
	if !bytes.Equal(f.Payload(), []byte("ws payload")) {
		t.Fatalf("echo mismatch: %q", f.Payload())
	}
}

func TestEchoSecureSession(t *testing.T) {
	key := make([]byte, crypto.KeySize)
	for i := range key {
		key[i] = byte(i * 3)
	}
	addr := startEcho(t, Options{Key: key})

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	sec, err := transport.EstablishSecure(transport.NewConn(conn), key, false)
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	st, err := stream.New(stream.Options{Transport: sec})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer st.Shutdown()

	if _, err := st.Send([]byte("secret ping")); err != nil {
		t.Fatalf("send: %v", err)
	}
	for st.Pending() == 0 {
		if err := st.Recv(); err != nil {
			t.Fatalf("recv: %v", err)
		}
	}
	f := st.DrainRxQueue()[0]
	if !bytes.Equal(f.Payload(), []byte("secret ping")) {
		t.Fatalf("echo mismatch: %q", f.Payload())
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New(Options{Key: []byte("short")}); err == nil {
		t.Fatalf("expected error for short key")
	}
}
