//go:build unix

package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fds[0], fds[1]
}

func TestFDRoundTrip(t *testing.T) {
	a, b := socketPair(t)
	left, err := NewFD(a, false)
	if err != nil {
		t.Fatalf("new fd: %v", err)
	}
	right, err := NewFD(b, false)
	if err != nil {
		t.Fatalf("new fd: %v", err)
	}
	defer left.Close()
	defer right.Close()

	msg := []byte("over the wire")
	if _, err := left.Write(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, 64)
	n, err := right.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], msg) {
		t.Fatalf("read %q, want %q", buf[:n], msg)
	}
}

func TestFDNonblockingRead(t *testing.T) {
	a, b := socketPair(t)
	fd, err := NewFD(a, true)
	if err != nil {
		t.Fatalf("new fd: %v", err)
	}
	defer fd.Close()
	defer unix.Close(b)

	buf := make([]byte, 16)
	n, err := fd.Read(buf)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock on empty socket, got n=%d err=%v", n, err)
	}

	if _, err := unix.Write(b, []byte("late")); err != nil {
		t.Fatalf("peer write: %v", err)
	}
	n, err = fd.Read(buf)
	if err != nil {
		t.Fatalf("read after data arrived: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte("late")) {
		t.Fatalf("read %q", buf[:n])
	}
}

func TestFDPeerCloseIsEOF(t *testing.T) {
	a, b := socketPair(t)
	fd, err := NewFD(a, false)
	if err != nil {
		t.Fatalf("new fd: %v", err)
	}
	defer fd.Close()

	if err := unix.Close(b); err != nil {
		t.Fatalf("close peer: %v", err)
	}
	buf := make([]byte, 8)
	if _, err := fd.Read(buf); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on orderly close, got %v", err)
	}
}

func TestFDShutdownIdempotent(t *testing.T) {
	a, b := socketPair(t)
	fd, err := NewFD(a, false)
	if err != nil {
		t.Fatalf("new fd: %v", err)
	}
	defer fd.Close()
	defer unix.Close(b)

	if err := fd.Shutdown(); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := fd.Shutdown(); err != nil {
		t.Fatalf("repeat shutdown should be safe: %v", err)
	}
}
