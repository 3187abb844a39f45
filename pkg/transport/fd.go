//go:build unix

package transport

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// FD is a raw file-descriptor transport for use with an external readiness
// layer (epoll and friends). Constructing one takes exclusive ownership of
// the descriptor away from whatever held it before.
type FD struct {
	fd int
}

// NewFD wraps fd. With nonblocking set the descriptor is switched to
// O_NONBLOCK, and reads and writes report ErrWouldBlock instead of
// blocking.
func NewFD(fd int, nonblocking bool) (*FD, error) {
	if nonblocking {
		if err := unix.SetNonblock(fd, true); err != nil {
			return nil, os.NewSyscallError("setnonblock", err)
		}
	}
	return &FD{fd: fd}, nil
}

// Fd returns the underlying descriptor for registration with a readiness
// layer.
func (t *FD) Fd() int { return t.fd }

func (t *FD) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(t.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, os.NewSyscallError("read", err)
		}
		if n == 0 && len(p) > 0 {
			// Zero-byte read on a non-empty buffer: orderly peer shutdown.
			return 0, io.EOF
		}
		return n, nil
	}
}

func (t *FD) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(t.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, os.NewSyscallError("write", err)
		}
		return n, nil
	}
}

// Shutdown closes both directions. ENOTCONN from a repeated shutdown or a
// peer reset is not an error.
func (t *FD) Shutdown() error {
	err := unix.Shutdown(t.fd, unix.SHUT_RDWR)
	if err == unix.ENOTCONN {
		return nil
	}
	if err != nil {
		return os.NewSyscallError("shutdown", err)
	}
	return nil
}

// Close releases the descriptor. Separate from Shutdown so callers can
// half-close first and reap the descriptor later.
func (t *FD) Close() error {
	if err := unix.Close(t.fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
