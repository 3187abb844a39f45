package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"framecore/pkg/crypto"
)

// Secure record layout, big-endian:
//
//	Offset  Field              Size
//	0       Ciphertext Length  16 bits, unsigned, bound as associated data
//	2       Ciphertext         ChaCha20-Poly1305, epoch|seq nonce
const (
	secureHeaderLen = 2
	secureMaxRecord = 65535

	// SecureMaxPlaintext is the largest plaintext one record can carry.
	SecureMaxPlaintext = secureMaxRecord - crypto.Overhead

	// nonce length exchanged during EstablishSecure
	sessionNonceLen = 16
)

// Secure is an AEAD record layer over a blocking inner transport. Writes
// seal records; reads unseal one record at a time and hand the plaintext out
// incrementally, so the layer behaves as a plain byte stream to whatever
// framing runs above it.
//
// A record must arrive in full before it can be opened, so Secure requires
// a blocking inner transport.
type Secure struct {
	inner Transport
	tx    *crypto.CipherState
	rx    *crypto.CipherState
	plain []byte // unread plaintext from the last opened record
}

// NewSecure wraps inner with an established pair of cipher states, taking
// ownership of inner.
func NewSecure(inner Transport, tx, rx *crypto.CipherState) *Secure {
	return &Secure{inner: inner, tx: tx, rx: rx}
}

// EstablishSecure runs the nonce exchange for a pre-shared-key session and
// wraps inner in a Secure transport. Both sides contribute 16 random bytes
// in the clear; record keys come from crypto.DeriveSessionKeys, so a wrong
// key on either side fails the first record rather than the exchange.
func EstablishSecure(inner Transport, psk []byte, isServer bool) (*Secure, error) {
	nonce, err := crypto.RandomBytes(sessionNonceLen)
	if err != nil {
		return nil, err
	}
	peer := make([]byte, sessionNonceLen)
	if isServer {
		if err := readFull(inner, peer); err != nil {
			return nil, fmt.Errorf("secure: read client nonce: %w", err)
		}
		if err := writeFull(inner, nonce); err != nil {
			return nil, fmt.Errorf("secure: write server nonce: %w", err)
		}
	} else {
		if err := writeFull(inner, nonce); err != nil {
			return nil, fmt.Errorf("secure: write client nonce: %w", err)
		}
		if err := readFull(inner, peer); err != nil {
			return nil, fmt.Errorf("secure: read server nonce: %w", err)
		}
	}

	clientNonce, serverNonce := nonce, peer
	if isServer {
		clientNonce, serverNonce = peer, nonce
	}
	txKey, rxKey, err := crypto.DeriveSessionKeys(psk, clientNonce, serverNonce, isServer)
	if err != nil {
		return nil, err
	}
	tx, err := crypto.NewCipherState(txKey, 0)
	if err != nil {
		return nil, err
	}
	rx, err := crypto.NewCipherState(rxKey, 0)
	if err != nil {
		return nil, err
	}
	return NewSecure(inner, tx, rx), nil
}

func (t *Secure) Read(p []byte) (int, error) {
	if len(t.plain) == 0 {
		if err := t.readRecord(); err != nil {
			return 0, err
		}
	}
	n := copy(p, t.plain)
	t.plain = t.plain[n:]
	return n, nil
}

func (t *Secure) readRecord() error {
	var hdr [secureHeaderLen]byte
	if err := readFull(t.inner, hdr[:]); err != nil {
		// EOF on a record boundary is an orderly close.
		return err
	}
	size := int(binary.BigEndian.Uint16(hdr[:]))
	if size <= crypto.Overhead {
		return fmt.Errorf("secure: record of %d bytes is shorter than the tag", size)
	}
	ct := make([]byte, size)
	if err := readFull(t.inner, ct); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	pt, err := t.rx.Open(hdr[:], ct)
	if err != nil {
		return fmt.Errorf("secure: open record: %w", err)
	}
	t.plain = pt
	return nil
}

// Write seals p into one or more records and flushes them, returning the
// plaintext count like an io.Writer.
func (t *Secure) Write(p []byte) (int, error) {
	var total int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > SecureMaxPlaintext {
			chunk = p[:SecureMaxPlaintext]
		}
		var hdr [secureHeaderLen]byte
		binary.BigEndian.PutUint16(hdr[:], uint16(len(chunk)+crypto.Overhead))
		ct := t.tx.Seal(hdr[:], chunk)
		rec := append(hdr[:], ct...)
		if err := writeFull(t.inner, rec); err != nil {
			return total, err
		}
		total += len(chunk)
		p = p[len(chunk):]
	}
	return total, nil
}

func (t *Secure) Shutdown() error {
	return t.inner.Shutdown()
}

func readFull(t Transport, p []byte) error {
	for off := 0; off < len(p); {
		n, err := t.Read(p[off:])
		off += n
		if err != nil {
			if errors.Is(err, io.EOF) && off > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

func writeFull(t Transport, p []byte) error {
	for off := 0; off < len(p); {
		n, err := t.Write(p[off:])
		off += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}
