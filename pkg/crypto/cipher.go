// Package crypto derives record keys for pre-shared-key sessions and wraps
// the AEAD state used by the secure transport.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the ChaCha20-Poly1305 key length.
	KeySize = chacha20poly1305.KeySize
	// Overhead is the per-record authentication tag length.
	Overhead = 16
	// NonceSize is the AEAD nonce length.
	NonceSize = chacha20poly1305.NonceSize
)

// DeriveSessionKeys derives direction-separated record keys with
// HKDF-SHA256 over the pre-shared key and both session nonces. The client
// asks with isServer=false and its txKey equals the server's rxKey.
func DeriveSessionKeys(master, clientNonce, serverNonce []byte, isServer bool) (txKey, rxKey []byte, err error) {
	if len(master) != KeySize {
		return nil, nil, errors.New("crypto: master key must be 32 bytes")
	}
	salt := make([]byte, 0, len(clientNonce)+len(serverNonce))
	salt = append(salt, clientNonce...)
	salt = append(salt, serverNonce...)

	infoTx := []byte("framecore-c2s")
	infoRx := []byte("framecore-s2c")
	if isServer {
		infoTx, infoRx = infoRx, infoTx
	}

	txKey = make([]byte, KeySize)
	rxKey = make([]byte, KeySize)
	if _, err = io.ReadFull(hkdf.New(sha256.New, master, salt, infoTx), txKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(hkdf.New(sha256.New, master, salt, infoRx), rxKey); err != nil {
		return nil, nil, err
	}
	return txKey, rxKey, nil
}

// CipherState seals or opens a strictly ordered sequence of records in one
// direction. The nonce is epoch|seq; seq advances by one per record, so both
// ends stay in step as long as no record is lost, which the underlying
// reliable byte stream guarantees.
type CipherState struct {
	aead  cipher.AEAD
	seq   uint64
	epoch uint32
}

// NewCipherState constructs a CipherState from a derived key.
func NewCipherState(key []byte, epoch uint32) (*CipherState, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &CipherState{aead: aead, epoch: epoch}, nil
}

// Seq returns the sequence value the next record will use.
func (c *CipherState) Seq() uint64 { return c.seq }

func (c *CipherState) nonce() []byte {
	nonce := make([]byte, NonceSize)
	binary.BigEndian.PutUint32(nonce[0:4], c.epoch)
	binary.BigEndian.PutUint64(nonce[4:12], c.seq)
	return nonce
}

// Seal encrypts plaintext as the next record and advances the sequence.
func (c *CipherState) Seal(ad, plaintext []byte) []byte {
	ct := c.aead.Seal(nil, c.nonce(), plaintext, ad)
	c.seq++
	return ct
}

// Open decrypts the next record. The sequence advances only on success, so
// a corrupted record fails every retry instead of silently desynchronizing.
func (c *CipherState) Open(ad, ciphertext []byte) ([]byte, error) {
	pt, err := c.aead.Open(nil, c.nonce(), ciphertext, ad)
	if err != nil {
		return nil, err
	}
	c.seq++
	return pt, nil
}

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}
