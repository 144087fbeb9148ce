package tokenstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the AEAD used to seal session files.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the length of the session sealing key.
const KeySize = 32

var errCiphertextShort = errors.New("ciphertext too short")

// sealer provides authenticated encryption with a random nonce prepended
// to each ciphertext.
type sealer struct {
	kind CipherType
	aead cipher.AEAD
}

// newSealer picks AES-GCM where the CPU accelerates it and
// ChaCha20-Poly1305 everywhere else.
func newSealer(key []byte) (*sealer, error) {
	if hasAESAcceleration() {
		return newSealerWithType(key, CipherAESGCM)
	}
	return newSealerWithType(key, CipherChaCha20)
}

func newSealerWithType(key []byte, kind CipherType) (*sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d: must be %d bytes", len(key), KeySize)
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch kind {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, errors.New("unknown cipher type: " + string(kind))
	}
	if err != nil {
		return nil, err
	}
	return &sealer{kind: kind, aead: aead}, nil
}

func (s *sealer) seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (s *sealer) open(ciphertext, additionalData []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(ciphertext) < n+s.aead.Overhead() {
		return nil, errCiphertextShort
	}
	return s.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}

// hasAESAcceleration reports whether crypto/aes runs on hardware
// instructions on this architecture.
func hasAESAcceleration() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x", "ppc64le":
		return true
	default:
		return false
	}
}
