package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tapevm/pkg/domain"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

// SealConfig holds the keys for sealing and opening tokens.
type SealConfig struct {
	// ActiveKey seals new tokens. Must be KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a token.
	FallbackKeys [][]byte
}

// SealedCodec wraps another codec and seals its output with AES-GCM.
type SealedCodec struct {
	inner  Codec
	config SealConfig
}

// NewSealedCodec validates the keys and wraps inner.
func NewSealedCodec(inner Codec, config SealConfig) (*SealedCodec, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes, got %d", KeySize, len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k))
		}
	}
	return &SealedCodec{inner: inner, config: config}, nil
}

func (c *SealedCodec) Encode(state *domain.State) (string, error) {
	plain, err := c.inner.Encode(state)
	if err != nil {
		return "", err
	}

	ciphertext, err := seal([]byte(plain), c.config.ActiveKey)
	if err != nil {
		return "", fmt.Errorf("failed to seal token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func (c *SealedCodec) Decode(token string) (*domain.State, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrInvalidToken, err)
	}

	plain, err := openWithRotation(ciphertext, c.config.ActiveKey, c.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return c.inner.Decode(string(plain))
}

func seal(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func openWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := open(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := open(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("token could not be opened with any available key")
}

func open(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ParseKey accepts a key as standard base64 or as a raw KeySize-byte string.
func ParseKey(s string) ([]byte, error) {
	if len(s) == KeySize {
		return []byte(s), nil
	}
	k, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key is neither %d raw bytes nor base64: %w", KeySize, err)
	}
	if len(k) != KeySize {
		return nil, fmt.Errorf("decoded key is %d bytes, want %d", len(k), KeySize)
	}
	return k, nil
}
