package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Stored values carry a one byte format marker so rows written before a key
// was configured stay readable afterwards.
const (
	formatPlain  byte = 0x00
	formatSealed byte = 0x01
)

var (
	ErrKeyRequired     = errors.New("encrypted value found but DATA_ENCRYPTION_KEY is not configured")
	ErrCiphertextShort = errors.New("ciphertext too short")
	ErrUnknownFormat   = errors.New("unknown stored value format")
)

type Service struct {
	key []byte
}

func New(key string) (*Service, error) {
	if key == "" {
		return &Service{key: nil}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	return &Service{key: decoded}, nil
}

func (s *Service) Configured() bool {
	return s != nil && len(s.key) == 32
}

// SealString returns nil for an empty value.
func (s *Service) SealString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if !s.Configured() {
		return append([]byte{formatPlain}, value...), nil
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(nonce)+len(value)+gcm.Overhead())
	out = append(out, formatSealed)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, []byte(value), nil), nil
}

func (s *Service) OpenString(stored []byte) (string, error) {
	if len(stored) == 0 {
		return "", nil
	}
	switch stored[0] {
	case formatPlain:
		return string(stored[1:]), nil
	case formatSealed:
		if !s.Configured() {
			return "", ErrKeyRequired
		}
		gcm, err := s.aead()
		if err != nil {
			return "", err
		}
		body := stored[1:]
		if len(body) < gcm.NonceSize() {
			return "", ErrCiphertextShort
		}
		plain, err := gcm.Open(nil, body[:gcm.NonceSize()], body[gcm.NonceSize():], nil)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	default:
		return "", ErrUnknownFormat
	}
}

func (s *Service) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		decoded, err := hex.DecodeString(raw)
		if err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
