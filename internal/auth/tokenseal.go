package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sb1:"

// TokenSealer encrypts OAuth tokens before they are written to the users
// table. A zero TokenSealer stores tokens in the clear.
type TokenSealer struct {
	key    *[32]byte
	random io.Reader
}

// ParseTokenKey accepts a 32-byte key as hex or unpadded/padded base64.
func ParseTokenKey(raw string) ([32]byte, error) {
	var key [32]byte
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return key, errors.New("empty token key")
	}

	var decoded []byte
	if b, err := hex.DecodeString(raw); err == nil {
		decoded = b
	} else if b, err := base64.StdEncoding.DecodeString(raw); err == nil {
		decoded = b
	} else if b, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		decoded = b
	} else {
		return key, errors.New("token key must be hex or base64")
	}
	if len(decoded) != len(key) {
		return key, fmt.Errorf("token key must be %d bytes, got %d", len(key), len(decoded))
	}
	copy(key[:], decoded)
	return key, nil
}

func NewTokenSealer(key [32]byte) TokenSealer {
	k := key
	return TokenSealer{key: &k, random: rand.Reader}
}

func (s TokenSealer) Enabled() bool { return s.key != nil }

func (s TokenSealer) Seal(plaintext string) (string, error) {
	if s.key == nil || plaintext == "" {
		return plaintext, nil
	}

	random := s.random
	if random == nil {
		random = rand.Reader
	}
	var nonce [24]byte
	if _, err := io.ReadFull(random, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, s.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as-is so
// rows written before a key was configured stay readable.
func (s TokenSealer) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if s.key == nil {
		return "", errors.New("sealed token but no token key configured")
	}

	box, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed token: %w", err)
	}
	if len(box) < 24+secretbox.Overhead {
		return "", errors.New("sealed token too short")
	}

	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, s.key)
	if !ok {
		return "", errors.New("sealed token failed authentication")
	}
	return string(plain), nil
}
