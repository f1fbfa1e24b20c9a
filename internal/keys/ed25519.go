// Package keys holds the harness's signing primitive: Ed25519 keys, address derivation and
// transaction signatures.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/thep2p/go-myso-localnet/internal/model"
	"golang.org/x/crypto/blake2b"
)

// ErrInvalidKey is returned for malformed key material and for keys of any scheme other
// than Ed25519, which is the only scheme the harness signs with.
var ErrInvalidKey = errors.New("invalid key")

// PublicKey is a raw Ed25519 public key.
type PublicKey [ed25519.PublicKeySize]byte

// Address derives the account address: blake2b-256 over the scheme flag and the key.
func (p PublicKey) Address() model.Address {
	preimage := make([]byte, 0, 1+len(p))
	preimage = append(preimage, byte(Ed25519))
	preimage = append(preimage, p[:]...)
	return model.Address(blake2b.Sum256(preimage))
}

// PrivateKey is an Ed25519 signing key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// NewPrivateKey builds a key from its 32-byte seed.
func NewPrivateKey(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return PrivateKey{}, fmt.Errorf("%w: expected %d byte seed, got %d", ErrInvalidKey, ed25519.SeedSize, len(seed))
	}
	return PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Generate returns a fresh random key.
func Generate() (PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return PrivateKey{key: priv}, nil
}

// FromSchemeTaggedBase64 decodes a base64 blob whose first byte is the scheme flag.
// Only the Ed25519 flag followed by exactly one seed is accepted.
func FromSchemeTaggedBase64(b64 string) (PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: decode base64: %v", ErrInvalidKey, err)
	}
	if len(raw) == 0 {
		return PrivateKey{}, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	scheme, err := SchemeFromByte(raw[0])
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if scheme != Ed25519 {
		return PrivateKey{}, fmt.Errorf("%w: unsupported scheme %s", ErrInvalidKey, scheme)
	}
	return NewPrivateKey(raw[1:])
}

// FromRawBase64 decodes a base64 Ed25519 seed without a scheme flag.
func FromRawBase64(b64 string) (PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: decode base64: %v", ErrInvalidKey, err)
	}
	return NewPrivateKey(raw)
}

// Seed returns the 32-byte seed.
func (k PrivateKey) Seed() []byte {
	return k.key.Seed()
}

// PublicKey returns the matching public key.
func (k PrivateKey) PublicKey() PublicKey {
	var p PublicKey
	copy(p[:], k.key.Public().(ed25519.PublicKey))
	return p
}

// Address returns the account address controlled by the key.
func (k PrivateKey) Address() model.Address {
	return k.PublicKey().Address()
}

// EncodeSchemeTagged returns the flag-prefixed base64 form read by FromSchemeTaggedBase64.
func (k PrivateKey) EncodeSchemeTagged() string {
	return base64.StdEncoding.EncodeToString(append([]byte{byte(Ed25519)}, k.Seed()...))
}

// EncodeRaw returns the base64 seed read by FromRawBase64.
func (k PrivateKey) EncodeRaw() string {
	return base64.StdEncoding.EncodeToString(k.Seed())
}
