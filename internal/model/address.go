package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
)

// AddressLength is the size of an account address and of an object id.
const AddressLength = 32

// DigestLength is the size of a transaction, object or package digest.
const DigestLength = 32

// Address identifies an account, a package or an object on chain.
type Address [AddressLength]byte

// ObjectID identifies an object. Object ids and addresses share one namespace.
type ObjectID = Address

// Well-known addresses.
var (
	ZeroAddress = Address{}
	// FrameworkAddress hosts the coin framework (0x2).
	FrameworkAddress = MustAddressFromHex("0x2")
	// SystemPackageAddress hosts the system package (0x3).
	SystemPackageAddress = MustAddressFromHex("0x3")
	// SystemStateObjectID is the shared system state object (0x5).
	SystemStateObjectID = MustAddressFromHex("0x5")
)

// AddressFromHex parses a 0x-prefixed hex address. Short forms such as "0x5" are left-padded.
func AddressFromHex(s string) (Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) == 0 || len(trimmed) > 2*AddressLength {
		return Address{}, fmt.Errorf("invalid address length: %q", s)
	}
	padded := strings.Repeat("0", 2*AddressLength-len(trimmed)) + trimmed
	raw, err := hexutil.Decode("0x" + padded)
	if err != nil {
		return Address{}, fmt.Errorf("decode address %q: %w", s, err)
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustAddressFromHex is AddressFromHex for constants; it panics on malformed input.
func MustAddressFromHex(s string) Address {
	a, err := AddressFromHex(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the full 0x-prefixed hex form.
func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// MarshalJSON encodes the address as a hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a hex string address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := AddressFromHex(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Digest is a 32-byte content digest rendered in base58.
type Digest [DigestLength]byte

// DigestFromBytes converts the canonical binary form of a digest.
func DigestFromBytes(b []byte) (Digest, error) {
	if len(b) != DigestLength {
		return Digest{}, fmt.Errorf("invalid digest length %d, expected %d", len(b), DigestLength)
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

// DigestFromBase58 parses the text form of a digest.
func DigestFromBase58(s string) (Digest, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("decode digest %q: %w", s, err)
	}
	return DigestFromBytes(raw)
}

// String returns the base58 form.
func (d Digest) String() string {
	return base58.Encode(d[:])
}

// MarshalJSON encodes the digest in base58.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a base58 digest.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := DigestFromBase58(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ObjectRef pins an object at a version.
type ObjectRef struct {
	ObjectID ObjectID
	Version  uint64
	Digest   Digest
}
