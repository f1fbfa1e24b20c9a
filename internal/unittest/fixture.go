package unittest

import (
	"crypto/rand"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// RandomAddress generates a random address for testing.
//
// The function will fail the test if random byte generation fails.
func RandomAddress(t *testing.T) model.Address {
	t.Helper()

	var a model.Address
	_, err := rand.Read(a[:])
	require.NoError(t, err, "failed to generate random bytes for address")

	return a
}

// RandomAddresses generates n random addresses for testing.
func RandomAddresses(t *testing.T, n int) []model.Address {
	t.Helper()

	addrs := make([]model.Address, n)
	for i := 0; i < n; i++ {
		addrs[i] = RandomAddress(t)
	}
	return addrs
}

// RandomDigest generates a random digest for testing.
func RandomDigest(t *testing.T) model.Digest {
	t.Helper()

	var d model.Digest
	_, err := rand.Read(d[:])
	require.NoError(t, err, "failed to generate random bytes for digest")

	return d
}

// ObjectRefFixture returns a reference to a random object at the given version.
func ObjectRefFixture(t *testing.T, version uint64) model.ObjectRef {
	t.Helper()
	return model.ObjectRef{
		ObjectID: RandomAddress(t),
		Version:  version,
		Digest:   RandomDigest(t),
	}
}

// PrivateKeyFixture generates a new random Ed25519 key for use in tests.
// It fails the test immediately if key generation does not succeed.
func PrivateKeyFixture(t *testing.T) keys.PrivateKey {
	t.Helper()
	k, err := keys.Generate()
	require.NoError(t, err, "failed to generate private key")
	return k
}

// PrivateKeyFixtures generates n random Ed25519 keys.
func PrivateKeyFixtures(t *testing.T, n int) []keys.PrivateKey {
	t.Helper()
	out := make([]keys.PrivateKey, n)
	for i := range out {
		out[i] = PrivateKeyFixture(t)
	}
	return out
}

// NetworkConfigFixture renders a network.yaml in the layout genesis writes, holding the
// given validator account keys and pre-funded user keys.
func NetworkConfigFixture(validators, users []keys.PrivateKey) string {
	var b strings.Builder
	b.WriteString("validator_configs:\n")
	for i, v := range validators {
		fmt.Fprintf(&b, "  - name: validator-%d\n", i)
		b.WriteString("    account-key-pair:\n")
		fmt.Fprintf(&b, "      value: %s\n", v.EncodeSchemeTagged())
		b.WriteString("    protocol-key-pair:\n")
		b.WriteString("      value: aWdub3JlZA==\n")
	}
	b.WriteString("account_keys:\n")
	for _, u := range users {
		fmt.Fprintf(&b, "  - %s\n", u.EncodeRaw())
	}
	b.WriteString("genesis:\n  genesis: {}\n")
	return b.String()
}
