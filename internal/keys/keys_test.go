package keys_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/keys"
)

// TestSchemeTaggedRoundTrip verifies that a flag-prefixed Ed25519 key decodes to the same key.
func TestSchemeTaggedRoundTrip(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	decoded, err := keys.FromSchemeTaggedBase64(k.EncodeSchemeTagged())
	require.NoError(t, err)
	require.Equal(t, k.Seed(), decoded.Seed())
	require.Equal(t, k.Address(), decoded.Address())
}

// TestFromSchemeTaggedBase64_RejectsOtherSchemes verifies that any discriminator other than
// Ed25519 is rejected instead of being reinterpreted.
func TestFromSchemeTaggedBase64_RejectsOtherSchemes(t *testing.T) {
	seed := bytes.Repeat([]byte{0x11}, 32)
	for _, flag := range []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xff} {
		blob := base64.StdEncoding.EncodeToString(append([]byte{flag}, seed...))
		_, err := keys.FromSchemeTaggedBase64(blob)
		require.ErrorIs(t, err, keys.ErrInvalidKey, "flag 0x%02x should be rejected", flag)
	}
}

// TestFromSchemeTaggedBase64_Malformed covers undecodable, empty and wrongly sized blobs.
func TestFromSchemeTaggedBase64_Malformed(t *testing.T) {
	tests := map[string]string{
		"not base64": "***",
		"empty":      "",
		"flag only":  base64.StdEncoding.EncodeToString([]byte{0x00}),
		"short seed": base64.StdEncoding.EncodeToString(append([]byte{0x00}, make([]byte, 31)...)),
		"long seed":  base64.StdEncoding.EncodeToString(append([]byte{0x00}, make([]byte, 64)...)),
	}
	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := keys.FromSchemeTaggedBase64(blob)
			require.ErrorIs(t, err, keys.ErrInvalidKey)
		})
	}
}

// TestFromRawBase64 verifies that raw seeds carry no discriminator and must be exactly 32 bytes.
func TestFromRawBase64(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)

	decoded, err := keys.FromRawBase64(k.EncodeRaw())
	require.NoError(t, err)
	require.Equal(t, k.Address(), decoded.Address())

	_, err = keys.FromRawBase64(k.EncodeSchemeTagged())
	require.ErrorIs(t, err, keys.ErrInvalidKey, "a 33-byte blob is not a raw seed")
}

// TestAddressDeterministic verifies that the address depends only on the public key.
func TestAddressDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, 32)
	a, err := keys.NewPrivateKey(seed)
	require.NoError(t, err)
	b, err := keys.NewPrivateKey(seed)
	require.NoError(t, err)
	require.Equal(t, a.Address(), b.Address())

	other, err := keys.NewPrivateKey(bytes.Repeat([]byte{0x02}, 32))
	require.NoError(t, err)
	require.NotEqual(t, a.Address(), other.Address())
}

// TestSignTransaction verifies the serialized signature layout and that it verifies
// against the signed bytes only.
func TestSignTransaction(t *testing.T) {
	k, err := keys.Generate()
	require.NoError(t, err)
	tx := []byte("transaction bytes")

	sig, err := k.SignTransaction(tx)
	require.NoError(t, err)
	require.Len(t, sig, keys.SignatureLength)
	require.Equal(t, byte(keys.Ed25519), sig[0])

	pub, err := keys.Verify(sig, tx)
	require.NoError(t, err)
	require.Equal(t, k.PublicKey(), pub)

	_, err = keys.Verify(sig, []byte("other bytes"))
	require.Error(t, err)
}

// TestSignTransaction_ZeroKey verifies that an uninitialized key refuses to sign.
func TestSignTransaction_ZeroKey(t *testing.T) {
	_, err := keys.PrivateKey{}.SignTransaction([]byte("tx"))
	require.ErrorIs(t, err, keys.ErrInvalidKey)
}

// TestSchemeFromByte verifies the known discriminators and rejection of unknown ones.
func TestSchemeFromByte(t *testing.T) {
	s, err := keys.SchemeFromByte(0x00)
	require.NoError(t, err)
	require.Equal(t, "ed25519", s.String())

	_, err = keys.SchemeFromByte(0x07)
	require.Error(t, err)
}
