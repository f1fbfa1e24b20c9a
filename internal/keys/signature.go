package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// transactionIntent prefixes transaction bytes before hashing: scope TransactionData,
// version V0, application id 0.
var transactionIntent = [3]byte{0, 0, 0}

// SignatureLength is the serialized size of an Ed25519 user signature.
const SignatureLength = 1 + ed25519.SignatureSize + ed25519.PublicKeySize

// Signature is a serialized user signature: flag || signature || public key.
type Signature []byte

// Base64 returns the form the RPC expects.
func (s Signature) Base64() string {
	return base64.StdEncoding.EncodeToString(s)
}

// TransactionSigningDigest is the message signed for a transaction: blake2b-256 over the
// intent prefix followed by the BCS transaction bytes.
func TransactionSigningDigest(txBytes []byte) [blake2b.Size256]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent[:]...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

// SignTransaction signs BCS-encoded transaction data.
func (k PrivateKey) SignTransaction(txBytes []byte) (Signature, error) {
	if len(k.key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: uninitialized key", ErrInvalidKey)
	}
	digest := TransactionSigningDigest(txBytes)
	sig := ed25519.Sign(k.key, digest[:])

	pub := k.PublicKey()
	out := make(Signature, 0, SignatureLength)
	out = append(out, byte(Ed25519))
	out = append(out, sig...)
	out = append(out, pub[:]...)
	return out, nil
}

// Verify checks a serialized signature over transaction bytes and returns the signer's public key.
func Verify(sig Signature, txBytes []byte) (PublicKey, error) {
	if len(sig) != SignatureLength || SignatureScheme(sig[0]) != Ed25519 {
		return PublicKey{}, fmt.Errorf("malformed ed25519 signature of %d bytes", len(sig))
	}
	var pub PublicKey
	copy(pub[:], sig[1+ed25519.SignatureSize:])

	digest := TransactionSigningDigest(txBytes)
	if !ed25519.Verify(pub[:], digest[:], sig[1:1+ed25519.SignatureSize]) {
		return PublicKey{}, fmt.Errorf("signature verification failed")
	}
	return pub, nil
}
