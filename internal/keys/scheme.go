package keys

import "fmt"

// SignatureScheme is the one-byte discriminator that prefixes serialized keys, signatures
// and address preimages.
type SignatureScheme byte

const (
	Ed25519   SignatureScheme = 0x00
	Secp256k1 SignatureScheme = 0x01
	Secp256r1 SignatureScheme = 0x02
	MultiSig  SignatureScheme = 0x03
	BLS12381  SignatureScheme = 0x04
	ZkLogin   SignatureScheme = 0x05
	Passkey   SignatureScheme = 0x06
)

// SchemeFromByte maps a discriminator byte to a known scheme.
func SchemeFromByte(b byte) (SignatureScheme, error) {
	s := SignatureScheme(b)
	if s > Passkey {
		return 0, fmt.Errorf("unknown signature scheme flag 0x%02x", b)
	}
	return s, nil
}

func (s SignatureScheme) String() string {
	switch s {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	case Secp256r1:
		return "secp256r1"
	case MultiSig:
		return "multisig"
	case BLS12381:
		return "bls12381"
	case ZkLogin:
		return "zklogin"
	case Passkey:
		return "passkey"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(s))
	}
}
