package txbuilder

import (
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder/wire"
	"golang.org/x/crypto/blake2b"
)

// transactionDigestSalt domain-separates transaction digests from other hashed structures.
const transactionDigestSalt = "TransactionData::"

// Transaction is built, serialized transaction data ready to be signed.
type Transaction struct {
	data  wire.TransactionDataV1
	bytes []byte
}

// Bytes returns the BCS encoding that is signed and submitted.
func (t *Transaction) Bytes() []byte {
	return t.bytes
}

// Digest returns the transaction digest.
func (t *Transaction) Digest() model.Digest {
	return TransactionDigest(t.bytes)
}

// Sender returns the sender address.
func (t *Transaction) Sender() model.Address {
	return t.data.Sender
}

// GasData returns the gas payment, price and budget.
func (t *Transaction) GasData() wire.GasData {
	return t.data.GasData
}

// Inputs returns the resolved inputs.
func (t *Transaction) Inputs() []wire.CallArg {
	return t.data.Kind.ProgrammableTransaction.Inputs
}

// Commands returns the commands in execution order.
func (t *Transaction) Commands() []wire.Command {
	return t.data.Kind.ProgrammableTransaction.Commands
}

// TransactionDigest hashes BCS transaction data into its digest.
func TransactionDigest(txBytes []byte) model.Digest {
	preimage := make([]byte, 0, len(transactionDigestSalt)+len(txBytes))
	preimage = append(preimage, transactionDigestSalt...)
	preimage = append(preimage, txBytes...)
	return model.Digest(blake2b.Sum256(preimage))
}
