package txbuilder

import "errors"

var (
	// ErrInput reports an argument that cannot be converted into transaction input.
	ErrInput = errors.New("invalid transaction input")
	// ErrWrongGasObject reports a gas object that is neither owned nor immutable.
	ErrWrongGasObject = errors.New("gas object should be an immutable or owned object")
	// ErrMissingObjectID reports an object input without an id.
	ErrMissingObjectID = errors.New("missing object id")
	// ErrMissingVersion reports an object whose version is neither given nor resolvable.
	ErrMissingVersion = errors.New("missing object version")
	// ErrMissingDigest reports an object whose digest is neither given nor resolvable.
	ErrMissingDigest = errors.New("missing object digest")
	// ErrMissingSender reports a transaction without a sender.
	ErrMissingSender = errors.New("missing sender")
	// ErrMissingGasObjects reports a transaction without gas payment.
	ErrMissingGasObjects = errors.New("missing gas objects")
	// ErrMissingGasBudget reports a transaction whose budget is neither given nor estimable.
	ErrMissingGasBudget = errors.New("missing gas budget")
	// ErrMissingGasPrice reports a transaction whose price is neither given nor resolvable.
	ErrMissingGasPrice = errors.New("missing gas price")
	// ErrMissingObjectKind reports an object whose ownership is neither given nor resolvable.
	ErrMissingObjectKind = errors.New("missing object kind")
	// ErrSharedObjectMutability reports a shared object with unknown mutability.
	ErrSharedObjectMutability = errors.New("unknown shared object mutability")
	// ErrSimulation reports a dry run that did not succeed.
	ErrSimulation = errors.New("transaction simulation failed")
)
