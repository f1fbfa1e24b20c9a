package model

const (
	// BinaryName is the executable looked up on PATH when no override is given.
	BinaryName = "myso"

	// BinaryEnvVar overrides discovery of the node executable.
	BinaryEnvVar = "MYSO_BINARY"
)

// Subcommands of the node executable.
const (
	// SubcommandGenesis materializes a working directory with the network configuration.
	SubcommandGenesis = "genesis"

	// SubcommandStart runs the network described by a working directory.
	SubcommandStart = "start"

	// SubcommandMove compiles Move packages.
	SubcommandMove = "move"
)

// Files produced by genesis or the node process inside the working directory.
const (
	// NetworkConfigFile holds the validator configurations and the pre-funded account keys.
	NetworkConfigFile = "network.yaml"

	// ClientConfigFile is the client configuration used by the move subcommand.
	ClientConfigFile = "client.yaml"

	// StdoutFile receives the standard output of the node process.
	StdoutFile = "out.stdout"

	// StderrFile receives the standard error of the node process.
	StderrFile = "out.stderr"
)

// JSON-RPC methods of the node.
const (
	// MethodGetChainIdentifier returns the chain identifier.
	MethodGetChainIdentifier = "myso_getChainIdentifier"

	// MethodGetLatestCheckpointSequenceNumber returns the highest executed checkpoint.
	MethodGetLatestCheckpointSequenceNumber = "myso_getLatestCheckpointSequenceNumber"

	// MethodGetCheckpoint returns a checkpoint by sequence number.
	MethodGetCheckpoint = "myso_getCheckpoint"

	// MethodExecuteTransactionBlock submits a signed transaction.
	MethodExecuteTransactionBlock = "myso_executeTransactionBlock"

	// MethodGetTransactionBlock returns an executed transaction by digest.
	MethodGetTransactionBlock = "myso_getTransactionBlock"

	// MethodDryRunTransactionBlock simulates a transaction without committing it.
	MethodDryRunTransactionBlock = "myso_dryRunTransactionBlock"

	// MethodGetObject returns a single object.
	MethodGetObject = "myso_getObject"

	// MethodGetOwnedObjects lists objects owned by an address.
	MethodGetOwnedObjects = "mysox_getOwnedObjects"

	// MethodGetCoins lists coins of a type owned by an address.
	MethodGetCoins = "mysox_getCoins"

	// MethodGetReferenceGasPrice returns the reference gas price of the current epoch.
	MethodGetReferenceGasPrice = "mysox_getReferenceGasPrice"
)

// ExecuteRequestWaitForLocalExecution makes the node return only after it executed the transaction.
const ExecuteRequestWaitForLocalExecution = "WaitForLocalExecution"

// Well-known on-chain identifiers.
const (
	// MysoCoinType is the type of the native coin.
	MysoCoinType = "0x2::myso::MYSO"

	// CoinModule is the framework module that defines coins.
	CoinModule = "coin"

	// CoinZeroFunction creates a coin with zero balance.
	CoinZeroFunction = "zero"

	// SystemModule is the module of the system state object.
	SystemModule = "myso_system"

	// ActiveValidatorAddressesFunction reads the active set; loading the inner state upgrades it.
	ActiveValidatorAddressesFunction = "active_validator_addresses"
)
