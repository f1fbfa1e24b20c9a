package node

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/thep2p/go-myso-localnet/internal/utils"
)

// Config defines how a node process is started.
type Config struct {
	// Binary is the node executable.
	Binary string `validate:"required"`
	// WorkingDir holds the genesis output and receives the process logs.
	WorkingDir string `validate:"required,dir"`
	// RPCPort is the loopback port of the fullnode JSON-RPC endpoint.
	RPCPort int `validate:"required,gt=0,lte=65535"`
}

// Validate checks the configuration against its validation tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid node config: %w", err)
	}
	return nil
}

// RPCURL returns the JSON-RPC endpoint the process serves.
func (c Config) RPCURL() string {
	return utils.LocalAddress(c.RPCPort)
}
