package network

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/thep2p/go-myso-localnet/internal/contracts"
	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder"
)

// ClientConfig returns the path of the client configuration genesis wrote for the network.
func (h *Handle) ClientConfig() string {
	return filepath.Join(h.dir, model.ClientConfigFile)
}

// BuildPackage compiles the Move package in pkgDir against this network's client configuration.
// A failed compilation returns a *command.Error carrying both output streams.
func (h *Handle) BuildPackage(ctx context.Context, pkgDir string) (*contracts.BuiltPackage, error) {
	if err := h.checkOpen(); err != nil {
		return nil, err
	}
	return contracts.NewCompiler(h.logger, h.binary).Build(ctx, h.ClientConfig(), pkgDir)
}

// Publish publishes pkg signed by key and transfers the upgrade capability to key's address.
func (h *Handle) Publish(ctx context.Context, key keys.PrivateKey, pkg *contracts.BuiltPackage) (*mysorpc.TransactionResponse, error) {
	b := txbuilder.NewBuilder()
	upgradeCap := b.Publish(pkg.Modules, pkg.Dependencies)
	b.TransferObjects([]txbuilder.Argument{upgradeCap}, b.Pure(key.Address()))

	resp, err := h.Execute(ctx, key, b)
	if err != nil {
		return nil, fmt.Errorf("publish package %s: %w", pkg.Digest, err)
	}
	return resp, nil
}
