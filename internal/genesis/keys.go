package genesis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"gopkg.in/yaml.v3"
)

// networkConfig is the subset of network.yaml the harness reads.
type networkConfig struct {
	ValidatorConfigs []validatorConfig `yaml:"validator_configs"`
	AccountKeys      []string          `yaml:"account_keys"`
}

type validatorConfig struct {
	AccountKeyPair struct {
		Value string `yaml:"value"`
	} `yaml:"account-key-pair"`
}

// Keys is the key material recovered from a genesis working directory.
type Keys struct {
	// Validators maps each validator address to its account key.
	Validators map[model.Address]keys.PrivateKey
	// Users are the pre-funded account keys in file order. The first one funds the network.
	Users []keys.PrivateKey
}

// LoadKeys reads network.yaml from dir. Validator keys must be scheme-tagged Ed25519 keys;
// anything else fails with keys.ErrInvalidKey.
func LoadKeys(dir string) (*Keys, error) {
	raw, err := os.ReadFile(filepath.Join(dir, model.NetworkConfigFile))
	if err != nil {
		return nil, fmt.Errorf("read network config: %w", err)
	}

	var cfg networkConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse network config: %w", err)
	}

	out := &Keys{
		Validators: make(map[model.Address]keys.PrivateKey, len(cfg.ValidatorConfigs)),
		Users:      make([]keys.PrivateKey, 0, len(cfg.AccountKeys)),
	}

	for i, v := range cfg.ValidatorConfigs {
		k, err := keys.FromSchemeTaggedBase64(v.AccountKeyPair.Value)
		if err != nil {
			return nil, fmt.Errorf("validator %d account key: %w", i, err)
		}
		out.Validators[k.Address()] = k
	}

	for i, b64 := range cfg.AccountKeys {
		k, err := keys.FromRawBase64(b64)
		if err != nil {
			return nil, fmt.Errorf("account key %d: %w", i, err)
		}
		out.Users = append(out.Users, k)
	}

	return out, nil
}

// FundingKey returns the canonical funding sender, the first user key.
func (k *Keys) FundingKey() (keys.PrivateKey, error) {
	if len(k.Users) == 0 {
		return keys.PrivateKey{}, fmt.Errorf("network config has no account keys")
	}
	return k.Users[0], nil
}
