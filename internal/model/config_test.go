package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
)

// TestDefaultConfig verifies the defaults of a build request.
func TestDefaultConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	require.Equal(t, 1, cfg.ValidatorCount)
	require.Equal(t, uint64(60000), cfg.EpochDurationMs())
	require.True(t, cfg.FundValidators)
	require.Equal(t, 1_000_000*model.MistPerMyso, cfg.ValidatorFunding)
	require.NoError(t, cfg.Validate())
}

// TestConfigValidate covers rejected build requests.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{name: "zero validators", mutate: func(c *model.Config) { c.ValidatorCount = 0 }},
		{name: "sub-millisecond epoch", mutate: func(c *model.Config) { c.EpochDuration = time.Microsecond }},
		{name: "funding without amount", mutate: func(c *model.Config) { c.ValidatorFunding = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
