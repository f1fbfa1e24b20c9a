package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/network"
)

func TestParseFundRequests(t *testing.T) {
	requests, err := parseFundRequests([]string{"0x5=10", "0x2=0"})
	require.NoError(t, err)
	require.Equal(t, []network.FundRequest{
		{Address: model.SystemStateObjectID, Amount: 10},
		{Address: model.FrameworkAddress, Amount: 0},
	}, requests)

	requests, err = parseFundRequests(nil)
	require.NoError(t, err)
	require.Empty(t, requests)
}

func TestParseFundRequests_Invalid(t *testing.T) {
	for _, s := range []string{"0x5", "0x5=", "nothex=1", "0x5=-1", "0x5=1.5"} {
		_, err := parseFundRequests([]string{s})
		require.Error(t, err, s)
	}
}
