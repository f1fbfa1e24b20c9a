package network

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder"
)

// FundRequest asks for a new coin of Amount base units owned by Address.
type FundRequest struct {
	Address model.Address
	Amount  uint64
}

// Execute builds the transaction in b with key's address as sender, signs it with key and
// waits until it is checkpointed. A transaction that executes with a failure status is
// reported as ErrTransactionFailed.
func (h *Handle) Execute(ctx context.Context, key keys.PrivateKey, b *txbuilder.Builder) (*mysorpc.TransactionResponse, error) {
	if err := h.checkOpen(); err != nil {
		return nil, err
	}

	b.SetSender(key.Address())
	tx, err := b.Build(ctx, h.client)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	sig, err := key.SignTransaction(tx.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	lg := h.logger.With().Str("digest", tx.Digest().String()).Logger()
	lg.Debug().Str("sender", tx.Sender().String()).Msg("submitting transaction")

	resp, err := h.client.ExecuteTransactionAndWaitForCheckpoint(ctx, mysorpc.NewExecuteTransactionRequest(tx.Bytes(), sig), h.txTimeout)
	if err != nil {
		return nil, fmt.Errorf("execute transaction %s: %w", tx.Digest(), err)
	}
	if resp.Effects == nil {
		return nil, fmt.Errorf("%w: transaction %s returned no effects", ErrTransactionFailed, tx.Digest())
	}
	if !resp.Effects.Status.Success() {
		return nil, fmt.Errorf("%w: transaction %s: %s", ErrTransactionFailed, tx.Digest(), resp.Effects.Status.Error)
	}

	if resp.Checkpoint != nil {
		lg = lg.With().Uint64("checkpoint", uint64(*resp.Checkpoint)).Logger()
	}
	lg.Debug().Msg("transaction checkpointed")
	return resp, nil
}

// UpgradeSystemState touches the system state object so the node migrates it to its current
// version. It runs once per handle, before any funding.
func (h *Handle) UpgradeSystemState(ctx context.Context) error {
	if err := h.checkOpen(); err != nil {
		return err
	}
	if h.lifecycle.Is(StateUpgraded) {
		return ErrAlreadyUpgraded
	}
	if !h.lifecycle.Can(eventUpgrade) {
		return fmt.Errorf("upgrade system state: handle is %s", h.lifecycle.Current())
	}

	b := txbuilder.NewBuilder()
	systemState := b.Object(txbuilder.ObjectByID(model.SystemStateObjectID))
	b.MoveCall(txbuilder.Function{
		Package: model.SystemPackageAddress,
		Module:  model.SystemModule,
		Name:    model.ActiveValidatorAddressesFunction,
	}, systemState)

	if _, err := h.Execute(ctx, h.FundingKey(), b); err != nil {
		return fmt.Errorf("system-state upgrade failed: %w", err)
	}
	if err := h.lifecycle.Event(ctx, eventUpgrade); err != nil {
		return fmt.Errorf("mark upgraded: %w", err)
	}
	h.logger.Info().Msg("system state upgraded")
	return nil
}

// Fund creates one coin per request in a single transaction sent by the funding key. Every
// call creates new coins, so repeated calls add up.
func (h *Handle) Fund(ctx context.Context, requests []FundRequest) error {
	if err := h.checkOpen(); err != nil {
		return err
	}
	if !h.lifecycle.Is(StateUpgraded) {
		return fmt.Errorf("%w: handle is %s", ErrNotUpgraded, h.lifecycle.Current())
	}
	if len(requests) == 0 {
		return nil
	}

	b := txbuilder.NewBuilder()
	for _, r := range requests {
		recipient := b.Pure(r.Address)
		coin := b.Intent(txbuilder.Myso(r.Amount))
		b.TransferObjects([]txbuilder.Argument{coin}, recipient)
	}

	if _, err := h.Execute(ctx, h.FundingKey(), b); err != nil {
		return fmt.Errorf("fund failed: %w", err)
	}
	h.logger.Info().Int("requests", len(requests)).Msg("accounts funded")
	return nil
}

// validatorFunding returns one request of amount per validator, ordered by address.
func (h *Handle) validatorFunding(amount uint64) []FundRequest {
	addrs := slices.Collect(maps.Keys(h.validatorKeys))
	slices.SortFunc(addrs, func(a, b model.Address) int {
		return bytes.Compare(a[:], b[:])
	})

	requests := make([]FundRequest, len(addrs))
	for i, a := range addrs {
		requests[i] = FundRequest{Address: a, Amount: amount}
	}
	return requests
}
