package unittest

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-myso-localnet/internal/keys"
	"github.com/thep2p/go-myso-localnet/internal/model"
	"github.com/thep2p/go-myso-localnet/internal/mysorpc"
	"github.com/thep2p/go-myso-localnet/internal/txbuilder"
)

// FakeChainID is the chain identifier reported by FakeNode.
const FakeChainID = "4c78adac"

// ExecutedTransaction is a transaction accepted by FakeNode.
type ExecutedTransaction struct {
	Digest     model.Digest
	TxBytes    []byte
	Signers    []model.Address
	Checkpoint uint64
	Effects    mysorpc.Effects
}

// FakeNode serves the node's JSON-RPC methods from in-memory state.
type FakeNode struct {
	t      *testing.T
	server *httptest.Server

	mu               sync.Mutex
	height           uint64
	gasPrice         uint64
	gasUsed          mysorpc.GasCostSummary
	objects          map[model.ObjectID]mysorpc.Object
	coins            map[model.Address][]mysorpc.Coin
	executed         map[model.Digest]*ExecutedTransaction
	order            []model.Digest
	pollsBeforeCheck int
	polls            map[model.Digest]int
	failure          string
}

// NewFakeNode starts a JSON-RPC server on a loopback httptest listener. It is closed with the test.
func NewFakeNode(t *testing.T) *FakeNode {
	t.Helper()

	n := &FakeNode{
		t:                t,
		height:           0,
		gasPrice:         1000,
		gasUsed:          mysorpc.GasCostSummary{ComputationCost: 1_000_000, StorageCost: 2_000_000, StorageRebate: 500_000},
		objects:          make(map[model.ObjectID]mysorpc.Object),
		coins:            make(map[model.Address][]mysorpc.Coin),
		executed:         make(map[model.Digest]*ExecutedTransaction),
		pollsBeforeCheck: 1,
		polls:            make(map[model.Digest]int),
	}

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("myso", &mysoService{n: n}))
	require.NoError(t, srv.RegisterName("mysox", &mysoxService{n: n}))

	n.server = httptest.NewServer(srv)
	t.Cleanup(func() {
		n.server.Close()
		srv.Stop()
	})
	return n
}

// URL returns the endpoint of the fake node.
func (n *FakeNode) URL() string {
	return n.server.URL
}

// Dial returns a client connected to the fake node. It is closed with the test.
func (n *FakeNode) Dial(t *testing.T) *mysorpc.JSONRPCClient {
	t.Helper()
	c, err := mysorpc.Dial(context.Background(), Logger(t), n.URL(), mysorpc.WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// SetCheckpointHeight sets the latest checkpoint sequence number.
func (n *FakeNode) SetCheckpointHeight(h uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.height = h
}

// SetGasPrice sets the reference gas price.
func (n *FakeNode) SetGasPrice(p uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gasPrice = p
}

// SetPollsBeforeCheckpoint sets how many reads of an executed transaction happen before it
// reports a checkpoint. A negative value keeps transactions uncheckpointed forever.
func (n *FakeNode) SetPollsBeforeCheckpoint(polls int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pollsBeforeCheck = polls
}

// FailExecution makes subsequent executions abort with the given error.
func (n *FakeNode) FailExecution(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failure = reason
}

// PutObject stores or replaces an object.
func (n *FakeNode) PutObject(o mysorpc.Object) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.objects[o.ObjectID] = o
}

// PutSharedObject stores a shared object with the given initial shared version.
func (n *FakeNode) PutSharedObject(id model.ObjectID, initialVersion uint64) {
	n.PutObject(mysorpc.Object{
		ObjectID: id,
		Version:  model.Uint64(initialVersion + 10),
		Digest:   RandomDigest(n.t),
		Owner:    &mysorpc.Owner{Kind: mysorpc.OwnerShared, InitialSharedVersion: initialVersion},
	})
}

// AddCoin gives owner a native coin with the given balance and returns it.
func (n *FakeNode) AddCoin(owner model.Address, balance uint64) mysorpc.Coin {
	c := mysorpc.Coin{
		CoinType:     model.MysoCoinType,
		CoinObjectID: RandomAddress(n.t),
		Version:      1,
		Digest:       RandomDigest(n.t),
		Balance:      model.Uint64(balance),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.coins[owner] = append(n.coins[owner], c)
	n.objects[c.CoinObjectID] = coinObject(owner, c)
	return c
}

// Executed returns the accepted transactions in submission order.
func (n *FakeNode) Executed() []ExecutedTransaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ExecutedTransaction, 0, len(n.order))
	for _, d := range n.order {
		out = append(out, *n.executed[d])
	}
	return out
}

func coinObject(owner model.Address, c mysorpc.Coin) mysorpc.Object {
	return mysorpc.Object{
		ObjectID: c.CoinObjectID,
		Version:  c.Version,
		Digest:   c.Digest,
		Type:     "0x2::coin::Coin<" + model.MysoCoinType + ">",
		Owner:    &mysorpc.Owner{Kind: mysorpc.OwnerAddress, Address: owner},
		Content: &mysorpc.MoveContent{
			DataType: "moveObject",
			Type:     "0x2::coin::Coin<" + model.MysoCoinType + ">",
			Fields:   []byte(fmt.Sprintf(`{"balance":"%d","id":{"id":"%s"}}`, uint64(c.Balance), c.CoinObjectID)),
		},
	}
}

type mysoService struct {
	n *FakeNode
}

func (s *mysoService) GetChainIdentifier() string {
	return FakeChainID
}

func (s *mysoService) GetLatestCheckpointSequenceNumber() model.Uint64 {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	return model.Uint64(s.n.height)
}

func (s *mysoService) GetCheckpoint(id string) (*mysorpc.Checkpoint, error) {
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint id %q", id)
	}
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	if seq > s.n.height {
		return nil, fmt.Errorf("checkpoint %d not found", seq)
	}
	var digest model.Digest
	copy(digest[:], strconv.FormatUint(seq, 10))
	return &mysorpc.Checkpoint{
		Epoch:          0,
		SequenceNumber: model.Uint64(seq),
		Digest:         digest,
		TimestampMs:    model.Uint64(1_700_000_000_000 + seq*250),
	}, nil
}

func (s *mysoService) ExecuteTransactionBlock(
	txB64 string,
	sigs []string,
	_ *mysorpc.TransactionOptions,
	_ *string,
) (*mysorpc.TransactionResponse, error) {
	txBytes, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction bytes: %w", err)
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("transaction is not signed")
	}
	signers := make([]model.Address, 0, len(sigs))
	for _, b64 := range sigs {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("invalid signature encoding: %w", err)
		}
		pub, err := keys.Verify(raw, txBytes)
		if err != nil {
			return nil, err
		}
		signers = append(signers, pub.Address())
	}

	digest := txbuilder.TransactionDigest(txBytes)

	s.n.mu.Lock()
	defer s.n.mu.Unlock()

	status := mysorpc.ExecutionStatus{Status: mysorpc.StatusSuccess}
	if s.n.failure != "" {
		status = mysorpc.ExecutionStatus{Status: "failure", Error: s.n.failure}
	}

	effects := mysorpc.Effects{
		Status:            status,
		GasUsed:           s.n.gasUsed,
		TransactionDigest: digest,
	}

	s.n.height++
	s.n.executed[digest] = &ExecutedTransaction{
		Digest:     digest,
		TxBytes:    txBytes,
		Signers:    signers,
		Checkpoint: s.n.height,
		Effects:    effects,
	}
	s.n.order = append(s.n.order, digest)

	return &mysorpc.TransactionResponse{Digest: digest, Effects: &effects}, nil
}

func (s *mysoService) GetTransactionBlock(digestB58 string, _ *mysorpc.TransactionOptions) (*mysorpc.TransactionResponse, error) {
	digest, err := model.DigestFromBase58(digestB58)
	if err != nil {
		return nil, err
	}

	s.n.mu.Lock()
	defer s.n.mu.Unlock()

	tx, ok := s.n.executed[digest]
	if !ok {
		return nil, fmt.Errorf("could not find the referenced transaction %s", digest)
	}
	s.n.polls[digest]++

	effects := tx.Effects
	resp := &mysorpc.TransactionResponse{Digest: digest, Effects: &effects}
	if s.n.pollsBeforeCheck >= 0 && s.n.polls[digest] >= s.n.pollsBeforeCheck {
		cp := model.Uint64(tx.Checkpoint)
		resp.Checkpoint = &cp
	}
	return resp, nil
}

func (s *mysoService) DryRunTransactionBlock(txB64 string) (*mysorpc.SimulationResult, error) {
	if _, err := base64.StdEncoding.DecodeString(txB64); err != nil {
		return nil, fmt.Errorf("invalid transaction bytes: %w", err)
	}
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	return &mysorpc.SimulationResult{
		Effects: mysorpc.Effects{
			Status:  mysorpc.ExecutionStatus{Status: mysorpc.StatusSuccess},
			GasUsed: s.n.gasUsed,
		},
	}, nil
}

func (s *mysoService) GetObject(id model.Address, _ *mysorpc.ObjectDataOptions) (*mysorpc.ObjectResponse, error) {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	o, ok := s.n.objects[id]
	if !ok {
		return &mysorpc.ObjectResponse{Error: &mysorpc.ObjectError{Code: "notExists", ObjectID: &id}}, nil
	}
	return &mysorpc.ObjectResponse{Data: &o}, nil
}

type mysoxService struct {
	n *FakeNode
}

func (s *mysoxService) GetReferenceGasPrice() model.Uint64 {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	return model.Uint64(s.n.gasPrice)
}

func (s *mysoxService) GetCoins(owner model.Address, coinType *string, cursor *string, limit *int) (*mysorpc.Page[mysorpc.Coin], error) {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()

	var matching []mysorpc.Coin
	for _, c := range s.n.coins[owner] {
		if coinType == nil || c.CoinType == *coinType {
			matching = append(matching, c)
		}
	}
	return paginate(matching, cursor, limit)
}

func (s *mysoxService) GetOwnedObjects(
	owner model.Address,
	_ *mysorpc.OwnedObjectsQuery,
	cursor *string,
	limit *int,
) (*mysorpc.Page[mysorpc.ObjectResponse], error) {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()

	var owned []mysorpc.ObjectResponse
	for _, o := range s.n.objects {
		if o.Owner != nil && o.Owner.Kind == mysorpc.OwnerAddress && o.Owner.Address == owner {
			obj := o
			owned = append(owned, mysorpc.ObjectResponse{Data: &obj})
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].Data.ObjectID.String() < owned[j].Data.ObjectID.String()
	})
	return paginate(owned, cursor, limit)
}

// paginate serves items in pages; the cursor is the index of the next item.
func paginate[T any](items []T, cursor *string, limit *int) (*mysorpc.Page[T], error) {
	start := 0
	if cursor != nil {
		var err error
		start, err = strconv.Atoi(*cursor)
		if err != nil || start < 0 || start > len(items) {
			return nil, fmt.Errorf("invalid cursor %q", *cursor)
		}
	}
	size := 50
	if limit != nil && *limit > 0 {
		size = *limit
	}
	end := min(start+size, len(items))

	page := &mysorpc.Page[T]{Data: items[start:end]}
	if page.Data == nil {
		page.Data = []T{}
	}
	if end < len(items) {
		next := strconv.Itoa(end)
		page.NextCursor = &next
		page.HasNextPage = true
	}
	return page, nil
}
