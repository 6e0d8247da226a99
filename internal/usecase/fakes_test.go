package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/v3ops/internal/domain"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

var (
	testSender    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testNPM       = common.HexToAddress("0xc01DdaBBA95E9Cb45C1D7919c0B9f2fb6740c9f4")
	testTokenA    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testTokenB    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testPool      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	testRecipient = common.HexToAddress("0x0b511e0C4890881352e00f3E48f5B6C0D08B8A9B")
)

// memStore is an in-memory ManifestStore
type memStore struct {
	manifests map[string]*models.Manifest
	saved     map[string]*models.Manifest
	abis      map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		manifests: make(map[string]*models.Manifest),
		saved:     make(map[string]*models.Manifest),
		abis:      make(map[string][]byte),
	}
}

func (s *memStore) key(network, name string) string { return network + "/" + name }

func (s *memStore) put(network, name string, m *models.Manifest) {
	s.manifests[s.key(network, name)] = m
}

func (s *memStore) Load(_ context.Context, network, name string) (*models.Manifest, error) {
	m, ok := s.manifests[s.key(network, name)]
	if !ok {
		return nil, domain.MissingManifestError{Network: network, Name: name, Path: s.Path(network, name)}
	}
	return m.Clone(), nil
}

func (s *memStore) Save(_ context.Context, network, name string, m *models.Manifest) error {
	s.manifests[s.key(network, name)] = m.Clone()
	s.saved[name] = m.Clone()
	return nil
}

func (s *memStore) List(_ context.Context, network string) ([]string, error) {
	var names []string
	for k := range s.manifests {
		if n, ok := strings.CutPrefix(k, network+"/"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) Path(network, name string) string {
	return fmt.Sprintf("deployments/%s/%s-deployment.json", network, name)
}

func (s *memStore) WriteABI(_ context.Context, _ string, role string, abiJSON []byte) (*models.ABIRef, error) {
	path := "abi/" + role + ".json"
	s.abis[path] = abiJSON
	return &models.ABIRef{Path: path}, nil
}

func (s *memStore) ReadABI(_ context.Context, _ string, ref *models.ABIRef) ([]byte, error) {
	if len(ref.Inline) > 0 {
		return ref.Inline, nil
	}
	data, ok := s.abis[ref.Path]
	if !ok {
		return nil, fmt.Errorf("abi %s not found", ref.Path)
	}
	return data, nil
}

// fakeChain is a ChainClient that mines every transaction instantly
type fakeChain struct {
	sender    common.Address
	hasSigner bool
	chainID   uint64
	connects  int
	nonce     uint64
	mined     []*types.Transaction
	deployed  []common.Address
	failed    map[common.Hash]bool
	// failTo fails every receipt of a transaction sent to the address
	failTo map[common.Address]bool
	// waitErr is returned by WaitMined after the transaction was broadcast
	waitErr error
	eth     *big.Int
	queries []ethereum.FilterQuery
	// logs answers a log query, nil means no logs
	logs func(q ethereum.FilterQuery) []types.Log
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		sender:    testSender,
		hasSigner: true,
		chainID:   31337,
		failed:    make(map[common.Hash]bool),
		failTo:    make(map[common.Address]bool),
		eth:       big.NewInt(1e18),
	}
}

func (c *fakeChain) newTx(to *common.Address) *types.Transaction {
	c.nonce++
	return types.NewTx(&types.LegacyTx{Nonce: c.nonce, To: to, Gas: 21000, GasPrice: big.NewInt(1)})
}

func (c *fakeChain) Connect(context.Context, string) (uint64, error) {
	c.connects++
	return c.chainID, nil
}

func (c *fakeChain) Sender() (common.Address, bool) { return c.sender, c.hasSigner }

func (c *fakeChain) BlockNumber(context.Context) (uint64, error) { return 100, nil }

func (c *fakeChain) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	return c.eth, nil
}

func (c *fakeChain) CodeAt(context.Context, common.Address) ([]byte, error) { return []byte{0x1}, nil }

func (c *fakeChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.queries = append(c.queries, q)
	if c.logs == nil {
		return nil, nil
	}
	return c.logs(q), nil
}

func (c *fakeChain) Deploy(_ context.Context, _ []byte, _ usecase.TxOptions) (*types.Transaction, common.Address, error) {
	tx := c.newTx(nil)
	addr := common.BigToAddress(new(big.Int).SetUint64(0xd000 + c.nonce))
	c.deployed = append(c.deployed, addr)
	return tx, addr, nil
}

func (c *fakeChain) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.waitErr != nil {
		return nil, c.waitErr
	}
	c.mined = append(c.mined, tx)
	status := types.ReceiptStatusSuccessful
	if c.failed[tx.Hash()] || (tx.To() != nil && c.failTo[*tx.To()]) {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: tx.Hash(), GasUsed: 21000, BlockNumber: big.NewInt(100)}, nil
}

func (c *fakeChain) Close() {}

// callHandler answers a view call or applies a state change
type callHandler func(args ...any) ([]any, error)

// fakeContract dispatches calls to handlers by method name
type fakeContract struct {
	name    string
	address common.Address
	abi     *abi.ABI
	chain   *fakeChain
	calls   map[string]callHandler
	sends   map[string]callHandler
	sent    []string
}

func (f *fakeContract) Name() string            { return f.name }
func (f *fakeContract) Address() common.Address { return f.address }
func (f *fakeContract) ABI() *abi.ABI           { return f.abi }

func (f *fakeContract) Call(_ context.Context, method string, args ...any) ([]any, error) {
	h, ok := f.calls[method]
	if !ok {
		return nil, fmt.Errorf("%s: unexpected call %s", f.name, method)
	}
	return h(args...)
}

func (f *fakeContract) Transact(_ context.Context, _ usecase.TxOptions, method string, args ...any) (*types.Transaction, error) {
	f.sent = append(f.sent, method)
	if h, ok := f.sends[method]; ok {
		if _, err := h(args...); err != nil {
			return nil, err
		}
	}
	to := f.address
	return f.chain.newTx(&to), nil
}

// fakeBinder hands out the fake contract registered for an address
type fakeBinder struct {
	chain     *fakeChain
	contracts map[common.Address]*fakeContract
}

func newFakeBinder(chain *fakeChain) *fakeBinder {
	return &fakeBinder{chain: chain, contracts: make(map[common.Address]*fakeContract)}
}

func (b *fakeBinder) contract(address common.Address) *fakeContract {
	c, ok := b.contracts[address]
	if !ok {
		c = &fakeContract{
			name:    address.Hex(),
			address: address,
			abi:     &abi.ABI{},
			chain:   b.chain,
			calls:   make(map[string]callHandler),
			sends:   make(map[string]callHandler),
		}
		b.contracts[address] = c
	}
	return c
}

func (b *fakeBinder) Bind(name string, address common.Address, contractABI *abi.ABI) usecase.Contract {
	c := b.contract(address)
	c.name = name
	if contractABI != nil {
		c.abi = contractABI
	}
	return c
}

// fakeABIs serves empty interfaces for every name
type fakeABIs struct{}

func (fakeABIs) Get(string) (*abi.ABI, error) { return &abi.ABI{}, nil }
func (fakeABIs) JSON(string) ([]byte, error)  { return []byte("[]"), nil }
func (fakeABIs) Parse(data []byte) (*abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// fakeArtifacts serves artifacts whose ABI only declares a constructor
type fakeArtifacts struct {
	constructors map[string]string
	loaded       []string
}

func (a *fakeArtifacts) Load(_ context.Context, name string) (*models.Artifact, error) {
	a.loaded = append(a.loaded, name)
	abiJSON := "[]"
	if inputs, ok := a.constructors[name]; ok {
		abiJSON = `[{"type":"constructor","stateMutability":"nonpayable","inputs":[` + inputs + `]}]`
	}
	return &models.Artifact{ContractName: name, ABI: []byte(abiJSON), Bytecode: "0x6080", Path: name + ".json"}, nil
}

func (a *fakeArtifacts) Link(artifact *models.Artifact, _ map[string]common.Address) ([]byte, error) {
	return common.FromHex(artifact.Bytecode), nil
}

type nopDecoder struct{}

func (nopDecoder) Decode(*types.Log, *abi.ABI) (*models.DecodedEvent, error) { return nil, nil }

// topicDecoder names a log after the ABI event matching its first topic
type topicDecoder struct{}

func (topicDecoder) Decode(l *types.Log, contractABI *abi.ABI) (*models.DecodedEvent, error) {
	if len(l.Topics) == 0 {
		return nil, nil
	}
	ev, err := contractABI.EventByID(l.Topics[0])
	if err != nil {
		return nil, err
	}
	return &models.DecodedEvent{Name: ev.Name, Address: l.Address, BlockNumber: l.BlockNumber, TxHash: l.TxHash, LogIndex: l.Index}, nil
}

// MockJournal is a mock implementation of TxJournal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Record(ctx context.Context, entry *models.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournal) List(ctx context.Context, filter usecase.JournalFilter) ([]*models.JournalEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.JournalEntry), args.Error(1)
}

type countingMetrics struct {
	observed []models.TxRecord
	flushes  int
}

func (m *countingMetrics) ObserveTransaction(_ string, record models.TxRecord) {
	m.observed = append(m.observed, record)
}

func (m *countingMetrics) Flush() error {
	m.flushes++
	return nil
}

// harness wires a runner to fakes
type harness struct {
	cfg       *config.RuntimeConfig
	store     *memStore
	chain     *fakeChain
	binder    *fakeBinder
	artifacts *fakeArtifacts
	journal   *MockJournal
	metrics   *countingMetrics
	decoder   usecase.EventDecoder
}

func newHarness() *harness {
	chain := newFakeChain()
	journal := &MockJournal{}
	journal.On("Record", mock.Anything, mock.Anything).Return(nil)
	return &harness{
		cfg: &config.RuntimeConfig{
			ProjectRoot:    "/project",
			DeploymentsDir: "/project/deployments",
			Network: &config.Network{
				Name:    "localhost",
				ChainID: 31337,
				RPCURL:  "http://127.0.0.1:8545",
				Contracts: config.KnownContracts{
					PositionManager: testNPM,
				},
			},
		},
		store:     newMemStore(),
		chain:     chain,
		binder:    newFakeBinder(chain),
		artifacts: &fakeArtifacts{constructors: make(map[string]string)},
		journal:   journal,
		metrics:   &countingMetrics{},
		decoder:   nopDecoder{},
	}
}

func (h *harness) runner() *usecase.Runner {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewRunner(h.cfg, h.store, h.chain, h.binder, fakeABIs{}, h.artifacts, h.decoder,
		h.journal, h.metrics, usecase.NopProgress{}, log)
}

// token registers an ERC-20 with mutable balances
func (h *harness) token(address common.Address, symbol string, balances map[common.Address]*big.Int) *fakeContract {
	c := h.binder.contract(address)
	c.calls["symbol"] = func(...any) ([]any, error) { return []any{symbol}, nil }
	c.calls["decimals"] = func(...any) ([]any, error) { return []any{uint8(18)}, nil }
	c.calls["balanceOf"] = func(args ...any) ([]any, error) {
		owner := args[0].(common.Address)
		if b, ok := balances[owner]; ok {
			return []any{new(big.Int).Set(b)}, nil
		}
		return []any{new(big.Int)}, nil
	}
	return c
}

// approvable serves the allowances a fake token's approve calls set
func approvable(c *fakeContract) map[common.Address]*big.Int {
	allowances := make(map[common.Address]*big.Int)
	c.calls["allowance"] = func(args ...any) ([]any, error) {
		if a, ok := allowances[args[1].(common.Address)]; ok {
			return []any{new(big.Int).Set(a)}, nil
		}
		return []any{new(big.Int)}, nil
	}
	c.sends["approve"] = func(args ...any) ([]any, error) {
		allowances[args[0].(common.Address)] = new(big.Int).Set(args[1].(*big.Int))
		return nil, nil
	}
	return allowances
}

// poolState is the slot0 a fake pool serves
type poolState struct {
	sqrtPriceX96 *big.Int
	tick         int32
}

// pool registers a pool whose initialize sets the served price
func (h *harness) pool(address common.Address, state *poolState) *fakeContract {
	c := h.binder.contract(address)
	c.calls["slot0"] = func(...any) ([]any, error) {
		return []any{new(big.Int).Set(state.sqrtPriceX96), big.NewInt(int64(state.tick)), uint16(0), uint16(1), uint16(1), uint8(0), true}, nil
	}
	c.sends["initialize"] = func(args ...any) ([]any, error) {
		state.sqrtPriceX96 = new(big.Int).Set(args[0].(*big.Int))
		return nil, nil
	}
	return c
}

// poolManifest records the pair used by most operations
func poolManifest(withPool bool) *models.Manifest {
	m := models.NewManifest("localhost", 31337, testSender)
	m.Set(models.RoleTokenA, &models.ContractRecord{Address: testTokenA.Hex()})
	m.Set(models.RoleTokenB, &models.ContractRecord{Address: testTokenB.Hex()})
	if withPool {
		m.Set(models.RolePool, &models.ContractRecord{
			Address: testPool.Hex(),
			Token0:  testTokenA.Hex(),
			Token1:  testTokenB.Hex(),
			Fee:     500,
		})
	}
	return m
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
