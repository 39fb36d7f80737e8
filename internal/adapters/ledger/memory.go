package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// MemoryDeployer is the deployer account of the in-process ledger. Same
// address as anvil's first funded account, so plans written against a
// local node predict the same addresses in memory.
var MemoryDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// memoryGenesis is the fixed unix time the memory clock starts at.
// Runs against the memory ledger are reproducible down to timestamps.
const memoryGenesis int64 = 1700000000

// Submission is one entry of the memory ledger's ordered submission log.
type Submission struct {
	Kind   models.TransactionKind
	Name   string
	Nonce  uint64
	Sender common.Address
	To     common.Address
	Method string
}

// Memory is an in-process ledger. It applies the real CREATE address
// rule and the real nonce discipline but executes nothing: submissions
// are logged, not run. It backs the "memory" network for rehearsing
// plans without a node.
type Memory struct {
	mu       sync.Mutex
	chainID  uint64
	deployer common.Address
	nonces   map[common.Address]uint64
	now      time.Time
	block    uint64
	log      []Submission

	noTimeTravel bool
	failCreation map[string]error
	failCall     map[string]error
}

// NewMemory creates a memory ledger with the default deployer and the
// memory chain id.
func NewMemory() *Memory {
	return &Memory{
		chainID:      config.MemoryChainID,
		deployer:     MemoryDeployer,
		nonces:       make(map[common.Address]uint64),
		now:          time.Unix(memoryGenesis, 0).UTC(),
		failCreation: make(map[string]error),
		failCall:     make(map[string]error),
	}
}

// ChainID returns the memory chain id.
func (l *Memory) ChainID(ctx context.Context) (uint64, error) {
	return l.chainID, nil
}

// Deployer returns the ledger's deployer account.
func (l *Memory) Deployer(ctx context.Context) (common.Address, error) {
	return l.deployer, nil
}

// Nonce returns the next nonce the ledger expects from the account.
func (l *Memory) Nonce(ctx context.Context, account common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonces[account], nil
}

// SubmitCreation applies the CREATE address rule to the creation and
// logs it. A creation whose nonce is not the account's next one fails
// with a nonce gap instead of being renumbered.
func (l *Memory) SubmitCreation(ctx context.Context, creation *domain.Creation) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err, ok := l.failCreation[creation.Name]; ok {
		return nil, err
	}

	next := l.nonces[l.deployer]
	if creation.Nonce != next {
		return nil, fmt.Errorf("creation %s carries nonce %d, ledger expects %d: %w",
			creation.Name, creation.Nonce, next, domain.ErrNonceGap)
	}

	address := crypto.CreateAddress(l.deployer, creation.Nonce)
	l.nonces[l.deployer] = next + 1
	l.block++

	l.log = append(l.log, Submission{
		Kind:   models.TxCreation,
		Name:   creation.Name,
		Nonce:  creation.Nonce,
		Sender: l.deployer,
	})

	return &domain.Receipt{
		TxHash:      l.txHash(l.deployer, creation.Nonce),
		Address:     address,
		Sender:      l.deployer,
		Nonce:       creation.Nonce,
		BlockNumber: l.block,
		GasUsed:     21000 + uint64(len(creation.Bytecode)),
	}, nil
}

// SubmitCall logs a call. The sender defaults to the deployer; the
// ledger assigns the nonce.
func (l *Memory) SubmitCall(ctx context.Context, call *domain.Call) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err, ok := l.failCall[call.Method]; ok {
		return nil, err
	}

	sender := call.Sender
	if sender == (common.Address{}) {
		sender = l.deployer
	}

	nonce := l.nonces[sender]
	l.nonces[sender] = nonce + 1
	l.block++

	l.log = append(l.log, Submission{
		Kind:   models.TxCall,
		Nonce:  nonce,
		Sender: sender,
		To:     call.To,
		Method: call.Method,
	})

	return &domain.Receipt{
		TxHash:      l.txHash(sender, nonce),
		Sender:      sender,
		Nonce:       nonce,
		BlockNumber: l.block,
		GasUsed:     21000 + uint64(len(call.Data)),
	}, nil
}

// CallView fails: the memory ledger logs submissions without executing
// them, so there is no state to read back.
func (l *Memory) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return nil, fmt.Errorf("memory ledger cannot evaluate view calls")
}

// CurrentTime returns the ledger clock. The clock only moves through
// AdvanceTime, never on its own.
func (l *Memory) CurrentTime(ctx context.Context) (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now, nil
}

// AdvanceTime moves the ledger clock forward.
func (l *Memory) AdvanceTime(ctx context.Context, d time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.noTimeTravel {
		return domain.ErrTimeTravelUnsupported
	}
	l.now = l.now.Add(d)
	return nil
}

// DisableTimeTravel makes AdvanceTime fail the way a live chain does,
// for rehearsing the degraded warm-up and handover paths.
func (l *Memory) DisableTimeTravel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.noTimeTravel = true
}

// UseDeployer switches the ledger's deployer account, for rehearsing the
// same plan under different identities.
func (l *Memory) UseDeployer(addr common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deployer = addr
}

// FailCreation makes every submission of the named creation fail with
// the given error.
func (l *Memory) FailCreation(name string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failCreation[name] = err
}

// FailCall makes every call with the given method signature fail with
// the given error.
func (l *Memory) FailCall(method string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failCall[method] = err
}

// Submissions returns the ordered log of everything submitted so far.
func (l *Memory) Submissions() []Submission {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Submission, len(l.log))
	copy(out, l.log)
	return out
}

// txHash derives a stable pseudo hash for a submission. The memory
// ledger never talks RLP, so hashing sender and nonce is enough to keep
// registry keys unique.
func (l *Memory) txHash(sender common.Address, nonce uint64) common.Hash {
	return crypto.Keccak256Hash(sender.Bytes(), []byte(fmt.Sprintf("%d/%d", l.chainID, nonce)))
}

// Ensure Memory implements Ledger
var _ usecase.Ledger = (*Memory)(nil)
