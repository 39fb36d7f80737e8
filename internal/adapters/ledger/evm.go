package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// OwnerKeyEnv holds an optional second signing key. Accepting an
// ownership handover is sent by the incoming owner, which the deployer
// key cannot sign for.
const OwnerKeyEnv = "GANTRY_OWNER_KEY"

const receiptPollInterval = 2 * time.Second

// EVM is the ledger adapter for a live chain behind JSON-RPC. It signs
// EIP-1559 transactions locally and waits for receipts by polling.
// Everything expensive happens on first use: the constructor must stay
// free of RPC and key material so commands that never touch the ledger
// work without either.
type EVM struct {
	log      *slog.Logger
	network  *config.Network
	keyEnv   string
	gasLimit uint64

	mu       sync.Mutex
	rpc      *rpc.Client
	client   *ethclient.Client
	chainID  *big.Int
	signer   types.Signer
	deployer common.Address
	keys     map[common.Address]*ecdsa.PrivateKey
}

// NewEVM creates a ledger adapter for the configured network.
func NewEVM(cfg *config.RuntimeConfig, log *slog.Logger) *EVM {
	return &EVM{
		log:      log.With("component", "EVMLedger"),
		network:  cfg.Network,
		keyEnv:   cfg.Gantry.Deployer.KeyEnv,
		gasLimit: cfg.Gantry.Deployer.GasLimit,
	}
}

// dial connects to the RPC endpoint once.
func (l *EVM) dial(ctx context.Context) (*ethclient.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	if l.network.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no RPC URL configured", l.network.Name)
	}
	l.log.Debug("dialing rpc endpoint", "network", l.network.Name, "url", l.network.RPCURL)
	rpcClient, err := rpc.DialContext(ctx, l.network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", l.network.RPCURL, err)
	}

	l.rpc = rpcClient
	l.client = ethclient.NewClient(rpcClient)
	return l.client, nil
}

// chain fetches the chain id once and checks it against the configured
// network.
func (l *EVM) chain(ctx context.Context) (*big.Int, error) {
	client, err := l.dial(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != nil {
		return l.chainID, nil
	}

	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if l.network.ChainID != 0 && id.Uint64() != l.network.ChainID {
		return nil, fmt.Errorf("rpc endpoint reports chain id %d, network %s expects %d",
			id.Uint64(), l.network.Name, l.network.ChainID)
	}

	l.chainID = id
	l.signer = types.NewLondonSigner(id)
	return id, nil
}

// loadKeys reads signing keys from the environment once. The deployer
// key is required; the owner key is optional until a call needs it.
func (l *EVM) loadKeys() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.keys != nil {
		return nil
	}

	rawKey := os.Getenv(l.keyEnv)
	if rawKey == "" {
		return fmt.Errorf("deployer key not set: export %s", l.keyEnv)
	}
	deployerKey, err := crypto.HexToECDSA(trimHexPrefix(rawKey))
	if err != nil {
		return fmt.Errorf("invalid deployer key in %s: %w", l.keyEnv, err)
	}
	deployer := crypto.PubkeyToAddress(deployerKey.PublicKey)

	keys := map[common.Address]*ecdsa.PrivateKey{deployer: deployerKey}
	if rawOwner := os.Getenv(OwnerKeyEnv); rawOwner != "" {
		ownerKey, err := crypto.HexToECDSA(trimHexPrefix(rawOwner))
		if err != nil {
			return fmt.Errorf("invalid owner key in %s: %w", OwnerKeyEnv, err)
		}
		keys[crypto.PubkeyToAddress(ownerKey.PublicKey)] = ownerKey
	}

	l.deployer = deployer
	l.keys = keys
	return nil
}

func (l *EVM) keyFor(sender common.Address) (*ecdsa.PrivateKey, error) {
	if err := l.loadKeys(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key, ok := l.keys[sender]
	if !ok {
		return nil, fmt.Errorf("no signing key loaded for %s: export %s", sender.Hex(), OwnerKeyEnv)
	}
	return key, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// ChainID returns the chain id the node reports.
func (l *EVM) ChainID(ctx context.Context) (uint64, error) {
	id, err := l.chain(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// Deployer returns the account derived from the deployer key.
func (l *EVM) Deployer(ctx context.Context) (common.Address, error) {
	if err := l.loadKeys(); err != nil {
		return common.Address{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deployer, nil
}

// Nonce returns the account's next nonce, pending transactions included.
func (l *EVM) Nonce(ctx context.Context, account common.Address) (uint64, error) {
	client, err := l.dial(ctx)
	if err != nil {
		return 0, err
	}
	nonce, err := client.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("failed to read nonce of %s: %w", account.Hex(), err)
	}
	return nonce, nil
}

// SubmitCreation sends a creation transaction at the creation's nonce.
// The chain's view of the next nonce is checked first: if it moved, some
// other transaction interleaved and every downstream prediction is
// stale, so the submission fails with a nonce gap instead of landing at
// the wrong address.
func (l *EVM) SubmitCreation(ctx context.Context, creation *domain.Creation) (*domain.Receipt, error) {
	chainID, err := l.chain(ctx)
	if err != nil {
		return nil, err
	}
	deployer, err := l.Deployer(ctx)
	if err != nil {
		return nil, err
	}

	onchain, err := l.Nonce(ctx, deployer)
	if err != nil {
		return nil, err
	}
	if onchain != creation.Nonce {
		return nil, fmt.Errorf("creation %s carries nonce %d, chain expects %d: %w",
			creation.Name, creation.Nonce, onchain, domain.ErrNonceGap)
	}

	value := creation.Value
	if value == nil {
		value = new(big.Int)
	}

	gas, gasTipCap, gasFeeCap, err := l.gasFor(ctx, ethereum.CallMsg{
		From:  deployer,
		Value: value,
		Data:  creation.Bytecode,
	})
	if err != nil {
		return nil, fmt.Errorf("creation %s: %w", creation.Name, err)
	}

	l.log.Debug("submitting creation", "name", creation.Name, "nonce", creation.Nonce, "gas", gas)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     creation.Nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gas,
		Value:     value,
		Data:      creation.Bytecode,
	})

	receipt, err := l.send(ctx, tx, deployer)
	if err != nil {
		return nil, fmt.Errorf("creation %s: %w", creation.Name, err)
	}

	return &domain.Receipt{
		TxHash:      receipt.TxHash,
		Address:     receipt.ContractAddress,
		Sender:      deployer,
		Nonce:       creation.Nonce,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// SubmitCall sends a call transaction. The sender defaults to the
// deployer; the chain assigns the nonce.
func (l *EVM) SubmitCall(ctx context.Context, call *domain.Call) (*domain.Receipt, error) {
	chainID, err := l.chain(ctx)
	if err != nil {
		return nil, err
	}

	sender := call.Sender
	if sender == (common.Address{}) {
		sender, err = l.Deployer(ctx)
		if err != nil {
			return nil, err
		}
	}
	if _, err := l.keyFor(sender); err != nil {
		return nil, err
	}

	nonce, err := l.Nonce(ctx, sender)
	if err != nil {
		return nil, err
	}

	to := call.To
	gas, gasTipCap, gasFeeCap, err := l.gasFor(ctx, ethereum.CallMsg{
		From: sender,
		To:   &to,
		Data: call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", call.Method, err)
	}

	l.log.Debug("submitting call", "method", call.Method, "to", to.Hex(), "nonce", nonce)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gas,
		To:        &to,
		Data:      call.Data,
	})

	receipt, err := l.send(ctx, tx, sender)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", call.Method, err)
	}

	return &domain.Receipt{
		TxHash:      receipt.TxHash,
		Sender:      sender,
		Nonce:       nonce,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// CallView executes a read-only call against latest state.
func (l *EVM) CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	client, err := l.dial(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("view call to %s failed: %w", to.Hex(), err)
	}
	return out, nil
}

// CurrentTime returns the latest block's timestamp.
func (l *EVM) CurrentTime(ctx context.Context) (time.Time, error) {
	client, err := l.dial(ctx)
	if err != nil {
		return time.Time{}, err
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read chain head: %w", err)
	}
	return time.Unix(int64(head.Time), 0).UTC(), nil
}

// AdvanceTime fast-forwards the node clock and mines a block so the new
// timestamp is observable. Nodes without the evm_ namespace report
// method-not-found, which maps to the time travel sentinel.
func (l *EVM) AdvanceTime(ctx context.Context, d time.Duration) error {
	if _, err := l.dial(ctx); err != nil {
		return err
	}
	secs := int64(d / time.Second)
	l.log.Debug("advancing node clock", "seconds", secs)

	var result interface{}
	if err := l.rpc.CallContext(ctx, &result, "evm_increaseTime", secs); err != nil {
		if isMethodNotFound(err) {
			return domain.ErrTimeTravelUnsupported
		}
		return fmt.Errorf("evm_increaseTime failed: %w", err)
	}
	if err := l.rpc.CallContext(ctx, &result, "evm_mine"); err != nil {
		if isMethodNotFound(err) {
			return domain.ErrTimeTravelUnsupported
		}
		return fmt.Errorf("evm_mine failed: %w", err)
	}
	return nil
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == -32601
}

// gasFor returns the gas limit and EIP-1559 fee caps for a message. The
// configured gas limit short-circuits estimation when set.
func (l *EVM) gasFor(ctx context.Context, msg ethereum.CallMsg) (gas uint64, gasTipCap, gasFeeCap *big.Int, err error) {
	client, err := l.dial(ctx)
	if err != nil {
		return 0, nil, nil, err
	}

	gas = l.gasLimit
	if gas == 0 {
		gas, err = client.EstimateGas(ctx, msg)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("gas estimation failed: %w", err)
		}
	}

	gasTipCap, err = client.SuggestGasTipCap(ctx)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to fetch tip cap: %w", err)
	}

	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read chain head: %w", err)
	}
	gasFeeCap = gasTipCap
	if head.BaseFee != nil {
		gasFeeCap = new(big.Int).Add(gasTipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	return gas, gasTipCap, gasFeeCap, nil
}

// send signs, submits and waits for one transaction.
func (l *EVM) send(ctx context.Context, tx *types.Transaction, sender common.Address) (*types.Receipt, error) {
	key, err := l.keyFor(sender)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	signer := l.signer
	client := l.client
	l.mu.Unlock()

	signed, err := types.SignTx(tx, signer, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	l.log.Debug("transaction sent", "hash", signed.Hash().Hex(), "sender", sender.Hex())

	receipt, err := l.waitReceipt(ctx, client, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		l.log.Error("transaction reverted", "hash", signed.Hash().Hex(), "block", receipt.BlockNumber)
		return nil, fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}
	return receipt, nil
}

// waitReceipt polls for the receipt until the context ends.
func (l *EVM) waitReceipt(ctx context.Context, client *ethclient.Client, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Ensure EVM implements Ledger
var _ usecase.Ledger = (*EVM)(nil)
