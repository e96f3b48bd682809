package contract

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrTransactionReverted wraps a contract-level rejection. The revert
// message is passed through opaquely.
var ErrTransactionReverted = errors.New("transaction reverted")

// ErrNoSigner is returned by write operations on a read-only handle.
var ErrNoSigner = errors.New("handle has no signer")

// confirmTimeout bounds the wait for one confirmation.
const confirmTimeout = 3 * time.Minute

// Handle is a typed connection to one deployed contract. Immutable
// once constructed; recreate via Factory.Bind when the session changes.
type Handle struct {
	Name    Name
	Address string

	abi     []ABIEntry
	client  *chain.EVMClient
	signer  *wallet.Signer
	chainID *big.Int
}

// CanWrite reports whether the handle carries a signer.
func (h *Handle) CanWrite() bool { return h.signer != nil }

// Call invokes a read function and returns the decoded outputs:
// strings for scalars, []interface{} for arrays and structs.
func (h *Handle) Call(ctx context.Context, funcName string, args ...string) ([]interface{}, error) {
	fn := findFunction(h.abi, funcName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in %s ABI", funcName, h.Name)
	}
	if !fn.IsReadFunction() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", funcName, fn.StateMutability)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := h.client.CallContract(ctx, h.Address, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	decoded, err := decodeOutputs(fn, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return decoded, nil
}

// Send signs and broadcasts a write transaction carrying value wei
// (nil for non-payable calls). Returns the transaction hash.
func (h *Handle) Send(ctx context.Context, funcName string, value *big.Int, args ...string) (string, error) {
	if h.signer == nil {
		return "", ErrNoSigner
	}

	fn := findFunction(h.abi, funcName)
	if fn == nil {
		return "", fmt.Errorf("function %q not found in %s ABI", funcName, h.Name)
	}
	if !fn.IsWriteFunction() {
		return "", fmt.Errorf("function %q is not a write function", funcName)
	}
	if value != nil && value.Sign() > 0 && !fn.IsPayable() {
		return "", fmt.Errorf("function %q is not payable", funcName)
	}

	calldata, err := encodeCall(fn, args)
	if err != nil {
		return "", fmt.Errorf("encoding call: %w", err)
	}

	from := h.signer.Address()

	gas, err := h.client.EstimateGas(ctx, from, h.Address, calldata, value)
	if err != nil {
		gas = 300000 // fallback
	}

	gasPrice, err := h.client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := h.client.GetNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	calldataBytes, err := hex.DecodeString(strings.TrimPrefix(calldata, "0x"))
	if err != nil {
		return "", fmt.Errorf("decoding calldata: %w", err)
	}
	toAddr := common.HexToAddress(h.Address)

	txValue := big.NewInt(0)
	if value != nil {
		txValue = value
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   h.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     txValue,
		Data:      calldataBytes,
	})

	raw, err := h.signer.SignTx(tx, h.chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := h.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	return hash, nil
}

// Submitted is the outcome of a confirmed write.
type Submitted struct {
	TxHash  string
	Receipt *chain.TxReceipt
	// ID is the identifier extracted from the emitted event, or ""
	// when the event could not be located (the transaction itself
	// still succeeded).
	ID string
}

// Submit sends a write transaction, waits for one confirmation, and
// extracts idArg from the named emitted event. When the receipt does
// not carry the event, the receipt's block is re-queried by topic
// before giving up on the id.
func (h *Handle) Submit(ctx context.Context, funcName string, value *big.Int, eventName, idArg string, args ...string) (*Submitted, error) {
	hash, err := h.Send(ctx, funcName, value, args...)
	if err != nil {
		return nil, err
	}

	receipt, err := h.client.WaitForReceipt(ctx, hash, confirmTimeout)
	if err != nil {
		if errors.Is(err, chain.ErrReverted) {
			return nil, fmt.Errorf("%w: %v", ErrTransactionReverted, err)
		}
		return nil, err
	}

	out := &Submitted{TxHash: hash, Receipt: receipt}
	if eventName == "" {
		return out, nil
	}

	id, ok, err := ExtractEventArg(h.abi, receipt.Logs, h.Address, eventName, idArg)
	if err != nil {
		return out, fmt.Errorf("extracting %s.%s: %w", eventName, idArg, err)
	}
	if ok {
		out.ID = id
		return out, nil
	}

	// The transaction mined but the receipt carried no matching log
	// (some nodes trim logs on receipts). Re-query the block by topic
	// and join on the transaction hash before reporting the id lost.
	out.ID = h.requeryEventID(ctx, receipt, hash, eventName, idArg)
	return out, nil
}

func (h *Handle) requeryEventID(ctx context.Context, receipt *chain.TxReceipt, txHash, eventName, idArg string) string {
	ev := findEvent(h.abi, eventName)
	if ev == nil || receipt.BlockNumber == 0 {
		return ""
	}
	block := fmt.Sprintf("0x%x", receipt.BlockNumber)
	logs, err := h.client.GetLogs(ctx, h.Address, []string{ev.Topic()}, block, block)
	if err != nil {
		return ""
	}
	var own []chain.LogEntry
	for _, log := range logs {
		if strings.EqualFold(log.TxHash, txHash) {
			own = append(own, log)
		}
	}
	id, ok, err := ExtractEventArg(h.abi, own, h.Address, eventName, idArg)
	if err != nil || !ok {
		return ""
	}
	return id
}
