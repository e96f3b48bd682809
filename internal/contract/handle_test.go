package contract

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat's first default account; safe to embed in tests.
const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testTxHash  = "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	handleChain = int64(31337)
)

// rpcMock serves a fixed JSON-RPC response per method. Unknown methods
// return an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

func signingHandle(t *testing.T, url string) *Handle {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	signer, err := wallet.ImportKey("test", testKey, ks)
	require.NoError(t, err)

	f := NewFactory(map[Name]string{EventTicket: eventContractAddr})
	h, err := f.Bind(EventTicket, &Target{
		Client:  chain.NewEVMClient(url),
		Signer:  signer,
		ChainID: handleChain,
	})
	require.NoError(t, err)
	return h
}

func receiptJSON(status string, logs []interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status":      status,
		"blockNumber": "0x10",
		"gasUsed":     "0x5208",
		"logs":        logs,
	}
}

func eventCreatedLogJSON(eventID int64) map[string]interface{} {
	ev := findEvent(eventTicketABI, "EventCreated")
	return map[string]interface{}{
		"address":         eventContractAddr,
		"topics":          []string{ev.Topic(), "0x" + word(eventID), "0x" + addrWord(testAddr)},
		"data":            "0x" + word(32) + word(4) + padRight("46657374"),
		"transactionHash": testTxHash,
	}
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

func TestCallDecodesResult(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x" + word(32) + word(2) + word(4) + word(9),
	})
	defer srv.Close()

	f := NewFactory(map[Name]string{EventTicket: eventContractAddr})
	h, err := f.Bind(EventTicket, &Target{Client: chain.NewEVMClient(srv.URL)})
	require.NoError(t, err)

	outs, err := h.Call(context.Background(), "getTicketsByOwner", testAddr)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"4", "9"}, outs[0])
}

func TestCallRejectsWriteFunction(t *testing.T) {
	f := NewFactory(map[Name]string{EventTicket: eventContractAddr})
	h, err := f.Bind(EventTicket, &Target{Client: chain.NewEVMClient("http://localhost:8545")})
	require.NoError(t, err)

	_, err = h.Call(context.Background(), "createEvent", "a", "b", "1", "2")
	assert.ErrorContains(t, err, "not a read function")
}

func TestCallUnknownFunction(t *testing.T) {
	f := NewFactory(map[Name]string{EventTicket: eventContractAddr})
	h, err := f.Bind(EventTicket, &Target{Client: chain.NewEVMClient("http://localhost:8545")})
	require.NoError(t, err)

	_, err = h.Call(context.Background(), "noSuchFunction")
	assert.ErrorContains(t, err, "not found")
}

// ---------------------------------------------------------------------------
// Send / Submit
// ---------------------------------------------------------------------------

func TestSendWithoutSigner(t *testing.T) {
	f := NewFactory(map[Name]string{EventTicket: eventContractAddr})
	h, err := f.Bind(EventTicket, &Target{Client: chain.NewEVMClient("http://localhost:8545")})
	require.NoError(t, err)

	_, err = h.Send(context.Background(), "createEvent", nil, "a", "b", "1", "2")
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestSendValueToNonPayable(t *testing.T) {
	h := signingHandle(t, "http://localhost:8545")
	_, err := h.Send(context.Background(), "createEvent", big.NewInt(1), "a", "b", "1", "2")
	assert.ErrorContains(t, err, "not payable")
}

func TestSubmitExtractsEventID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_estimateGas":           "0x186a0",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    testTxHash,
		"eth_getTransactionReceipt": receiptJSON("0x1", []interface{}{eventCreatedLogJSON(7)}),
	})
	defer srv.Close()

	h := signingHandle(t, srv.URL)
	sub, err := h.Submit(context.Background(), "createEvent", nil,
		"EventCreated", "eventId", "Fest", "desc", "1700000000", "1700003600")
	require.NoError(t, err)
	assert.Equal(t, testTxHash, sub.TxHash)
	assert.Equal(t, "7", sub.ID)
	require.NotNil(t, sub.Receipt)
	assert.Equal(t, uint64(1), sub.Receipt.Status)
}

func TestSubmitReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_estimateGas":           "0x186a0",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    testTxHash,
		"eth_getTransactionReceipt": receiptJSON("0x0", nil),
	})
	defer srv.Close()

	h := signingHandle(t, srv.URL)
	_, err := h.Submit(context.Background(), "createEvent", nil,
		"EventCreated", "eventId", "Fest", "desc", "1700000000", "1700003600")
	assert.ErrorIs(t, err, ErrTransactionReverted)
}

func TestSubmitRequeriesMissingEvent(t *testing.T) {
	// Receipt carries no logs; the block re-query finds the event by
	// topic and joins it on the transaction hash.
	srv := rpcMock(t, map[string]interface{}{
		"eth_estimateGas":           "0x186a0",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    testTxHash,
		"eth_getTransactionReceipt": receiptJSON("0x1", nil),
		"eth_getLogs":               []interface{}{eventCreatedLogJSON(12)},
	})
	defer srv.Close()

	h := signingHandle(t, srv.URL)
	sub, err := h.Submit(context.Background(), "createEvent", nil,
		"EventCreated", "eventId", "Fest", "desc", "1700000000", "1700003600")
	require.NoError(t, err)
	assert.Equal(t, "12", sub.ID)
}

func TestSubmitEventStillMissing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_estimateGas":           "0x186a0",
		"eth_gasPrice":              "0x3b9aca00",
		"eth_getTransactionCount":   "0x0",
		"eth_sendRawTransaction":    testTxHash,
		"eth_getTransactionReceipt": receiptJSON("0x1", nil),
		"eth_getLogs":               []interface{}{},
	})
	defer srv.Close()

	h := signingHandle(t, srv.URL)
	sub, err := h.Submit(context.Background(), "createEvent", nil,
		"EventCreated", "eventId", "Fest", "desc", "1700000000", "1700003600")
	require.NoError(t, err)
	// Transaction confirmed; only the id is unavailable.
	assert.Empty(t, sub.ID)
	assert.Equal(t, testTxHash, sub.TxHash)
}
