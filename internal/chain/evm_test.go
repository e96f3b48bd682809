package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
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

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
}

const testAddr = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

// ---------------------------------------------------------------------------
// basic reads
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0x7a69"})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id)
}

func TestGetBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	defer srv.Close()

	bal, err := NewEVMClient(srv.URL).GetBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(big.NewInt(1000000000000000000)))
}

func TestGetNonce(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionCount": "0x2a"})
	defer srv.Close()

	nonce, err := NewEVMClient(srv.URL).GetNonce(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)
}

func TestGasPrice(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x3b9aca00"})
	defer srv.Close()

	price, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, price.Cmp(big.NewInt(1000000000)))
}

func TestCallContract(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0xabcdef"})
	defer srv.Close()

	result, err := NewEVMClient(srv.URL).CallContract(context.Background(), testAddr, "0x12345678")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", result)
}

func TestRPCErrorSurfaces(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "execution reverted")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GetBalance(context.Background(), testAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestMalformedResponse(t *testing.T) {
	srv := rpcBadJSON(t)
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(context.Background())
	assert.Error(t, err)
}

func TestUnreachableEndpoint(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:1").ChainID(context.Background())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceipt(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x10",
			"gasUsed":     "0x5208",
			"logs": []interface{}{
				map[string]interface{}{
					"address":         testAddr,
					"topics":          []string{"0xaaaa"},
					"data":            "0x",
					"transactionHash": "0xbbbb",
				},
			},
		},
	})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), "0xbbbb")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(16), r.BlockNumber)
	assert.Equal(t, uint64(21000), r.GasUsed)
	require.Len(t, r.Logs, 1)
	assert.Equal(t, "0xbbbb", r.Logs[0].TxHash)
}

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), "0xbbbb")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestWaitForReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x1",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xbbbb", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Status)
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0x1",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xbbbb", 5*time.Second)
	assert.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, r)
	assert.Equal(t, uint64(0), r.Status)
}

// ---------------------------------------------------------------------------
// logs
// ---------------------------------------------------------------------------

func TestGetLogs(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getLogs": []interface{}{
			map[string]interface{}{
				"address":         testAddr,
				"topics":          []string{"0xaaaa", "0xbbbb"},
				"data":            "0x1234",
				"blockNumber":     "0x10",
				"transactionHash": "0xcccc",
				"logIndex":        "0x0",
			},
		},
	})
	defer srv.Close()

	logs, err := NewEVMClient(srv.URL).GetLogs(context.Background(), testAddr,
		[]string{"0xaaaa"}, "0x10", "0x10")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, testAddr, logs[0].Address)
	assert.Equal(t, []string{"0xaaaa", "0xbbbb"}, logs[0].Topics)
	assert.Equal(t, "0xcccc", logs[0].TxHash)
}

func TestGetLogsEmpty(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getLogs": []interface{}{}})
	defer srv.Close()

	logs, err := NewEVMClient(srv.URL).GetLogs(context.Background(), testAddr, nil, "0x0", "latest")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// ---------------------------------------------------------------------------
// raw requests
// ---------------------------------------------------------------------------

func TestRawRequest(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_accounts": []string{testAddr}})
	defer srv.Close()

	raw, err := NewEVMClient(srv.URL).RawRequest(context.Background(), "eth_accounts")
	require.NoError(t, err)

	var accounts []string
	require.NoError(t, json.Unmarshal(raw, &accounts))
	assert.Equal(t, []string{testAddr}, accounts)
}
