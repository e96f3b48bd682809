package funding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/contract"
	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

const (
	fundingAddr = "0x2222222222222222222222222222222222222222"
	creatorAddr = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	donorAddr   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
)

func word(n int64) string { return fmt.Sprintf("%064x", n) }

func addrWord(addr string) string {
	return fmt.Sprintf("%064s", strings.ToLower(strings.TrimPrefix(addr, "0x")))
}

func padRight(hexStr string) string {
	if rem := len(hexStr) % 64; rem != 0 {
		return hexStr + strings.Repeat("0", 64-rem)
	}
	return hexStr
}

func selectorFor(t *testing.T, funcName string) string {
	t.Helper()
	for _, e := range contract.BuiltinABI(contract.Fundraising) {
		if e.Type == "function" && e.Name == funcName {
			return e.Selector()
		}
	}
	t.Fatalf("function %s not in Fundraising ABI", funcName)
	return ""
}

// contractServer routes eth_call by exact calldata.
func contractServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		fail := func(msg string) {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32000, "message": msg},
			})
		}

		if req.Method != "eth_call" || len(req.Params) == 0 {
			fail("unsupported method " + req.Method)
			return
		}
		var call struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(req.Params[0], &call); err != nil {
			fail("bad call object")
			return
		}
		result, ok := routes[call.Data]
		if !ok {
			fail("no route for " + call.Data)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func testClient(t *testing.T, url string, store *mirror.Store) (*Client, *ui.Recorder) {
	t.Helper()
	sess := session.NewManager(
		session.WithCacheStore(session.NewMemoryCache()),
		session.WithLogger(zap.NewNop()),
	)
	factory := contract.NewFactory(map[contract.Name]string{
		contract.Fundraising: fundingAddr,
	})
	rec := &ui.Recorder{}
	return NewClient(sess, factory, chain.NewEVMClient(url), store, rec), rec
}

// campaignResult encodes a campaigns(id) frame: id, title, description,
// goal, raised, start, end, creator, isActive, fundsWithdrawn.
func campaignResult(id int64, title, desc string, goalWei, raisedWei int64, active int64) string {
	titleHex := fmt.Sprintf("%x", title)
	descHex := fmt.Sprintf("%x", desc)
	head := word(id) + word(320) + word(int64(320+32+len(padRight(titleHex))/2)) +
		word(goalWei) + word(raisedWei) + word(1700000000) + word(1702592000) +
		addrWord(creatorAddr) + word(active) + word(0)
	tail := word(int64(len(title))) + padRight(titleHex) +
		word(int64(len(desc))) + padRight(descHex)
	return "0x" + head + tail
}

// ---------------------------------------------------------------------------
// write guard
// ---------------------------------------------------------------------------

func TestWritesRequireWallet(t *testing.T) {
	c, rec := testClient(t, "http://localhost:8545", nil)
	ctx := context.Background()

	id, err := c.CreateCampaign(ctx, CreateCampaignParams{Title: "Relief", GoalEth: "10"})
	require.NoError(t, err)
	assert.Empty(t, id)

	hash, err := c.Donate(ctx, "1", "0.5", "gm", false)
	require.NoError(t, err)
	assert.Empty(t, hash)

	hash, err = c.WithdrawFunds(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.Len(t, rec.Notices, 3)
	for _, n := range rec.Notices {
		assert.Equal(t, "warn", n.Level)
		assert.Equal(t, "Wallet not connected", n.Title)
	}
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

func TestCampaign(t *testing.T) {
	srv := contractServer(t, map[string]string{
		selectorFor(t, "campaigns") + word(1): campaignResult(1, "Relief Fund", "help", 5000000000000000000, 2500000000000000000, 1),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	cp, err := c.Campaign(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", cp.ID)
	assert.Equal(t, "Relief Fund", cp.Title)
	assert.Equal(t, "help", cp.Description)
	assert.Equal(t, "5", cp.GoalEther)
	assert.Equal(t, "2.5", cp.RaisedEther)
	assert.Equal(t, creatorAddr, cp.Creator)
	assert.True(t, cp.Active)
	assert.False(t, cp.FundsWithdrawn)
	assert.Empty(t, cp.Category)
}

func TestCampaignEnrichedFromMirror(t *testing.T) {
	srv := contractServer(t, map[string]string{
		selectorFor(t, "campaigns") + word(1): campaignResult(1, "Relief Fund", "help", 1000000000000000000, 0, 1),
	})
	defer srv.Close()

	store, err := mirror.Open(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Write(context.Background(), mirror.Document{
		Collection: mirror.CollectionCampaigns,
		ID:         "1",
		Category:   "disaster-relief",
	}))

	c, _ := testClient(t, srv.URL, store)
	cp, err := c.Campaign(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "disaster-relief", cp.Category)
}

func TestDonations(t *testing.T) {
	// One donation with message "gm!"; the tuple is dynamic so the
	// array carries per-element offsets.
	msgHex := fmt.Sprintf("%x", "gm!")
	tupleFrame := addrWord(donorAddr) + word(500000000000000000) + word(1700000000) +
		word(160) + word(1) +
		word(3) + padRight(msgHex)
	data := "0x" + word(32) + word(1) + word(32) + tupleFrame

	srv := contractServer(t, map[string]string{
		selectorFor(t, "getDonations") + word(1): data,
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	donations, err := c.Donations(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, donations, 1)

	d := donations[0]
	assert.Equal(t, donorAddr, d.Donor)
	assert.Equal(t, "500000000000000000", d.AmountWei)
	assert.Equal(t, "0.5", d.AmountEther)
	assert.Equal(t, "gm!", d.Message)
	assert.True(t, d.Anonymous)
}

func TestDonationsEmpty(t *testing.T) {
	srv := contractServer(t, map[string]string{
		selectorFor(t, "getDonations") + word(1): "0x" + word(32) + word(0),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	donations, err := c.Donations(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, donations)
}

func TestCampaignsByCreator(t *testing.T) {
	srv := contractServer(t, map[string]string{
		selectorFor(t, "getCampaignsByCreator") + addrWord(creatorAddr): "0x" + word(32) + word(2) + word(1) + word(2),
		selectorFor(t, "campaigns") + word(1):                           campaignResult(1, "A", "a", 1000000000000000000, 0, 1),
		selectorFor(t, "campaigns") + word(2):                           campaignResult(2, "B", "b", 2000000000000000000, 0, 0),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	campaigns, err := c.CampaignsByCreator(context.Background(), creatorAddr)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, "A", campaigns[0].Title)
	assert.Equal(t, "B", campaigns[1].Title)
	assert.False(t, campaigns[1].Active)
}

func TestCampaignCount(t *testing.T) {
	srv := contractServer(t, map[string]string{
		selectorFor(t, "campaignCount"): "0x" + word(17),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	count, err := c.CampaignCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(17), count)
}
