package ticketing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

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
	ticketContractAddr = "0x1111111111111111111111111111111111111111"
	ownerAddr          = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
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
	for _, e := range contract.BuiltinABI(contract.EventTicket) {
		if e.Type == "function" && e.Name == funcName {
			return e.Selector()
		}
	}
	t.Fatalf("function %s not in EventTicket ABI", funcName)
	return ""
}

// rpcFail marks a calldata route that should answer with an RPC error.
type rpcFail struct{ msg string }

// contractServer routes eth_call by exact calldata. Unrouted calldata
// and non-eth_call methods answer with an RPC error.
func contractServer(t *testing.T, routes map[string]interface{}) *httptest.Server {
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
		route, ok := routes[call.Data]
		if !ok {
			fail("no route for " + call.Data)
			return
		}
		if f, isFail := route.(rpcFail); isFail {
			fail(f.msg)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  route,
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
		contract.EventTicket: ticketContractAddr,
	})
	rec := &ui.Recorder{}
	return NewClient(sess, factory, chain.NewEVMClient(url), store, rec), rec
}

func testMirror(t *testing.T) *mirror.Store {
	t.Helper()
	s, err := mirror.Open(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// ---------------------------------------------------------------------------
// write guard
// ---------------------------------------------------------------------------

func TestCreateEventRequiresWallet(t *testing.T) {
	c, rec := testClient(t, "http://localhost:8545", nil)

	id, err := c.CreateEvent(context.Background(), CreateEventParams{
		Name:  "Fest",
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, id)
	require.Len(t, rec.Notices, 1)
	assert.Equal(t, "warn", rec.Notices[0].Level)
	assert.Equal(t, "Wallet not connected", rec.Notices[0].Title)
}

func TestCreateTicketTypeRequiresWallet(t *testing.T) {
	c, rec := testClient(t, "http://localhost:8545", nil)

	id, err := c.CreateTicketType(context.Background(), "1", "GA", "", "0.1", 100)
	require.NoError(t, err)
	assert.Empty(t, id)
	require.Len(t, rec.Notices, 1)
	assert.Equal(t, "Wallet not connected", rec.Notices[0].Title)
}

func TestPurchaseTicketRequiresWallet(t *testing.T) {
	c, rec := testClient(t, "http://localhost:8545", nil)

	id, err := c.PurchaseTicket(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, id)
	require.Len(t, rec.Notices, 1)
	assert.Equal(t, "warn", rec.Notices[0].Level)
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

// eventsResult encodes an events(id) return frame: two dynamic strings
// among five static words.
func eventsResult(id int64, name, desc string) string {
	nameHex := fmt.Sprintf("%x", name)
	descHex := fmt.Sprintf("%x", desc)
	head := word(id) + word(224) + word(int64(224+32+len(padRight(nameHex))/2)) +
		word(1700000000) + word(1700003600) + addrWord(ownerAddr) + word(1)
	tail := word(int64(len(name))) + padRight(nameHex) +
		word(int64(len(desc))) + padRight(descHex)
	return "0x" + head + tail
}

func TestEventPlaceholderBanner(t *testing.T) {
	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "events") + word(1): eventsResult(1, "Fest", "desc"),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	ev, err := c.Event(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", ev.ID)
	assert.Equal(t, "Fest", ev.Name)
	assert.Equal(t, "desc", ev.Description)
	assert.Equal(t, ownerAddr, ev.Creator)
	assert.True(t, ev.Active)
	assert.Equal(t, "/placeholder.svg", ev.BannerURL)
	assert.Empty(t, ev.Category)
}

func TestEventEnrichedFromMirror(t *testing.T) {
	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "events") + word(1): eventsResult(1, "Fest", "desc"),
	})
	defer srv.Close()

	store := testMirror(t)
	require.NoError(t, store.Write(context.Background(), mirror.Document{
		Collection: mirror.CollectionEvents,
		ID:         "1",
		Category:   "music",
		Data:       map[string]interface{}{"bannerUrl": "https://cdn.example.com/fest.png"},
	}))

	c, _ := testClient(t, srv.URL, store)
	ev, err := c.Event(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "music", ev.Category)
	assert.Equal(t, "https://cdn.example.com/fest.png", ev.BannerURL)
}

func TestTicketType(t *testing.T) {
	// id, eventId, name, description, price, supply, sold, active
	nameHex := fmt.Sprintf("%x", "GA")
	head := word(2) + word(1) + word(256) + word(320) +
		word(100000000000000000) + word(500) + word(42) + word(1)
	tail := word(2) + padRight(nameHex) + word(0)
	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "ticketTypes") + word(2): "0x" + head + tail,
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	tt, err := c.TicketType(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", tt.ID)
	assert.Equal(t, "1", tt.EventID)
	assert.Equal(t, "GA", tt.Name)
	assert.Equal(t, "100000000000000000", tt.PriceWei)
	assert.Equal(t, "0.1", tt.PriceEther)
	assert.Equal(t, uint64(500), tt.Supply)
	assert.Equal(t, uint64(42), tt.Sold)
	assert.True(t, tt.Active)
}

func TestTicketsByOwnerSkipsUnreadable(t *testing.T) {
	ticketsSel := selectorFor(t, "tickets")
	uriSel := selectorFor(t, "tokenURI")

	uri := "mirror://tickets/abc"
	uriHex := fmt.Sprintf("%x", uri)

	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "getTicketsByOwner") + addrWord(ownerAddr): "0x" + word(32) + word(2) + word(1) + word(2),
		// token 1: eventId, ticketTypeId, owner, used, purchasedAt
		ticketsSel + word(1): "0x" + word(9) + word(3) + addrWord(ownerAddr) + word(0) + word(1700000000),
		ticketsSel + word(2): rpcFail{msg: "execution reverted"},
		uriSel + word(1):     "0x" + word(32) + word(int64(len(uri))) + padRight(uriHex),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	tickets, err := c.TicketsByOwner(context.Background(), ownerAddr)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "1", tickets[0].TokenID)
	assert.Equal(t, "9", tickets[0].EventID)
	assert.Equal(t, "3", tickets[0].TicketTypeID)
	assert.Equal(t, ownerAddr, tickets[0].Owner)
	assert.False(t, tickets[0].Used)
	assert.Equal(t, uri, tickets[0].TokenURI)
}

func TestTicketsByOwnerEmpty(t *testing.T) {
	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "getTicketsByOwner") + addrWord(ownerAddr): "0x" + word(32) + word(0),
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	tickets, err := c.TicketsByOwner(context.Background(), ownerAddr)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketTokenURIFailureNonFatal(t *testing.T) {
	srv := contractServer(t, map[string]interface{}{
		selectorFor(t, "tickets") + word(1): "0x" + word(9) + word(3) + addrWord(ownerAddr) + word(1) + word(1700000000),
		// no tokenURI route: the call errors and is tolerated
	})
	defer srv.Close()

	c, _ := testClient(t, srv.URL, nil)
	ticket, err := c.Ticket(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, ticket.Used)
	assert.Empty(t, ticket.TokenURI)
}
