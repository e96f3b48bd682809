// Package market wraps the TicketMarketplace contract: secondary-market
// listings, purchases, and offers.
package market

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/contract"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/units"
	"go.uber.org/zap"
)

const readWorkers = 4

// Listing is one active marketplace listing.
type Listing struct {
	ListingID  string
	TokenID    string
	Seller     string
	PriceWei   string
	PriceEther string
	ListedAt   time.Time
	Active     bool
}

// Offer is one standing offer on a listed ticket.
type Offer struct {
	Buyer      string
	PriceWei   string
	PriceEther string
	Expires    time.Time
	Active     bool
}

// Client drives the TicketMarketplace contract.
type Client struct {
	session *session.Manager
	factory *contract.Factory
	evm     *chain.EVMClient
	notify  ui.Notifier
	log     *zap.Logger
}

// NewClient wires a marketplace client.
func NewClient(sess *session.Manager, factory *contract.Factory, evm *chain.EVMClient, notify ui.Notifier) *Client {
	return &Client{
		session: sess,
		factory: factory,
		evm:     evm,
		notify:  notify,
		log:     zap.L(),
	}
}

func (c *Client) readHandle() (*contract.Handle, error) {
	return c.factory.Bind(contract.TicketMarketplace, &contract.Target{Client: c.evm})
}

func (c *Client) writeHandle(action string) (*contract.Handle, bool) {
	sess := c.session.Session()
	signer := c.session.Signer()
	if !sess.Connected() || signer == nil {
		c.notify.Warn("Wallet not connected", "Connect a wallet to "+action+".")
		return nil, false
	}
	h, err := c.factory.Bind(contract.TicketMarketplace, &contract.Target{
		Client:  c.evm,
		Signer:  signer,
		ChainID: sess.ChainID,
	})
	if err != nil {
		c.notify.Failure("Contract unavailable", err.Error())
		return nil, false
	}
	return h, true
}

// ListTicket puts a ticket up for sale at priceEth. Returns the
// listing id, or ("", nil) when no wallet is connected.
func (c *Client) ListTicket(ctx context.Context, tokenID, priceEth string) (string, error) {
	h, ok := c.writeHandle("list a ticket")
	if !ok {
		return "", nil
	}

	price, err := units.ParseEther(priceEth)
	if err != nil {
		c.notify.Failure("Invalid price", err.Error())
		return "", err
	}

	sub, err := h.Submit(ctx, "listTicket", nil, "TicketListed", "listingId",
		tokenID, price.String())
	if err != nil {
		c.notify.Failure("Listing failed", err.Error())
		return "", err
	}

	c.notify.Success("Ticket listed", "listing "+sub.ID+" · tx "+sub.TxHash)
	return sub.ID, nil
}

// BuyTicket purchases a listed ticket at its asking price. Returns the
// transaction hash, or ("", nil) when no wallet is connected.
func (c *Client) BuyTicket(ctx context.Context, tokenID string) (string, error) {
	h, ok := c.writeHandle("buy a ticket")
	if !ok {
		return "", nil
	}

	listing, err := c.listingForToken(ctx, tokenID)
	if err != nil {
		c.notify.Failure("Listing lookup failed", err.Error())
		return "", err
	}
	if listing == nil {
		err := fmt.Errorf("token %s is not listed", tokenID)
		c.notify.Failure("Not listed", err.Error())
		return "", err
	}

	price, err := units.ParseWei(listing.PriceWei)
	if err != nil {
		return "", fmt.Errorf("bad on-chain price %q: %w", listing.PriceWei, err)
	}

	sub, err := h.Submit(ctx, "buyTicket", price, "TicketSold", "tokenId", tokenID)
	if err != nil {
		c.notify.Failure("Purchase failed", err.Error())
		return "", err
	}

	c.notify.Success("Ticket bought", "token "+tokenID+" · tx "+sub.TxHash)
	return sub.TxHash, nil
}

// MakeOffer places an offer of amountEth on a ticket, expiring after
// expireDays. Returns the transaction hash, or ("", nil) when no
// wallet is connected.
func (c *Client) MakeOffer(ctx context.Context, tokenID, amountEth string, expireDays int) (string, error) {
	h, ok := c.writeHandle("make an offer")
	if !ok {
		return "", nil
	}

	amount, err := units.ParseEther(amountEth)
	if err != nil {
		c.notify.Failure("Invalid amount", err.Error())
		return "", err
	}
	if expireDays <= 0 {
		expireDays = 7
	}
	expires := time.Now().AddDate(0, 0, expireDays)

	sub, err := h.Submit(ctx, "makeOffer", amount, "OfferMade", "tokenId",
		tokenID, strconv.FormatInt(units.ToUnix(expires), 10))
	if err != nil {
		c.notify.Failure("Offer failed", err.Error())
		return "", err
	}

	c.notify.Success("Offer placed", "token "+tokenID+" · tx "+sub.TxHash)
	return sub.TxHash, nil
}

// CancelListing withdraws a listing. Returns the transaction hash, or
// ("", nil) when no wallet is connected.
func (c *Client) CancelListing(ctx context.Context, tokenID string) (string, error) {
	h, ok := c.writeHandle("cancel a listing")
	if !ok {
		return "", nil
	}

	sub, err := h.Submit(ctx, "cancelListing", nil, "", "", tokenID)
	if err != nil {
		c.notify.Failure("Cancel failed", err.Error())
		return "", err
	}

	c.notify.Success("Listing cancelled", "token "+tokenID+" · tx "+sub.TxHash)
	return sub.TxHash, nil
}

// ActiveListings pages through getActiveListing up to the reported
// count. Unreadable slots are logged and skipped; survivors keep
// index order.
func (c *Client) ActiveListings(ctx context.Context) ([]Listing, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "getActiveListingsCount")
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(outStr(outs, 0))
	if err != nil {
		return nil, fmt.Errorf("bad listing count %q: %w", outStr(outs, 0), err)
	}

	results := make([]*Listing, count)
	sem := make(chan struct{}, readWorkers)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			l, err := c.listingAt(ctx, h, i)
			if err != nil {
				c.log.Warn("skipping unreadable listing", zap.Int("index", i), zap.Error(err))
				return
			}
			results[i] = l
		}(i)
	}
	wg.Wait()

	listings := make([]Listing, 0, count)
	for _, l := range results {
		if l != nil && l.Active {
			listings = append(listings, *l)
		}
	}
	return listings, nil
}

func (c *Client) listingAt(ctx context.Context, h *contract.Handle, index int) (*Listing, error) {
	outs, err := h.Call(ctx, "getActiveListing", strconv.Itoa(index))
	if err != nil {
		return nil, err
	}
	if len(outs) < 6 {
		return nil, fmt.Errorf("short listing result at index %d", index)
	}

	priceWei := outStr(outs, 3)
	priceEther := ""
	if wei, perr := units.ParseWei(priceWei); perr == nil {
		priceEther = units.FormatEther(wei)
	}

	return &Listing{
		ListingID:  outStr(outs, 0),
		TokenID:    outStr(outs, 1),
		Seller:     outStr(outs, 2),
		PriceWei:   priceWei,
		PriceEther: priceEther,
		ListedAt:   units.FromUnixString(outStr(outs, 4)),
		Active:     outStr(outs, 5) == "true",
	}, nil
}

// listingForToken scans active listings for the given token.
func (c *Client) listingForToken(ctx context.Context, tokenID string) (*Listing, error) {
	listings, err := c.ActiveListings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].TokenID == tokenID {
			return &listings[i], nil
		}
	}
	return nil, nil
}

// ActiveOffers returns the standing offers on a ticket.
func (c *Client) ActiveOffers(ctx context.Context, tokenID string) ([]Offer, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "getActiveOffers", tokenID)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, nil
	}
	rows, ok := outs[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected getActiveOffers result shape")
	}

	offers := make([]Offer, 0, len(rows))
	for i, row := range rows {
		fields, ok := row.([]interface{})
		if !ok || len(fields) < 4 {
			c.log.Warn("skipping malformed offer", zap.Int("index", i))
			continue
		}
		priceWei := outStr(fields, 1)
		priceEther := ""
		if wei, perr := units.ParseWei(priceWei); perr == nil {
			priceEther = units.FormatEther(wei)
		}
		offers = append(offers, Offer{
			Buyer:      outStr(fields, 0),
			PriceWei:   priceWei,
			PriceEther: priceEther,
			Expires:    units.FromUnixString(outStr(fields, 2)),
			Active:     outStr(fields, 3) == "true",
		})
	}
	return offers, nil
}

func outStr(outs []interface{}, i int) string {
	if i < 0 || i >= len(outs) {
		return ""
	}
	s, _ := outs[i].(string)
	return s
}
