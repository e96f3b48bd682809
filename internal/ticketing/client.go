// Package ticketing wraps the EventTicket contract: event creation,
// ticket type creation, and ticket purchase, plus the read paths the
// listing surfaces need.
package ticketing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/contract"
	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/units"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client drives the EventTicket contract. Reads work without a wallet;
// writes require a connected session with a signer.
type Client struct {
	session *session.Manager
	factory *contract.Factory
	evm     *chain.EVMClient
	mirror  *mirror.Store // optional; nil disables metadata enrichment
	notify  ui.Notifier
	log     *zap.Logger
}

// NewClient wires a ticketing client. store may be nil.
func NewClient(sess *session.Manager, factory *contract.Factory, evm *chain.EVMClient, store *mirror.Store, notify ui.Notifier) *Client {
	return &Client{
		session: sess,
		factory: factory,
		evm:     evm,
		mirror:  store,
		notify:  notify,
		log:     zap.L(),
	}
}

// readHandle binds a read-only handle; no session required.
func (c *Client) readHandle() (*contract.Handle, error) {
	return c.factory.Bind(contract.EventTicket, &contract.Target{Client: c.evm})
}

// writeHandle binds a signing handle, or notifies and reports false
// when no wallet is connected. Callers return their zero value on
// false without treating it as an error.
func (c *Client) writeHandle(action string) (*contract.Handle, bool) {
	sess := c.session.Session()
	signer := c.session.Signer()
	if !sess.Connected() || signer == nil {
		c.notify.Warn("Wallet not connected", "Connect a wallet to "+action+".")
		return nil, false
	}
	h, err := c.factory.Bind(contract.EventTicket, &contract.Target{
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

// CreateEventParams describes a new event. Category, BannerURL, and
// Featured live only in the metadata mirror; the chain stores the rest.
type CreateEventParams struct {
	Name        string
	Description string
	Start       time.Time
	End         time.Time
	Category    string
	BannerURL   string
	Featured    bool
}

// CreateEvent creates an event on chain and mirrors its metadata.
// Returns the new event id, or ("", nil) when no wallet is connected.
func (c *Client) CreateEvent(ctx context.Context, p CreateEventParams) (string, error) {
	h, ok := c.writeHandle("create an event")
	if !ok {
		return "", nil
	}

	start := strconv.FormatInt(units.ToUnix(p.Start), 10)
	end := strconv.FormatInt(units.ToUnix(p.End), 10)
	sub, err := h.Submit(ctx, "createEvent", nil, "EventCreated", "eventId",
		p.Name, p.Description, start, end)
	if err != nil {
		c.notify.Failure("Event creation failed", err.Error())
		return "", err
	}

	c.mirrorEvent(ctx, sub.ID, p)
	c.notify.Success("Event created", "id "+sub.ID+" · tx "+sub.TxHash)
	return sub.ID, nil
}

// mirrorEvent writes event metadata off-chain. Best effort: the chain
// write already happened, so a mirror failure only warns.
func (c *Client) mirrorEvent(ctx context.Context, id string, p CreateEventParams) {
	if c.mirror == nil || id == "" {
		return
	}
	err := c.mirror.Write(ctx, mirror.Document{
		Collection: mirror.CollectionEvents,
		ID:         id,
		Category:   p.Category,
		Creator:    c.session.Session().Address,
		Featured:   p.Featured,
		Published:  true,
		StartDate:  p.Start,
		Data: map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"bannerUrl":   p.BannerURL,
		},
	})
	if err != nil {
		c.log.Warn("event metadata mirror write failed", zap.String("event_id", id), zap.Error(err))
		c.notify.Warn("Metadata not mirrored", "Event "+id+" is on chain but its metadata could not be saved locally.")
	}
}

// CreateTicketType adds a ticket type to an event. priceEth is a
// human decimal ETH amount. Returns the new ticket type id, or
// ("", nil) when no wallet is connected.
func (c *Client) CreateTicketType(ctx context.Context, eventID, name, description, priceEth string, supply uint64) (string, error) {
	h, ok := c.writeHandle("create a ticket type")
	if !ok {
		return "", nil
	}

	price, err := units.ParseEther(priceEth)
	if err != nil {
		c.notify.Failure("Invalid price", err.Error())
		return "", err
	}

	sub, err := h.Submit(ctx, "createTicketType", nil, "TicketTypeCreated", "ticketTypeId",
		eventID, name, description, price.String(), fmt.Sprintf("%d", supply))
	if err != nil {
		c.notify.Failure("Ticket type creation failed", err.Error())
		return "", err
	}

	c.notify.Success("Ticket type created", "id "+sub.ID+" · tx "+sub.TxHash)
	return sub.ID, nil
}

// PurchaseTicket buys one ticket of the given type, paying the on-chain
// price. A metadata document is minted in the mirror first and its URI
// passed as the token URI. Returns the new token id, or ("", nil) when
// no wallet is connected.
func (c *Client) PurchaseTicket(ctx context.Context, ticketTypeID string) (string, error) {
	h, ok := c.writeHandle("buy a ticket")
	if !ok {
		return "", nil
	}

	tt, err := c.TicketType(ctx, ticketTypeID)
	if err != nil {
		c.notify.Failure("Ticket type lookup failed", err.Error())
		return "", err
	}

	price, err := units.ParseWei(tt.PriceWei)
	if err != nil {
		return "", fmt.Errorf("bad on-chain price %q: %w", tt.PriceWei, err)
	}

	tokenURI := c.mintTicketURI(ctx, ticketTypeID, tt.EventID)

	sub, err := h.Submit(ctx, "purchaseTicket", price, "TicketPurchased", "tokenId",
		ticketTypeID, tokenURI)
	if err != nil {
		c.notify.Failure("Purchase failed", err.Error())
		return "", err
	}

	c.notify.Success("Ticket purchased", "token "+sub.ID+" · tx "+sub.TxHash)
	return sub.ID, nil
}

// mintTicketURI creates the off-chain ticket metadata document and
// returns its URI. Falls back to an empty URI when the mirror is
// unavailable; the purchase proceeds either way.
func (c *Client) mintTicketURI(ctx context.Context, ticketTypeID, eventID string) string {
	if c.mirror == nil {
		return ""
	}
	id := uuid.New().String()
	err := c.mirror.Write(ctx, mirror.Document{
		Collection: mirror.CollectionTickets,
		ID:         id,
		Creator:    c.session.Session().Address,
		Data: map[string]interface{}{
			"ticketTypeId": ticketTypeID,
			"eventId":      eventID,
			"purchasedAt":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		c.log.Warn("ticket metadata mint failed", zap.String("ticket_type_id", ticketTypeID), zap.Error(err))
		return ""
	}
	return "mirror://tickets/" + id
}
