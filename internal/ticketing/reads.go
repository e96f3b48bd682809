package ticketing

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/units"
	"go.uber.org/zap"
)

// readWorkers bounds per-id fan-out so a long id list does not flood
// the RPC endpoint.
const readWorkers = 4

const placeholderBanner = "/placeholder.svg"

// Event is one on-chain event joined with its mirrored metadata.
type Event struct {
	ID          string
	Name        string
	Description string
	Start       time.Time
	End         time.Time
	Creator     string
	Active      bool

	// Mirror-only fields. Empty or placeholder when not mirrored.
	Category  string
	BannerURL string
}

// TicketType is one ticket tier of an event.
type TicketType struct {
	ID          string
	EventID     string
	Name        string
	Description string
	PriceWei    string
	PriceEther  string
	Supply      uint64
	Sold        uint64
	Active      bool
}

// Ticket is one issued ticket NFT.
type Ticket struct {
	TokenID      string
	EventID      string
	TicketTypeID string
	Owner        string
	Used         bool
	PurchasedAt  time.Time
	TokenURI     string
}

// Event fetches one event by id and enriches it from the mirror.
func (c *Client) Event(ctx context.Context, id string) (*Event, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "events", id)
	if err != nil {
		return nil, err
	}
	if len(outs) < 7 {
		return nil, fmt.Errorf("short events() result for id %s", id)
	}

	ev := &Event{
		ID:          outStr(outs, 0),
		Name:        outStr(outs, 1),
		Description: outStr(outs, 2),
		Start:       units.FromUnixString(outStr(outs, 3)),
		End:         units.FromUnixString(outStr(outs, 4)),
		Creator:     outStr(outs, 5),
		Active:      outStr(outs, 6) == "true",
		BannerURL:   placeholderBanner,
	}
	c.enrichEvent(ctx, ev)
	return ev, nil
}

func (c *Client) enrichEvent(ctx context.Context, ev *Event) {
	if c.mirror == nil {
		return
	}
	doc, err := c.mirror.ReadByID(ctx, mirror.CollectionEvents, ev.ID)
	if err != nil {
		c.log.Warn("event mirror read failed", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	if doc == nil {
		return
	}
	ev.Category = doc.Category
	if banner, ok := doc.Data["bannerUrl"].(string); ok && banner != "" {
		ev.BannerURL = banner
	}
}

// TicketType fetches one ticket type by id.
func (c *Client) TicketType(ctx context.Context, id string) (*TicketType, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "ticketTypes", id)
	if err != nil {
		return nil, err
	}
	if len(outs) < 8 {
		return nil, fmt.Errorf("short ticketTypes() result for id %s", id)
	}

	priceWei := outStr(outs, 4)
	supply, err := strconv.ParseUint(outStr(outs, 5), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad supply for ticket type %s: %w", id, err)
	}
	sold, err := strconv.ParseUint(outStr(outs, 6), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad sold count for ticket type %s: %w", id, err)
	}

	priceEther := ""
	if wei, perr := units.ParseWei(priceWei); perr == nil {
		priceEther = units.FormatEther(wei)
	}

	return &TicketType{
		ID:          outStr(outs, 0),
		EventID:     outStr(outs, 1),
		Name:        outStr(outs, 2),
		Description: outStr(outs, 3),
		PriceWei:    priceWei,
		PriceEther:  priceEther,
		Supply:      supply,
		Sold:        sold,
		Active:      outStr(outs, 7) == "true",
	}, nil
}

// Ticket fetches one issued ticket by token id, including its URI.
func (c *Client) Ticket(ctx context.Context, tokenID string) (*Ticket, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "tickets", tokenID)
	if err != nil {
		return nil, err
	}
	if len(outs) < 5 {
		return nil, fmt.Errorf("short tickets() result for token %s", tokenID)
	}

	t := &Ticket{
		TokenID:      tokenID,
		EventID:      outStr(outs, 0),
		TicketTypeID: outStr(outs, 1),
		Owner:        outStr(outs, 2),
		Used:         outStr(outs, 3) == "true",
		PurchasedAt:  units.FromUnixString(outStr(outs, 4)),
	}

	// tokenURI is a separate call; a failure here is not fatal.
	if uriOuts, err := h.Call(ctx, "tokenURI", tokenID); err == nil {
		t.TokenURI = outStr(uriOuts, 0)
	} else {
		c.log.Warn("tokenURI fetch failed", zap.String("token_id", tokenID), zap.Error(err))
	}
	return t, nil
}

// EventsByCreator lists the events created by an address, in the order
// the contract reports their ids. Events that fail to load are logged
// and skipped.
func (c *Client) EventsByCreator(ctx context.Context, creator string) ([]Event, error) {
	ids, err := c.idList(ctx, "getEventsByCreator", creator)
	if err != nil {
		return nil, err
	}
	return fetchOrdered(ctx, c.log, "event", ids, func(ctx context.Context, id string) (*Event, error) {
		return c.Event(ctx, id)
	}), nil
}

// TicketTypesByEvent lists the ticket types of an event.
func (c *Client) TicketTypesByEvent(ctx context.Context, eventID string) ([]TicketType, error) {
	ids, err := c.idList(ctx, "getTicketTypesByEvent", eventID)
	if err != nil {
		return nil, err
	}
	return fetchOrdered(ctx, c.log, "ticket type", ids, func(ctx context.Context, id string) (*TicketType, error) {
		return c.TicketType(ctx, id)
	}), nil
}

// TicketsByOwner lists the tickets held by an address, token URIs
// included.
func (c *Client) TicketsByOwner(ctx context.Context, owner string) ([]Ticket, error) {
	ids, err := c.idList(ctx, "getTicketsByOwner", owner)
	if err != nil {
		return nil, err
	}
	return fetchOrdered(ctx, c.log, "ticket", ids, func(ctx context.Context, id string) (*Ticket, error) {
		return c.Ticket(ctx, id)
	}), nil
}

// idList calls a uint256[]-returning view and flattens the result.
func (c *Client) idList(ctx context.Context, funcName string, arg string) ([]string, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, funcName, arg)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, nil
	}
	list, ok := outs[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected %s result shape", funcName)
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// fetchOrdered loads every id with a bounded worker pool. Failed items
// are logged and dropped; survivors keep the id-list order.
func fetchOrdered[T any](ctx context.Context, log *zap.Logger, what string, ids []string, fetch func(context.Context, string) (*T, error)) []T {
	results := make([]*T, len(ids))
	sem := make(chan struct{}, readWorkers)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item, err := fetch(ctx, id)
			if err != nil {
				log.Warn("skipping unreadable "+what, zap.String("id", id), zap.Error(err))
				return
			}
			results[i] = item
		}(i, id)
	}
	wg.Wait()

	out := make([]T, 0, len(ids))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// outStr extracts the i-th output as a string, tolerating short or
// mis-shaped results.
func outStr(outs []interface{}, i int) string {
	if i < 0 || i >= len(outs) {
		return ""
	}
	s, _ := outs[i].(string)
	return s
}
