// Package funding wraps the Fundraising contract: campaign creation,
// donations, and withdrawal, plus the read paths the campaign listing
// surfaces need.
package funding

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/blocktix/btx/internal/chain"
	"github.com/blocktix/btx/internal/contract"
	"github.com/blocktix/btx/internal/mirror"
	"github.com/blocktix/btx/internal/session"
	"github.com/blocktix/btx/internal/ui"
	"github.com/blocktix/btx/internal/units"
	"go.uber.org/zap"
)

const readWorkers = 4

// Campaign is one on-chain campaign joined with its mirrored metadata.
type Campaign struct {
	ID             string
	Title          string
	Description    string
	GoalWei        string
	GoalEther      string
	RaisedWei      string
	RaisedEther    string
	Start          time.Time
	End            time.Time
	Creator        string
	Active         bool
	FundsWithdrawn bool

	// Mirror-only. Empty when not mirrored.
	Category string
}

// Donation is one recorded donation. Donor is blanked for anonymous
// donations at display time, not here: the chain stores it either way.
type Donation struct {
	Donor       string
	AmountWei   string
	AmountEther string
	At          time.Time
	Message     string
	Anonymous   bool
}

// Client drives the Fundraising contract.
type Client struct {
	session *session.Manager
	factory *contract.Factory
	evm     *chain.EVMClient
	mirror  *mirror.Store // optional
	notify  ui.Notifier
	log     *zap.Logger
}

// NewClient wires a fundraising client. store may be nil.
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

func (c *Client) readHandle() (*contract.Handle, error) {
	return c.factory.Bind(contract.Fundraising, &contract.Target{Client: c.evm})
}

func (c *Client) writeHandle(action string) (*contract.Handle, bool) {
	sess := c.session.Session()
	signer := c.session.Signer()
	if !sess.Connected() || signer == nil {
		c.notify.Warn("Wallet not connected", "Connect a wallet to "+action+".")
		return nil, false
	}
	h, err := c.factory.Bind(contract.Fundraising, &contract.Target{
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

// CreateCampaignParams describes a new campaign. Category lives only
// in the metadata mirror.
type CreateCampaignParams struct {
	Title       string
	Description string
	GoalEth     string
	Start       time.Time
	End         time.Time
	Category    string
}

// CreateCampaign creates a campaign on chain and mirrors its metadata.
// Returns the new campaign id, or ("", nil) when no wallet is
// connected.
func (c *Client) CreateCampaign(ctx context.Context, p CreateCampaignParams) (string, error) {
	h, ok := c.writeHandle("create a campaign")
	if !ok {
		return "", nil
	}

	goal, err := units.ParseEther(p.GoalEth)
	if err != nil {
		c.notify.Failure("Invalid goal", err.Error())
		return "", err
	}

	start := strconv.FormatInt(units.ToUnix(p.Start), 10)
	end := strconv.FormatInt(units.ToUnix(p.End), 10)
	sub, err := h.Submit(ctx, "createCampaign", nil, "CampaignCreated", "campaignId",
		p.Title, p.Description, goal.String(), start, end)
	if err != nil {
		c.notify.Failure("Campaign creation failed", err.Error())
		return "", err
	}

	c.mirrorCampaign(ctx, sub.ID, p)
	c.notify.Success("Campaign created", "id "+sub.ID+" · tx "+sub.TxHash)
	return sub.ID, nil
}

func (c *Client) mirrorCampaign(ctx context.Context, id string, p CreateCampaignParams) {
	if c.mirror == nil || id == "" {
		return
	}
	err := c.mirror.Write(ctx, mirror.Document{
		Collection: mirror.CollectionCampaigns,
		ID:         id,
		Category:   p.Category,
		Creator:    c.session.Session().Address,
		Published:  true,
		StartDate:  p.Start,
		Data: map[string]interface{}{
			"title":       p.Title,
			"description": p.Description,
			"category":    p.Category,
		},
	})
	if err != nil {
		c.log.Warn("campaign metadata mirror write failed", zap.String("campaign_id", id), zap.Error(err))
		c.notify.Warn("Metadata not mirrored", "Campaign "+id+" is on chain but its metadata could not be saved locally.")
	}
}

// Donate sends amountEth to a campaign with an optional message.
// Returns the transaction hash, or ("", nil) when no wallet is
// connected.
func (c *Client) Donate(ctx context.Context, campaignID, amountEth, message string, anonymous bool) (string, error) {
	h, ok := c.writeHandle("donate")
	if !ok {
		return "", nil
	}

	amount, err := units.ParseEther(amountEth)
	if err != nil {
		c.notify.Failure("Invalid amount", err.Error())
		return "", err
	}

	sub, err := h.Submit(ctx, "donate", amount, "DonationReceived", "campaignId",
		campaignID, message, strconv.FormatBool(anonymous))
	if err != nil {
		c.notify.Failure("Donation failed", err.Error())
		return "", err
	}

	c.notify.Success("Donation sent", amountEth+" ETH to campaign "+campaignID+" · tx "+sub.TxHash)
	return sub.TxHash, nil
}

// WithdrawFunds withdraws a finished campaign's balance to its
// creator. Returns the transaction hash, or ("", nil) when no wallet
// is connected.
func (c *Client) WithdrawFunds(ctx context.Context, campaignID string) (string, error) {
	h, ok := c.writeHandle("withdraw funds")
	if !ok {
		return "", nil
	}

	sub, err := h.Submit(ctx, "withdrawFunds", nil, "", "", campaignID)
	if err != nil {
		c.notify.Failure("Withdrawal failed", err.Error())
		return "", err
	}

	c.notify.Success("Funds withdrawn", "campaign "+campaignID+" · tx "+sub.TxHash)
	return sub.TxHash, nil
}

// Campaign fetches one campaign by id and enriches it from the mirror.
func (c *Client) Campaign(ctx context.Context, id string) (*Campaign, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "campaigns", id)
	if err != nil {
		return nil, err
	}
	if len(outs) < 10 {
		return nil, fmt.Errorf("short campaigns() result for id %s", id)
	}

	cp := &Campaign{
		ID:             outStr(outs, 0),
		Title:          outStr(outs, 1),
		Description:    outStr(outs, 2),
		GoalWei:        outStr(outs, 3),
		RaisedWei:      outStr(outs, 4),
		Start:          units.FromUnixString(outStr(outs, 5)),
		End:            units.FromUnixString(outStr(outs, 6)),
		Creator:        outStr(outs, 7),
		Active:         outStr(outs, 8) == "true",
		FundsWithdrawn: outStr(outs, 9) == "true",
	}
	if wei, perr := units.ParseWei(cp.GoalWei); perr == nil {
		cp.GoalEther = units.FormatEther(wei)
	}
	if wei, perr := units.ParseWei(cp.RaisedWei); perr == nil {
		cp.RaisedEther = units.FormatEther(wei)
	}
	c.enrichCampaign(ctx, cp)
	return cp, nil
}

func (c *Client) enrichCampaign(ctx context.Context, cp *Campaign) {
	if c.mirror == nil {
		return
	}
	doc, err := c.mirror.ReadByID(ctx, mirror.CollectionCampaigns, cp.ID)
	if err != nil {
		c.log.Warn("campaign mirror read failed", zap.String("campaign_id", cp.ID), zap.Error(err))
		return
	}
	if doc != nil {
		cp.Category = doc.Category
	}
}

// CampaignsByCreator lists the campaigns created by an address, in the
// order the contract reports their ids. Campaigns that fail to load
// are logged and skipped.
func (c *Client) CampaignsByCreator(ctx context.Context, creator string) ([]Campaign, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "getCampaignsByCreator", creator)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, nil
	}
	list, ok := outs[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected getCampaignsByCreator result shape")
	}

	ids := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}

	results := make([]*Campaign, len(ids))
	sem := make(chan struct{}, readWorkers)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cp, err := c.Campaign(ctx, id)
			if err != nil {
				c.log.Warn("skipping unreadable campaign", zap.String("id", id), zap.Error(err))
				return
			}
			results[i] = cp
		}(i, id)
	}
	wg.Wait()

	campaigns := make([]Campaign, 0, len(ids))
	for _, cp := range results {
		if cp != nil {
			campaigns = append(campaigns, *cp)
		}
	}
	return campaigns, nil
}

// Donations lists the donations made to a campaign.
func (c *Client) Donations(ctx context.Context, campaignID string) ([]Donation, error) {
	h, err := c.readHandle()
	if err != nil {
		return nil, err
	}
	outs, err := h.Call(ctx, "getDonations", campaignID)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, nil
	}
	rows, ok := outs[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected getDonations result shape")
	}

	donations := make([]Donation, 0, len(rows))
	for i, row := range rows {
		fields, ok := row.([]interface{})
		if !ok || len(fields) < 5 {
			c.log.Warn("skipping malformed donation", zap.Int("index", i))
			continue
		}
		amountWei := outStr(fields, 1)
		amountEther := ""
		if wei, perr := units.ParseWei(amountWei); perr == nil {
			amountEther = units.FormatEther(wei)
		}
		donations = append(donations, Donation{
			Donor:       outStr(fields, 0),
			AmountWei:   amountWei,
			AmountEther: amountEther,
			At:          units.FromUnixString(outStr(fields, 2)),
			Message:     outStr(fields, 3),
			Anonymous:   outStr(fields, 4) == "true",
		})
	}
	return donations, nil
}

// CampaignCount returns the total number of campaigns ever created.
func (c *Client) CampaignCount(ctx context.Context) (uint64, error) {
	h, err := c.readHandle()
	if err != nil {
		return 0, err
	}
	outs, err := h.Call(ctx, "campaignCount")
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseUint(outStr(outs, 0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad campaign count %q: %w", outStr(outs, 0), err)
	}
	return count, nil
}

func outStr(outs []interface{}, i int) string {
	if i < 0 || i >= len(outs) {
		return ""
	}
	s, _ := outs[i].(string)
	return s
}
