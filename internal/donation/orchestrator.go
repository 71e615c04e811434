// Package donation drives the donation lifecycle: the orchestrator validates
// and opens a charge with the donor's chosen gateway, the reconciler settles
// the outcome when the provider redirects back.
package donation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/gateway"
)

// Store is the ledger surface the orchestrator needs.
type Store interface {
	CampaignBySlug(ctx context.Context, slug string) (*domain.Campaign, error)
	RewardByID(ctx context.Context, id string) (*domain.Reward, error)
	CreateDonation(ctx context.Context, d *domain.Donation) error
	CreateComment(ctx context.Context, c *domain.Comment) (string, error)
}

// Limits bound the accepted donation amount and name the fixed fee charged on
// top of it. All values are minor units.
type Limits struct {
	MinInt   int64
	MaxInt   int64
	FeeInt   int64
	Currency domain.Currency
}

// Orchestrator turns a validated donation form into a pending ledger row and a
// provider authorization URL.
type Orchestrator struct {
	store    Store
	gateways *gateway.Registry
	limits   Limits
	log      zerolog.Logger
}

func NewOrchestrator(store Store, gateways *gateway.Registry, limits Limits, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: store, gateways: gateways, limits: limits, log: log}
}

// SubmitInput is the donation form. AmountInt is the donor's chosen amount in
// minor units, before the platform fee.
type SubmitInput struct {
	CampaignSlug string
	RewardID     string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	AmountInt    int64
	Gateway      string
	Anonymous    bool
	Comment      string

	ShippingCountry    string
	ShippingState      string
	ShippingCity       string
	ShippingAddress    string
	ShippingPostalCode string
}

// SubmitResult carries the ids the caller must correlate with the eventual
// gateway callback, plus where to send the donor.
type SubmitResult struct {
	DonationID       string
	CommentID        string
	Gateway          domain.GatewayName
	AuthorizationURL string
}

// Submit validates the form, records a pending donation (and, when the donor
// left a remark, an inactive comment), then asks the selected gateway for an
// authorization URL. The charged total is the donation amount plus the fixed
// fee; only the donation amount is stored, so reconciliation never credits the
// fee to the campaign. A gateway failure leaves the pending row behind for the
// donor to retry.
func (o *Orchestrator) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	gwName, verr := o.validate(in)
	if !verr.Empty() {
		return nil, verr
	}

	campaign, err := o.store.CampaignBySlug(ctx, in.CampaignSlug)
	if err != nil {
		return nil, err
	}
	if err := o.checkCampaign(campaign); err != nil {
		return nil, err
	}

	requiresShipping, err := o.checkReward(ctx, campaign, in, verr)
	if err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	gw, err := o.gateways.Get(gwName)
	if err != nil {
		verr.Add("gateway", err.Error())
		return nil, verr
	}

	d := &domain.Donation{
		CampaignID:         campaign.ID,
		RewardID:           in.RewardID,
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Email:              strings.TrimSpace(in.Email),
		PhoneNumber:        strings.TrimSpace(in.PhoneNumber),
		AmountInt:          in.AmountInt,
		Gateway:            gwName,
		Anonymous:          in.Anonymous,
		RequiresShipping:   requiresShipping,
		ShippingCountry:    in.ShippingCountry,
		ShippingState:      in.ShippingState,
		ShippingCity:       in.ShippingCity,
		ShippingAddress:    in.ShippingAddress,
		ShippingPostalCode: in.ShippingPostalCode,
	}
	if err := o.store.CreateDonation(ctx, d); err != nil {
		return nil, err
	}

	var commentID string
	if body := strings.TrimSpace(in.Comment); body != "" {
		commentID, err = o.store.CreateComment(ctx, &domain.Comment{
			CampaignID: campaign.ID,
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Email:      d.Email,
			Body:       body,
			Anonymous:  in.Anonymous,
		})
		if err != nil {
			return nil, err
		}
	}

	charged := in.AmountInt + o.limits.FeeInt
	res, err := gw.Initialize(ctx, gateway.InitializeRequest{
		AmountInt:  charged,
		DonationID: d.ID,
		CommentID:  commentID,
		Email:      d.Email,
		Phone:      d.PhoneNumber,
		FullName:   d.FirstName + " " + d.LastName,
	})
	if err != nil {
		o.log.Error().Err(err).
			Str("donation_id", d.ID).
			Str("campaign_id", campaign.ID).
			Str("gateway", string(gwName)).
			Msg("gateway initialization failed")
		return nil, fmt.Errorf("initialize %s charge for donation %s: %w", gwName, d.ID, err)
	}

	o.log.Info().
		Str("donation_id", d.ID).
		Str("campaign_id", campaign.ID).
		Str("gateway", string(gwName)).
		Int64("amount_int", in.AmountInt).
		Int64("charged_int", charged).
		Msg("donation initiated")

	return &SubmitResult{
		DonationID:       d.ID,
		CommentID:        commentID,
		Gateway:          gwName,
		AuthorizationURL: res.AuthorizationURL,
	}, nil
}

func (o *Orchestrator) validate(in SubmitInput) (domain.GatewayName, *domain.ValidationError) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.Add("last_name", "last name is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		verr.Add("email", "a valid email address is required")
	}
	if in.AmountInt < o.limits.MinInt {
		verr.Add("amount", fmt.Sprintf("the minimum donation is %s", o.limits.Currency.Format(o.limits.MinInt)))
	}
	if in.AmountInt > o.limits.MaxInt {
		verr.Add("amount", fmt.Sprintf("the maximum donation is %s", o.limits.Currency.Format(o.limits.MaxInt)))
	}
	gwName, err := domain.ParseGatewayName(in.Gateway)
	if err != nil {
		verr.Add("gateway", err.Error())
	}
	return gwName, verr
}

func (o *Orchestrator) checkCampaign(c *domain.Campaign) error {
	if c.IsComplete || c.Expired(nowFunc()) {
		verr := &domain.ValidationError{}
		verr.Add("campaign", "this campaign is no longer accepting donations")
		return verr
	}
	return nil
}

// checkReward enforces the reward's minimum amount and shipping requirement.
// The returned flag records whether the donation must carry a shipping address.
func (o *Orchestrator) checkReward(ctx context.Context, campaign *domain.Campaign, in SubmitInput, verr *domain.ValidationError) (bool, error) {
	if in.RewardID == "" {
		return false, nil
	}
	reward, err := o.store.RewardByID(ctx, in.RewardID)
	if errors.Is(err, domain.ErrNotFound) {
		verr.Add("reward_id", "the selected reward does not exist")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if reward.CampaignID != campaign.ID {
		verr.Add("reward_id", "the selected reward does not belong to this campaign")
		return false, nil
	}
	if in.AmountInt < reward.AmountInt {
		verr.Add("amount", fmt.Sprintf("this reward requires a donation of at least %s", o.limits.Currency.Format(reward.AmountInt)))
	}
	if reward.RequiresShipping {
		for field, value := range map[string]string{
			"shipping_country": in.ShippingCountry,
			"shipping_state":   in.ShippingState,
			"shipping_city":    in.ShippingCity,
			"shipping_address": in.ShippingAddress,
		} {
			if strings.TrimSpace(value) == "" {
				verr.Add(field, "this reward ships a physical item and needs a delivery address")
			}
		}
	}
	return reward.RequiresShipping, nil
}
