package donation

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
	"crowdfund/internal/gateway"
)

type fakeStore struct {
	campaign  *domain.Campaign
	reward    *domain.Reward
	donations []*domain.Donation
	comments  []*domain.Comment
}

func (s *fakeStore) CampaignBySlug(_ context.Context, slug string) (*domain.Campaign, error) {
	if s.campaign == nil || s.campaign.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.campaign, nil
}

func (s *fakeStore) RewardByID(_ context.Context, id string) (*domain.Reward, error) {
	if s.reward == nil || s.reward.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.reward, nil
}

func (s *fakeStore) CreateDonation(_ context.Context, d *domain.Donation) error {
	d.ID = "don-1"
	d.Status = domain.DonationPending
	s.donations = append(s.donations, d)
	return nil
}

func (s *fakeStore) CreateComment(_ context.Context, c *domain.Comment) (string, error) {
	c.ID = "com-1"
	s.comments = append(s.comments, c)
	return c.ID, nil
}

type fakeGateway struct {
	name      domain.GatewayName
	initCalls []gateway.InitializeRequest
	initErr   error
}

func (g *fakeGateway) Name() domain.GatewayName { return g.name }

func (g *fakeGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.initCalls = append(g.initCalls, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.InitializeResult{AuthorizationURL: "https://pay.example.com/don-1"}, nil
}

func (g *fakeGateway) Verify(context.Context, string) (*gateway.TransactionRecord, error) {
	return nil, domain.ErrGatewayUnavailable
}

func (g *fakeGateway) ParseCallback(url.Values) (*gateway.Callback, error) {
	return nil, domain.ErrMalformedCallback
}

var testLimits = Limits{
	MinInt:   100_00,
	MaxInt:   10_000_000_00,
	FeeInt:   50_00,
	Currency: domain.Currency{Code: "NGN", Symbol: "₦", Precision: 2},
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeStore, *fakeGateway) {
	t.Helper()
	store := &fakeStore{
		campaign: &domain.Campaign{ID: "cam-1", Slug: "clean-water", Status: "active"},
	}
	gw := &fakeGateway{name: domain.GatewayPaystack}
	o := NewOrchestrator(store, gateway.NewRegistry(gw), testLimits, zerolog.Nop())
	return o, store, gw
}

func validInput() SubmitInput {
	return SubmitInput{
		CampaignSlug: "clean-water",
		FirstName:    "Ada",
		LastName:     "Obi",
		Email:        "ada@example.com",
		AmountInt:    5000_00,
		Gateway:      "paystack",
	}
}

func TestSubmitChargesFeeButStoresAmount(t *testing.T) {
	o, store, gw := newTestOrchestrator(t)

	res, err := o.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "don-1", res.DonationID)
	assert.Equal(t, "https://pay.example.com/don-1", res.AuthorizationURL)

	require.Len(t, gw.initCalls, 1)
	assert.Equal(t, int64(5050_00), gw.initCalls[0].AmountInt, "gateway is charged amount plus fee")
	require.Len(t, store.donations, 1)
	assert.Equal(t, int64(5000_00), store.donations[0].AmountInt, "ledger never records the fee")
	assert.Equal(t, domain.DonationPending, store.donations[0].Status)
}

func TestSubmitRecordsComment(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)

	in := validInput()
	in.Comment = "  Good luck!  "
	res, err := o.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "com-1", res.CommentID)
	require.Len(t, store.comments, 1)
	assert.Equal(t, "Good luck!", store.comments[0].Body)
	assert.Equal(t, "cam-1", store.comments[0].CampaignID)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
		field  string
		want   string
	}{
		{"missing first name", func(in *SubmitInput) { in.FirstName = " " }, "first_name", "first name is required"},
		{"bad email", func(in *SubmitInput) { in.Email = "not-an-email" }, "email", "a valid email address is required"},
		{"below minimum", func(in *SubmitInput) { in.AmountInt = 50_00 }, "amount", "the minimum donation is ₦100.00"},
		{"above maximum", func(in *SubmitInput) { in.AmountInt = 20_000_000_00 }, "amount", "the maximum donation is ₦10,000,000.00"},
		{"unknown gateway", func(in *SubmitInput) { in.Gateway = "cash" }, "gateway", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, _, gw := newTestOrchestrator(t)
			in := validInput()
			tc.mutate(&in)

			_, err := o.Submit(context.Background(), in)
			verr, ok := domain.IsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			require.Contains(t, verr.Fields, tc.field)
			if tc.want != "" {
				assert.Contains(t, verr.Fields[tc.field][0], tc.want)
			}
			assert.Empty(t, gw.initCalls, "a rejected form must never reach the gateway")
		})
	}
}

func TestSubmitClosedCampaign(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name   string
		mutate func(*domain.Campaign)
	}{
		{"complete", func(c *domain.Campaign) { c.IsComplete = true }},
		{"expired", func(c *domain.Campaign) { c.ExpiresAt = &past }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, store, gw := newTestOrchestrator(t)
			tc.mutate(store.campaign)

			_, err := o.Submit(context.Background(), validInput())
			verr, ok := domain.IsValidation(err)
			require.True(t, ok)
			assert.Contains(t, verr.Fields, "campaign")
			assert.Empty(t, gw.initCalls)
			assert.Empty(t, store.donations)
		})
	}
}

func TestSubmitRewardMinimum(t *testing.T) {
	o, store, gw := newTestOrchestrator(t)
	store.reward = &domain.Reward{ID: "rew-1", CampaignID: "cam-1", AmountInt: 10_000_00}

	in := validInput()
	in.RewardID = "rew-1"
	in.AmountInt = 5000_00

	_, err := o.Submit(context.Background(), in)
	verr, ok := domain.IsValidation(err)
	require.True(t, ok)
	require.Contains(t, verr.Fields, "amount")
	assert.Contains(t, verr.Fields["amount"][0], "₦10,000.00")
	assert.Empty(t, gw.initCalls)
}

func TestSubmitRewardWrongCampaign(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)
	store.reward = &domain.Reward{ID: "rew-1", CampaignID: "cam-other", AmountInt: 100_00}

	in := validInput()
	in.RewardID = "rew-1"

	_, err := o.Submit(context.Background(), in)
	verr, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "reward_id")
}

func TestSubmitShippingRequired(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)
	store.reward = &domain.Reward{ID: "rew-1", CampaignID: "cam-1", AmountInt: 100_00, RequiresShipping: true}

	in := validInput()
	in.RewardID = "rew-1"
	in.ShippingCountry = "NG"
	in.ShippingState = "Lagos"

	_, err := o.Submit(context.Background(), in)
	verr, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "shipping_city")
	assert.Contains(t, verr.Fields, "shipping_address")
	assert.NotContains(t, verr.Fields, "shipping_country")

	in.ShippingCity = "Ikeja"
	in.ShippingAddress = "1 Allen Avenue"
	res, err := o.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, res.DonationID)
	assert.True(t, store.donations[len(store.donations)-1].RequiresShipping)
}

func TestSubmitGatewayFailureLeavesPendingRow(t *testing.T) {
	o, store, gw := newTestOrchestrator(t)
	gw.initErr = domain.ErrGatewayUnavailable

	_, err := o.Submit(context.Background(), validInput())
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.Len(t, store.donations, 1, "the pending row survives so the donor can retry")
	assert.Equal(t, domain.DonationPending, store.donations[0].Status)
}
