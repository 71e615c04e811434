package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
	"crowdfund/internal/ledger"
	"crowdfund/internal/sqlinline"
)

func newStatusApp(rows map[string]stubRow) http.Handler {
	app := &App{
		Cfg:    testConfig(),
		Logger: zerolog.Nop(),
		Ledger: ledger.New(nil, &stubSQL{rows: rows}, zerolog.Nop()),
	}
	r := chi.NewRouter()
	r.Get("/v1/payments/{view}/{donationID}", app.PaymentStatus)
	return r
}

func TestPaymentStatusFailed(t *testing.T) {
	h := newStatusApp(map[string]stubRow{
		sqlinline.QSelectDonationByID: rowOf(
			"don-1", "cam-1", "rew-1", "Ada", "Obi", "ada@example.com", "",
			int64(5000_00), "paystack", "", "", string(domain.DonationPending),
			false, false, time.Now(),
		),
		sqlinline.QSelectCampaignByID: campaignRow(),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payments/failed/don-1", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		RetryURL string `json:"retry_url"`
		Donation struct {
			AmountFormatted string `json:"amount_formatted"`
		} `json:"donation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Contains(t, resp.Message, "not been charged twice")
	assert.Equal(t, "₦5,000.00", resp.Donation.AmountFormatted)

	// the retry link resubmits the same campaign, amount, gateway and reward
	assert.Contains(t, resp.RetryURL, "https://app.example.com/campaigns/clean-water?")
	assert.Contains(t, resp.RetryURL, "amount=5000")
	assert.Contains(t, resp.RetryURL, "gateway=paystack")
	assert.Contains(t, resp.RetryURL, "reward_id=rew-1")
}

func TestPaymentStatusCancelled(t *testing.T) {
	h := newStatusApp(map[string]stubRow{
		sqlinline.QSelectDonationByID: rowOf(
			"don-1", "cam-1", "", "Ada", "Obi", "ada@example.com", "",
			int64(5000_00), "monnify", "", "", string(domain.DonationPending),
			false, false, time.Now(),
		),
		sqlinline.QSelectCampaignByID: campaignRow(),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payments/cancelled/don-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status   string `json:"status"`
		RetryURL string `json:"retry_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
	assert.NotContains(t, resp.RetryURL, "reward_id", "no reward on this donation")
}

func TestPaymentStatusUnknownView(t *testing.T) {
	h := newStatusApp(map[string]stubRow{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payments/refunded/don-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentStatusUnknownDonation(t *testing.T) {
	h := newStatusApp(map[string]stubRow{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payments/failed/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
