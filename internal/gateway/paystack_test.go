package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
)

func TestPaystackInitialize(t *testing.T) {
	var got paystackInitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"authorization_url": "https://checkout.paystack.com/abc"},
		})
	}))
	defer srv.Close()

	p := NewPaystack(PaystackOptions{
		SecretKey:   "sk_test_abc",
		BaseURL:     srv.URL,
		CallbackURL: "https://api.example.com/v1/payments/callback/paystack",
		CancelURL:   "https://app.example.com/payments/cancelled",
	})

	res, err := p.Initialize(context.Background(), InitializeRequest{
		AmountInt:  505000,
		DonationID: "don-1",
		CommentID:  "com-1",
		Email:      "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)

	// Paystack works in minor units: no conversion on the way out.
	assert.Equal(t, int64(505000), got.Amount)
	assert.Equal(t, "don-1", got.Metadata.DonationID)
	assert.Equal(t, "com-1", got.Metadata.CommentID)
	assert.Equal(t, "https://app.example.com/payments/cancelled/don-1", got.Metadata.CancelAction)
	assert.Equal(t, "https://api.example.com/v1/payments/callback/paystack", got.CallbackURL)
}

func TestPaystackInitializeUnconfigured(t *testing.T) {
	p := NewPaystack(PaystackOptions{})
	_, err := p.Initialize(context.Background(), InitializeRequest{AmountInt: 1000})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPaystackInitializeInvalidAmount(t *testing.T) {
	p := NewPaystack(PaystackOptions{SecretKey: "sk"})
	_, err := p.Initialize(context.Background(), InitializeRequest{AmountInt: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPaystackVerify(t *testing.T) {
	tests := []struct {
		name          string
		topStatus     bool
		dataStatus    string
		wantSucceeded bool
	}{
		{"both success", true, "success", true},
		{"transaction failed", true, "failed", false},
		{"request-level failure", false, "success", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": tc.topStatus,
					"data": map[string]any{
						"status":    tc.dataStatus,
						"reference": "ref-1",
						"channel":   "card",
						"amount":    505000,
						"metadata":  map[string]any{"donation_id": "don-1", "comment_id": "com-1"},
					},
				})
			}))
			defer srv.Close()

			p := NewPaystack(PaystackOptions{SecretKey: "sk", BaseURL: srv.URL})
			rec, err := p.Verify(context.Background(), "ref-1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantSucceeded, rec.Succeeded)
			assert.Equal(t, "ref-1", rec.Reference)
			assert.Equal(t, "card", rec.Channel)
			assert.Equal(t, int64(505000), rec.AmountInt)
			assert.Equal(t, "don-1", rec.DonationID)
		})
	}
}

func TestPaystackVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPaystack(PaystackOptions{SecretKey: "sk", BaseURL: srv.URL})
	_, err := p.Verify(context.Background(), "ref-1")
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestPaystackParseCallback(t *testing.T) {
	p := NewPaystack(PaystackOptions{SecretKey: "sk"})

	cb, err := p.ParseCallback(url.Values{"reference": {"ref-1"}})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", cb.Reference)
	assert.False(t, cb.Cancelled)

	cb, err = p.ParseCallback(url.Values{"trxref": {"ref-2"}})
	require.NoError(t, err)
	assert.Equal(t, "ref-2", cb.Reference)

	_, err = p.ParseCallback(url.Values{})
	assert.ErrorIs(t, err, domain.ErrMalformedCallback)
}

func TestPaystackFetchBanksCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/bank", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   []map[string]string{{"code": "058", "name": "GTBank"}},
		})
	}))
	defer srv.Close()

	p := NewPaystack(PaystackOptions{SecretKey: "sk", BaseURL: srv.URL})
	for i := 0; i < 3; i++ {
		banks, err := p.FetchBanks(context.Background())
		require.NoError(t, err)
		require.Len(t, banks, 1)
		assert.Equal(t, "058", banks[0].Code)
	}
	assert.Equal(t, 1, calls, "bank list should be served from cache after the first call")
}

func TestPaystackResolveAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bank/resolve", r.URL.Path)
		assert.Equal(t, "0123456789", r.URL.Query().Get("account_number"))
		assert.Equal(t, "058", r.URL.Query().Get("bank_code"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]string{"account_number": "0123456789", "account_name": "ADA OBI"},
		})
	}))
	defer srv.Close()

	p := NewPaystack(PaystackOptions{SecretKey: "sk", BaseURL: srv.URL})
	account, err := p.ResolveAccount(context.Background(), "0123456789", "058")
	require.NoError(t, err)
	assert.Equal(t, "ADA OBI", account.AccountName)
}
