package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crowdfund/internal/domain"
)

// StripeOptions configures the Stripe Checkout client.
type StripeOptions struct {
	SecretKey  string
	BaseURL    string
	SuccessURL string // Stripe substitutes {CHECKOUT_SESSION_ID} itself
	CancelURL  string // donation id is appended
	AppName    string
	Currency   string
	HTTPClient *http.Client
}

// Stripe charges through hosted Checkout sessions. The Stripe API is
// form-encoded and works in minor units.
type Stripe struct {
	secretKey  string
	baseURL    string
	successURL string
	cancelURL  string
	appName    string
	currency   string
	client     *http.Client
}

func NewStripe(opts StripeOptions) *Stripe {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com/v1"
	}
	currency := opts.Currency
	if currency == "" {
		currency = "NGN"
	}
	return &Stripe{
		secretKey:  strings.TrimSpace(opts.SecretKey),
		baseURL:    baseURL,
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		appName:    opts.AppName,
		currency:   strings.ToLower(currency),
		client:     newHTTPClient(opts.HTTPClient),
	}
}

func (s *Stripe) Name() domain.GatewayName { return domain.GatewayStripe }

func (s *Stripe) ensureConfigured() error {
	if s.secretKey == "" {
		return fmt.Errorf("stripe secret key is missing: %w", domain.ErrConfiguration)
	}
	return nil
}

type stripeSession struct {
	ID                 string   `json:"id"`
	URL                string   `json:"url"`
	Status             string   `json:"status"`
	PaymentStatus      string   `json:"payment_status"`
	PaymentIntent      string   `json:"payment_intent"`
	AmountTotal        int64    `json:"amount_total"` // minor units
	PaymentMethodTypes []string `json:"payment_method_types"`
	Metadata           struct {
		DonationID string `json:"donation_id"`
		CommentID  string `json:"comment_id"`
	} `json:"metadata"`
}

func (s *Stripe) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := checkAmount(req.AmountInt); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.Email)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", s.currency)
	form.Set("line_items[0][price_data][product_data][name]", s.appName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountInt, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", s.successURL+"?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", s.cancelURL+"/"+req.DonationID)
	form.Set("metadata[donation_id]", req.DonationID)
	if req.CommentID != "" {
		form.Set("metadata[comment_id]", req.CommentID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("stripe: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(s.secretKey, "")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("stripe", err)
	}
	var session stripeSession
	if err := decodeOrFail(resp, "stripe", &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("stripe: checkout session has no url")
	}
	return &InitializeResult{AuthorizationURL: session.URL}, nil
}

func (s *Stripe) Verify(ctx context.Context, sessionID string) (*TransactionRecord, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: build request: %w", err)
	}
	httpReq.SetBasicAuth(s.secretKey, "")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("stripe", err)
	}
	var session stripeSession
	if err := decodeOrFail(resp, "stripe", &session); err != nil {
		return nil, err
	}
	return &TransactionRecord{
		Reference:  session.PaymentIntent,
		Channel:    strings.Join(session.PaymentMethodTypes, ","),
		AmountInt:  session.AmountTotal,
		DonationID: session.Metadata.DonationID,
		CommentID:  session.Metadata.CommentID,
		// Checkout is settled only when the session completed and the
		// payment cleared.
		Succeeded: session.PaymentStatus == "paid" && session.Status == "complete",
		Cancelled: session.Status == "open",
		Message:   fmt.Sprintf("session %s payment %s", session.Status, session.PaymentStatus),
	}, nil
}

func (s *Stripe) ParseCallback(query url.Values) (*Callback, error) {
	sessionID := query.Get("session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("stripe callback without session_id: %w", domain.ErrMalformedCallback)
	}
	return &Callback{Reference: sessionID}, nil
}
