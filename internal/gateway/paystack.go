package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"crowdfund/internal/domain"
)

const paystackBanksCacheTTL = 24 * time.Hour

// PaystackOptions configures the Paystack client.
type PaystackOptions struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string // redirect target echoed by Paystack after checkout
	CancelURL   string // cancel_action base; donation id is appended
	HTTPClient  *http.Client
}

// Paystack charges cards through api.paystack.co. Paystack works in minor
// units (kobo), so amounts pass through unconverted.
type Paystack struct {
	secretKey   string
	baseURL     string
	callbackURL string
	cancelURL   string
	client      *http.Client

	mu          sync.Mutex
	banks       []Bank
	banksLoaded time.Time
}

func NewPaystack(opts PaystackOptions) *Paystack {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Paystack{
		secretKey:   strings.TrimSpace(opts.SecretKey),
		baseURL:     baseURL,
		callbackURL: opts.CallbackURL,
		cancelURL:   opts.CancelURL,
		client:      newHTTPClient(opts.HTTPClient),
	}
}

func (p *Paystack) Name() domain.GatewayName { return domain.GatewayPaystack }

func (p *Paystack) ensureConfigured() error {
	if p.secretKey == "" {
		return fmt.Errorf("paystack secret key is missing: %w", domain.ErrConfiguration)
	}
	return nil
}

type paystackInitRequest struct {
	Email       string           `json:"email"`
	Amount      int64            `json:"amount"` // kobo
	CallbackURL string           `json:"callback_url"`
	Metadata    paystackMetadata `json:"metadata"`
}

type paystackMetadata struct {
	CancelAction string `json:"cancel_action,omitempty"`
	DonationID   string `json:"donation_id"`
	CommentID    string `json:"comment_id,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := checkAmount(req.AmountInt); err != nil {
		return nil, err
	}

	payload := paystackInitRequest{
		Email:       req.Email,
		Amount:      req.AmountInt,
		CallbackURL: p.callbackURL,
		Metadata: paystackMetadata{
			CancelAction: p.cancelURL + "/" + req.DonationID,
			DonationID:   req.DonationID,
			CommentID:    req.CommentID,
		},
	}
	var out paystackInitResponse
	if err := p.post(ctx, "/transaction/initialize", payload, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack: %s", out.Message)
	}
	return &InitializeResult{AuthorizationURL: out.Data.AuthorizationURL}, nil
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Channel   string `json:"channel"`
		Amount    int64  `json:"amount"` // kobo
		Metadata  struct {
			DonationID string `json:"donation_id"`
			CommentID  string `json:"comment_id"`
		} `json:"metadata"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

func (p *Paystack) Verify(ctx context.Context, reference string) (*TransactionRecord, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}
	var out paystackVerifyResponse
	if err := p.get(ctx, "/transaction/verify/"+url.PathEscape(reference), &out); err != nil {
		return nil, err
	}
	message := out.Message
	if out.Data.GatewayResponse != "" {
		message = out.Data.GatewayResponse
	}
	return &TransactionRecord{
		Reference:  out.Data.Reference,
		Channel:    out.Data.Channel,
		AmountInt:  out.Data.Amount,
		DonationID: out.Data.Metadata.DonationID,
		CommentID:  out.Data.Metadata.CommentID,
		// Paystack reports success twice: a request-level flag and the
		// transaction state. Both must agree.
		Succeeded: out.Status && out.Data.Status == "success",
		Message:   message,
	}, nil
}

// ParseCallback extracts the transaction reference from Paystack's redirect.
// Paystack signals cancellation through the cancel_action URL, never through
// this callback.
func (p *Paystack) ParseCallback(query url.Values) (*Callback, error) {
	reference := query.Get("reference")
	if reference == "" {
		reference = query.Get("trxref")
	}
	if reference == "" {
		return nil, fmt.Errorf("paystack callback without reference: %w", domain.ErrMalformedCallback)
	}
	return &Callback{Reference: reference}, nil
}

// Bank is one settlement bank supported by Paystack transfers.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type paystackBanksResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    []Bank `json:"data"`
}

// FetchBanks returns the provider's bank list, cached for a day.
func (p *Paystack) FetchBanks(ctx context.Context) ([]Bank, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.banks != nil && time.Since(p.banksLoaded) < paystackBanksCacheTTL {
		banks := p.banks
		p.mu.Unlock()
		return banks, nil
	}
	p.mu.Unlock()

	var out paystackBanksResponse
	if err := p.get(ctx, "/bank", &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack: %s", out.Message)
	}

	p.mu.Lock()
	p.banks = out.Data
	p.banksLoaded = time.Now()
	p.mu.Unlock()
	return out.Data, nil
}

// ResolvedAccount is the owner of a bank account number.
type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type paystackResolveResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    ResolvedAccount `json:"data"`
}

// ResolveAccount looks up the holder of an account number at a bank.
func (p *Paystack) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolvedAccount, error) {
	if err := p.ensureConfigured(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)
	var out paystackResolveResponse
	if err := p.get(ctx, "/bank/resolve?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack: %s", out.Message)
	}
	return &out.Data, nil
}

func (p *Paystack) post(ctx context.Context, path string, payload, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("paystack: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *Paystack) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	return p.do(req, out)
}

func (p *Paystack) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := p.client.Do(req)
	if err != nil {
		return transportErr("paystack", err)
	}
	return decodeOrFail(resp, "paystack", out)
}
