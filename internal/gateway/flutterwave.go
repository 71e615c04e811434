package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crowdfund/internal/domain"
)

// FlutterwaveOptions configures the Flutterwave client.
type FlutterwaveOptions struct {
	SecretKey   string
	BaseURL     string
	RedirectURL string
	AppName     string
	Currency    string
	HTTPClient  *http.Client
}

// Flutterwave charges through api.flutterwave.com/v3. Flutterwave works in
// major units, so amounts are converted at this boundary.
type Flutterwave struct {
	secretKey   string
	baseURL     string
	redirectURL string
	appName     string
	currency    string
	client      *http.Client
	now         func() time.Time
}

func NewFlutterwave(opts FlutterwaveOptions) *Flutterwave {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com/v3"
	}
	currency := opts.Currency
	if currency == "" {
		currency = "NGN"
	}
	return &Flutterwave{
		secretKey:   strings.TrimSpace(opts.SecretKey),
		baseURL:     baseURL,
		redirectURL: opts.RedirectURL,
		appName:     opts.AppName,
		currency:    currency,
		client:      newHTTPClient(opts.HTTPClient),
		now:         time.Now,
	}
}

func (f *Flutterwave) Name() domain.GatewayName { return domain.GatewayFlutterwave }

func (f *Flutterwave) ensureConfigured() error {
	if f.secretKey == "" {
		return fmt.Errorf("flutterwave secret key is missing: %w", domain.ErrConfiguration)
	}
	return nil
}

type flutterwaveCustomer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

type flutterwaveInitRequest struct {
	TxRef          string              `json:"tx_ref"`
	Amount         float64             `json:"amount"` // major units
	Currency       string              `json:"currency"`
	RedirectURL    string              `json:"redirect_url"`
	PaymentOptions string              `json:"payment_options"`
	Customer       flutterwaveCustomer `json:"customer"`
	Customizations map[string]string   `json:"customizations"`
	Meta           flutterwaveMeta     `json:"meta"`
}

type flutterwaveMeta struct {
	DonationID string `json:"donation_id"`
	CommentID  string `json:"comment_id,omitempty"`
}

type flutterwaveInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (f *Flutterwave) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := f.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := checkAmount(req.AmountInt); err != nil {
		return nil, err
	}

	payload := flutterwaveInitRequest{
		TxRef:          fmt.Sprintf("txn_%d", f.now().Unix()),
		Amount:         domain.MinorToMajor(req.AmountInt),
		Currency:       f.currency,
		RedirectURL:    f.redirectURL,
		PaymentOptions: "card, banktransfer, ussd",
		Customer: flutterwaveCustomer{
			Email:       req.Email,
			PhoneNumber: req.Phone,
			Name:        req.FullName,
		},
		Customizations: map[string]string{"title": f.appName},
		Meta: flutterwaveMeta{
			DonationID: req.DonationID,
			CommentID:  req.CommentID,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("flutterwave: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/payments", &buf)
	if err != nil {
		return nil, fmt.Errorf("flutterwave: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+f.secretKey)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("flutterwave", err)
	}
	var out flutterwaveInitResponse
	if err := decodeOrFail(resp, "flutterwave", &out); err != nil {
		return nil, err
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("flutterwave: %s", out.Message)
	}
	return &InitializeResult{AuthorizationURL: out.Data.Link}, nil
}

type flutterwaveVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TxRef       string          `json:"tx_ref"`
		PaymentType string          `json:"payment_type"`
		Amount      float64         `json:"amount"` // major units
		Meta        flutterwaveMeta `json:"meta"`
	} `json:"data"`
}

func (f *Flutterwave) Verify(ctx context.Context, transactionID string) (*TransactionRecord, error) {
	if err := f.ensureConfigured(); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/transactions/%s/verify", f.baseURL, url.PathEscape(transactionID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("flutterwave: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+f.secretKey)
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("flutterwave", err)
	}
	var out flutterwaveVerifyResponse
	if err := decodeOrFail(resp, "flutterwave", &out); err != nil {
		return nil, err
	}
	return &TransactionRecord{
		Reference:  out.Data.TxRef,
		Channel:    out.Data.PaymentType,
		AmountInt:  domain.MajorToMinor(out.Data.Amount),
		DonationID: out.Data.Meta.DonationID,
		CommentID:  out.Data.Meta.CommentID,
		Succeeded:  out.Status == "success",
		Message:    out.Message,
	}, nil
}

// ParseCallback reads Flutterwave's redirect. The redirect carries an explicit
// status; cancelled payments never reach verification.
func (f *Flutterwave) ParseCallback(query url.Values) (*Callback, error) {
	status := query.Get("status")
	txRef := query.Get("tx_ref")
	if status == "" || txRef == "" {
		return nil, fmt.Errorf("flutterwave callback without status or tx_ref: %w", domain.ErrMalformedCallback)
	}
	if status == "cancelled" {
		return &Callback{Reference: txRef, Cancelled: true}, nil
	}
	transactionID := query.Get("transaction_id")
	if transactionID == "" {
		return nil, fmt.Errorf("flutterwave callback without transaction_id: %w", domain.ErrMalformedCallback)
	}
	return &Callback{Reference: transactionID}, nil
}
