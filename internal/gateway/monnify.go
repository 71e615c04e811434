package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"crowdfund/internal/domain"
)

// MonnifyOptions configures the Monnify client.
type MonnifyOptions struct {
	APIKey       string
	SecretKey    string
	ContractCode string
	BaseURL      string
	RedirectURL  string
	AppName      string
	Currency     string
	HTTPClient   *http.Client
}

// Monnify charges through the Monnify merchant API. Every call first exchanges
// the basic-auth key pair for a short-lived bearer token. Monnify works in
// major units.
type Monnify struct {
	apiKey       string
	secretKey    string
	contractCode string
	baseURL      string
	redirectURL  string
	appName      string
	currency     string
	client       *http.Client
	newReference func() string
}

func NewMonnify(opts MonnifyOptions) *Monnify {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://sandbox.monnify.com/api/v1"
	}
	currency := opts.Currency
	if currency == "" {
		currency = "NGN"
	}
	return &Monnify{
		apiKey:       strings.TrimSpace(opts.APIKey),
		secretKey:    strings.TrimSpace(opts.SecretKey),
		contractCode: strings.TrimSpace(opts.ContractCode),
		baseURL:      baseURL,
		redirectURL:  opts.RedirectURL,
		appName:      opts.AppName,
		currency:     currency,
		client:       newHTTPClient(opts.HTTPClient),
		newReference: func() string { return "MONNIFY_" + uuid.NewString() },
	}
}

func (m *Monnify) Name() domain.GatewayName { return domain.GatewayMonnify }

func (m *Monnify) ensureConfigured() error {
	if m.apiKey == "" || m.secretKey == "" || m.contractCode == "" {
		return fmt.Errorf("monnify credentials are incomplete: %w", domain.ErrConfiguration)
	}
	return nil
}

type monnifyAuthResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		AccessToken string `json:"accessToken"`
	} `json:"responseBody"`
}

func (m *Monnify) authToken(ctx context.Context) (string, error) {
	authString := base64.StdEncoding.EncodeToString([]byte(m.apiKey + ":" + m.secretKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/login", nil)
	if err != nil {
		return "", fmt.Errorf("monnify: build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+authString)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", transportErr("monnify", err)
	}
	var out monnifyAuthResponse
	if err := decodeOrFail(resp, "monnify", &out); err != nil {
		return "", err
	}
	if !out.RequestSuccessful || out.ResponseBody.AccessToken == "" {
		return "", fmt.Errorf("monnify: authentication failed: %s: %w", out.ResponseMessage, domain.ErrGatewayUnavailable)
	}
	return out.ResponseBody.AccessToken, nil
}

type monnifyInitRequest struct {
	Amount             float64         `json:"amount"` // major units
	CustomerName       string          `json:"customerName"`
	CustomerEmail      string          `json:"customerEmail"`
	PaymentReference   string          `json:"paymentReference"`
	PaymentDescription string          `json:"paymentDescription"`
	CurrencyCode       string          `json:"currencyCode"`
	ContractCode       string          `json:"contractCode"`
	RedirectURL        string          `json:"redirectUrl"`
	MetaData           monnifyMetadata `json:"metaData"`
}

type monnifyMetadata struct {
	DonationID string `json:"donation_id"`
	CommentID  string `json:"comment_id,omitempty"`
}

type monnifyInitResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		CheckoutURL string `json:"checkoutUrl"`
	} `json:"responseBody"`
}

func (m *Monnify) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := m.ensureConfigured(); err != nil {
		return nil, err
	}
	if err := checkAmount(req.AmountInt); err != nil {
		return nil, err
	}
	token, err := m.authToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := monnifyInitRequest{
		Amount:             domain.MinorToMajor(req.AmountInt),
		CustomerName:       req.FullName,
		CustomerEmail:      req.Email,
		PaymentReference:   m.newReference(),
		PaymentDescription: m.appName,
		CurrencyCode:       m.currency,
		ContractCode:       m.contractCode,
		RedirectURL:        m.redirectURL,
		MetaData: monnifyMetadata{
			DonationID: req.DonationID,
			CommentID:  req.CommentID,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("monnify: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/merchant/transactions/init-transaction", &buf)
	if err != nil {
		return nil, fmt.Errorf("monnify: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("monnify", err)
	}
	var out monnifyInitResponse
	if err := decodeOrFail(resp, "monnify", &out); err != nil {
		return nil, err
	}
	if !out.RequestSuccessful {
		return nil, fmt.Errorf("monnify: %s", out.ResponseMessage)
	}
	return &InitializeResult{AuthorizationURL: out.ResponseBody.CheckoutURL}, nil
}

type monnifyVerifyResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		PaymentReference string          `json:"paymentReference"`
		PaymentMethod    string          `json:"paymentMethod"`
		PaymentStatus    string          `json:"paymentStatus"`
		Amount           float64         `json:"amount"` // major units
		MetaData         monnifyMetadata `json:"metaData"`
	} `json:"responseBody"`
}

func (m *Monnify) Verify(ctx context.Context, reference string) (*TransactionRecord, error) {
	if err := m.ensureConfigured(); err != nil {
		return nil, err
	}
	token, err := m.authToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := m.baseURL + "/merchant/transactions/query?paymentReference=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("monnify: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, transportErr("monnify", err)
	}
	var out monnifyVerifyResponse
	if err := decodeOrFail(resp, "monnify", &out); err != nil {
		return nil, err
	}
	body := out.ResponseBody
	return &TransactionRecord{
		Reference:  body.PaymentReference,
		Channel:    body.PaymentMethod,
		AmountInt:  domain.MajorToMinor(body.Amount),
		DonationID: body.MetaData.DonationID,
		CommentID:  body.MetaData.CommentID,
		Succeeded:  out.RequestSuccessful && body.PaymentStatus == "PAID",
		// A checkout abandoned by the donor stays PENDING on Monnify's side.
		Cancelled: body.PaymentStatus == "PENDING",
		Message:   out.ResponseMessage,
	}, nil
}

func (m *Monnify) ParseCallback(query url.Values) (*Callback, error) {
	reference := query.Get("paymentReference")
	if reference == "" {
		return nil, fmt.Errorf("monnify callback without paymentReference: %w", domain.ErrMalformedCallback)
	}
	return &Callback{Reference: reference}, nil
}
