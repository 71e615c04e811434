package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"crowdfund/internal/domain"
	"crowdfund/internal/donation"
)

type donationRequest struct {
	CampaignSlug string `json:"campaign_slug"`
	RewardID     string `json:"reward_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	Amount       int64  `json:"amount"` // major units
	Gateway      string `json:"gateway"`
	Anonymous    bool   `json:"anonymous"`
	Comment      string `json:"comment"`
	AcceptTerms  bool   `json:"accept_terms"`

	ShippingCountry    string `json:"shipping_country"`
	ShippingState      string `json:"shipping_state"`
	ShippingCity       string `json:"shipping_city"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingPostalCode string `json:"shipping_postal_code"`
}

// DonationsCreate accepts the donation form and returns the gateway's
// authorization URL. The signed session cookie set here lets the callback
// handler recover the donation when the provider redirect carries no metadata.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !req.AcceptTerms {
		a.validation(w, domain.NewValidationError("accept_terms", "you must accept the terms to donate"))
		return
	}

	res, err := a.Orchestrator.Submit(r.Context(), donation.SubmitInput{
		CampaignSlug:       req.CampaignSlug,
		RewardID:           req.RewardID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		PhoneNumber:        req.PhoneNumber,
		AmountInt:          domain.MajorToMinor(float64(req.Amount)),
		Gateway:            req.Gateway,
		Anonymous:          req.Anonymous,
		Comment:            req.Comment,
		ShippingCountry:    req.ShippingCountry,
		ShippingState:      req.ShippingState,
		ShippingCity:       req.ShippingCity,
		ShippingAddress:    req.ShippingAddress,
		ShippingPostalCode: req.ShippingPostalCode,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		a.domainError(w, r, err)
		return
	}

	a.setDonationCookie(w, res.DonationID)
	a.json(w, http.StatusCreated, map[string]any{
		"status":       "success",
		"donation_id":  res.DonationID,
		"gateway":      res.Gateway,
		"redirect_url": res.AuthorizationURL,
	})
}

// DonationReceipt renders the confirmation payload. Invalid references send
// the donor back to the campaign listing instead of a 500.
func (a *App) DonationReceipt(w http.ResponseWriter, r *http.Request) {
	donationID := r.URL.Query().Get("donation_id")
	campaignID := r.URL.Query().Get("campaign_id")

	listingURL := a.Cfg.FrontendBaseURL + "/campaigns"
	d, err := a.Ledger.DonationByID(r.Context(), donationID)
	if err != nil || d.CampaignID != campaignID || d.Status != domain.DonationApproved {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			a.Logger.Error().Err(err).Str("donation_id", donationID).Msg("receipt lookup failed")
		}
		a.json(w, http.StatusNotFound, map[string]any{
			"status":       "error",
			"message":      "We could not find that donation.",
			"redirect_url": listingURL,
		})
		return
	}

	c, err := a.Ledger.CampaignByID(r.Context(), d.CampaignID)
	if err != nil {
		a.json(w, http.StatusNotFound, map[string]any{
			"status":       "error",
			"message":      "We could not find that campaign.",
			"redirect_url": listingURL,
		})
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status": "success",
		"donation": map[string]any{
			"id":               d.ID,
			"donor_name":       d.DonorName(),
			"amount_int":       d.AmountInt,
			"amount_formatted": a.Cfg.Currency.Format(d.AmountInt),
			"gateway":          d.Gateway,
			"channel":          d.Channel,
			"reference":        d.TransactionReference,
			"created_at":       d.CreatedAt,
		},
		"campaign": map[string]any{
			"id":    c.ID,
			"slug":  c.Slug,
			"title": c.Title,
		},
	})
}
