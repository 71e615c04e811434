package handlers

import (
	"encoding/json"
	"net/http"

	"crowdfund/internal/domain"
)

// BanksList serves the settlement bank options for withdrawal settings,
// backed by Paystack's bank list (cached by the client).
func (a *App) BanksList(w http.ResponseWriter, r *http.Request) {
	banks, err := a.Paystack.FetchBanks(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "items": banks})
}

type resolveAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
}

// BanksResolve confirms the holder of an account number before the
// beneficiary saves it as a payout destination.
func (a *App) BanksResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	verr := &domain.ValidationError{}
	if len(req.AccountNumber) != 10 {
		verr.Add("account_number", "account number must be 10 digits")
	}
	if req.BankCode == "" {
		verr.Add("bank_code", "bank code is required")
	}
	if !verr.Empty() {
		a.validation(w, verr)
		return
	}

	account, err := a.Paystack.ResolveAccount(r.Context(), req.AccountNumber, req.BankCode)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "account": account})
}
