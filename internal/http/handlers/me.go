package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// MeDonations lists donations made to the authenticated beneficiary's
// campaigns, newest first.
func (a *App) MeDonations(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(q.Get("per_page"), 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListDonationsByOwner, userID, perPage, (page-1)*perPage)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var id, firstName, lastName, gw, status, campaignID, campaignTitle, campaignSlug string
		var amount int64
		var anonymous bool
		var createdAt time.Time
		if err := rows.Scan(&id, &firstName, &lastName, &amount, &gw, &status, &anonymous, &createdAt,
			&campaignID, &campaignTitle, &campaignSlug); err != nil {
			a.domainError(w, r, err)
			return
		}
		donor := firstName + " " + lastName
		if anonymous {
			donor = "Anonymous"
		}
		items = append(items, map[string]any{
			"id":               id,
			"donor_name":       donor,
			"amount_int":       amount,
			"amount_formatted": a.Cfg.Currency.Format(amount),
			"gateway":          gw,
			"status":           status,
			"created_at":       createdAt,
			"campaign": map[string]any{
				"id":    campaignID,
				"title": campaignTitle,
				"slug":  campaignSlug,
			},
		})
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "items": items, "page": page})
}

// MeWithdrawals lists the authenticated beneficiary's payout requests.
func (a *App) MeWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(q.Get("per_page"), 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListWithdrawalsByUser, userID, perPage, (page-1)*perPage)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var id, status, bankName, accountName string
		var amount int64
		var createdAt time.Time
		if err := rows.Scan(&id, &amount, &status, &createdAt, &bankName, &accountName); err != nil {
			a.domainError(w, r, err)
			return
		}
		items = append(items, map[string]any{
			"id":               id,
			"amount_int":       amount,
			"amount_formatted": a.Cfg.Currency.Format(amount),
			"status":           status,
			"bank_name":        bankName,
			"account_name":     accountName,
			"created_at":       createdAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "items": items, "page": page})
}

type withdrawalRequest struct {
	Amount int64 `json:"amount"` // major units
}

// MeWithdrawalsCreate opens a payout request. The amount is held back from
// the balance immediately; a rejection returns it.
func (a *App) MeWithdrawalsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount <= 0 {
		a.validation(w, domain.NewValidationError("amount", "amount must be greater than zero"))
		return
	}

	settingsID, err := a.withdrawalSettingsID(r, userID)
	if err != nil {
		if infra.IsNoRows(err) {
			a.validation(w, domain.NewValidationError("withdrawal_settings", "add your bank details before requesting a withdrawal"))
			return
		}
		a.domainError(w, r, err)
		return
	}

	withdrawalID, err := a.Ledger.RequestWithdrawal(r.Context(), userID, settingsID, domain.MajorToMinor(float64(req.Amount)))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"status": "success", "withdrawal_id": withdrawalID})
}

func (a *App) withdrawalSettingsID(r *http.Request, userID string) (string, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectWithdrawalSettingsByUser, userID)
	var s domain.WithdrawalSettings
	if err := row.Scan(&s.ID, &s.UserID, &s.BankCode, &s.BankName, &s.AccountNumber, &s.AccountName, &s.CreatedAt); err != nil {
		return "", err
	}
	return s.ID, nil
}

type withdrawalSettingsRequest struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
}

// MeWithdrawalSettingsUpsert saves the beneficiary's payout destination. The
// account is resolved against Paystack first so only verified account names
// are stored, and the number is hashed for audit comparison.
func (a *App) MeWithdrawalSettingsUpsert(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req withdrawalSettingsRequest
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

	bankName := ""
	if banks, err := a.Paystack.FetchBanks(r.Context()); err == nil {
		for _, b := range banks {
			if b.Code == req.BankCode {
				bankName = b.Name
				break
			}
		}
	}

	hash := sha256.Sum256([]byte(req.AccountNumber))
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertWithdrawalSettings,
		userID, req.BankCode, bankName, req.AccountNumber, hex.EncodeToString(hash[:]), account.AccountName)
	var settingsID string
	if err := row.Scan(&settingsID); err != nil {
		a.domainError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status": "success",
		"withdrawal_settings": map[string]any{
			"id":             settingsID,
			"bank_code":      req.BankCode,
			"bank_name":      bankName,
			"account_number": req.AccountNumber,
			"account_name":   account.AccountName,
		},
	})
}
