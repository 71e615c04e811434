package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
)

// AdminWithdrawalApprove marks a pending payout approved. The held-back
// balance stays debited; settlement happens off-platform.
func (a *App) AdminWithdrawalApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Ledger.ApproveWithdrawal(r.Context(), id); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "withdrawal_id": id})
}

// AdminWithdrawalReject rejects a pending payout and returns the amount to
// the beneficiary's balance.
func (a *App) AdminWithdrawalReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Ledger.RejectWithdrawal(r.Context(), id); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "withdrawal_id": id})
}

type gatewayCredentialRequest struct {
	Secret string         `json:"secret"`
	Props  map[string]any `json:"props"`
}

// AdminGatewayCredentialSet rotates a gateway secret in the database. New
// secrets apply on the next service start; env values remain the fallback.
func (a *App) AdminGatewayCredentialSet(w http.ResponseWriter, r *http.Request) {
	gw, err := domain.ParseGatewayName(chi.URLParam(r, "gateway"))
	if err != nil {
		a.validation(w, domain.NewValidationError("gateway", err.Error()))
		return
	}
	var req gatewayCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Credentials.SetSecret(r.Context(), string(gw), req.Secret, req.Props); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Logger.Info().Str("gateway", string(gw)).Msg("gateway credential rotated")
	a.json(w, http.StatusOK, map[string]any{"status": "success", "gateway": gw})
}
