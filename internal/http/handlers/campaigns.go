package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/sqlinline"
)

var campaignTabs = map[string]string{
	"":         sqlinline.QListCampaignsAll,
	"all":      sqlinline.QListCampaignsAll,
	"latest":   sqlinline.QListCampaignsLatest,
	"featured": sqlinline.QListCampaignsFeatured,
	"popular":  sqlinline.QListCampaignsPopular,
	"ended":    sqlinline.QListCampaignsEnded,
}

// CampaignsList serves the browse page: tab, category and goal-range filters
// with pagination.
func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query, ok := campaignTabs[q.Get("tab")]
	if !ok {
		a.validation(w, domain.NewValidationError("tab", "unknown campaign tab"))
		return
	}

	minGoal := domain.MajorToMinor(queryFloat(q.Get("min_goal"), 0))
	maxGoal := domain.MajorToMinor(queryFloat(q.Get("max_goal"), 0))
	if maxGoal <= 0 {
		maxGoal = math.MaxInt64
	}

	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(q.Get("per_page"), 12)
	if perPage < 1 || perPage > 50 {
		perPage = 12
	}

	rows, err := a.SQL.Query(r.Context(), query, q.Get("category"), minGoal, maxGoal, perPage, (page-1)*perPage)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer rows.Close()

	var total int64
	items := []map[string]any{}
	for rows.Next() {
		var c domain.Campaign
		var expiresAt *time.Time
		if err := rows.Scan(&c.ID, &c.UserID, &c.CategoryID, &c.Slug, &c.Title, &c.Summary,
			&c.GoalInt, &c.FundsRaised, &c.Featured, &c.IsComplete, &c.Status, &expiresAt, &c.CreatedAt,
			&total); err != nil {
			a.domainError(w, r, err)
			return
		}
		c.ExpiresAt = expiresAt
		items = append(items, a.campaignPayload(&c))
	}

	a.json(w, http.StatusOK, map[string]any{
		"status":   "success",
		"items":    items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// CampaignShow serves the donation page payload: the campaign itself, its
// donation suggestions, active rewards and the gateways available to pay with.
func (a *App) CampaignShow(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	c, err := a.Ledger.CampaignBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "campaign not found")
			return
		}
		a.domainError(w, r, err)
		return
	}

	rewards, err := a.listRewards(r.Context(), c.ID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	related, err := a.listRelated(r.Context(), c)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"status":            "success",
		"campaign":          a.campaignPayload(c),
		"suggested_amounts": c.SuggestedAmounts(),
		"gateways":          a.Gateways.Names(),
		"rewards":           rewards,
		"related":           related,
		"donation_limits": map[string]any{
			"min_int": a.Cfg.DonationMinInt,
			"max_int": a.Cfg.DonationMaxInt,
			"fee_int": a.Cfg.DonationFeeInt,
		},
	})
}

// CampaignComments lists the active comments for a campaign, newest first.
func (a *App) CampaignComments(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(q.Get("per_page"), 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListActiveComments, slug, perPage, (page-1)*perPage)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var id, firstName, lastName, body string
		var anonymous bool
		var createdAt time.Time
		if err := rows.Scan(&id, &firstName, &lastName, &body, &anonymous, &createdAt); err != nil {
			a.domainError(w, r, err)
			return
		}
		name := firstName + " " + lastName
		if anonymous {
			name = "Anonymous"
		}
		items = append(items, map[string]any{
			"id":         id,
			"name":       name,
			"body":       body,
			"created_at": createdAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "items": items, "page": page})
}

// CategoriesList serves the browse filter options.
func (a *App) CategoriesList(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListCategories)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Slug, &cat.Name); err != nil {
			a.domainError(w, r, err)
			return
		}
		items = append(items, map[string]any{"id": cat.ID, "slug": cat.Slug, "name": cat.Name})
	}
	a.json(w, http.StatusOK, map[string]any{"status": "success", "items": items})
}

func (a *App) campaignPayload(c *domain.Campaign) map[string]any {
	payload := map[string]any{
		"id":                     c.ID,
		"slug":                   c.Slug,
		"title":                  c.Title,
		"summary":                c.Summary,
		"category_id":            c.CategoryID,
		"goal_int":               c.GoalInt,
		"goal_formatted":         a.Cfg.Currency.Format(c.GoalInt),
		"funds_raised_int":       c.FundsRaised,
		"funds_raised_formatted": a.Cfg.Currency.Format(c.FundsRaised),
		"progress":               c.Progress(),
		"featured":               c.Featured,
		"is_complete":            c.IsComplete,
		"created_at":             c.CreatedAt,
	}
	if c.ExpiresAt != nil {
		payload["expires_at"] = c.ExpiresAt
		days := int(math.Ceil(time.Until(*c.ExpiresAt).Hours() / 24))
		if days < 0 {
			days = 0
		}
		payload["days_left"] = days
	}
	return payload
}

func (a *App) listRewards(ctx context.Context, campaignID string) ([]map[string]any, error) {
	rows, err := a.SQL.Query(ctx, sqlinline.QListRewardsByCampaign, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var rw domain.Reward
		if err := rows.Scan(&rw.ID, &rw.CampaignID, &rw.Title, &rw.Description,
			&rw.AmountInt, &rw.RequiresShipping, &rw.Status, &rw.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"id":                rw.ID,
			"title":             rw.Title,
			"description":       rw.Description,
			"amount_int":        rw.AmountInt,
			"amount_formatted":  a.Cfg.Currency.Format(rw.AmountInt),
			"requires_shipping": rw.RequiresShipping,
		})
	}
	return items, nil
}

func (a *App) listRelated(ctx context.Context, c *domain.Campaign) ([]map[string]any, error) {
	rows, err := a.SQL.Query(ctx, sqlinline.QListRelatedCampaigns, c.ID, c.CategoryID, 3)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var rc domain.Campaign
		var expiresAt *time.Time
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.CategoryID, &rc.Slug, &rc.Title, &rc.Summary,
			&rc.GoalInt, &rc.FundsRaised, &rc.Featured, &rc.IsComplete, &rc.Status, &expiresAt, &rc.CreatedAt); err != nil {
			return nil, err
		}
		rc.ExpiresAt = expiresAt
		items = append(items, a.campaignPayload(&rc))
	}
	return items, nil
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}

func queryFloat(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return fallback
}
