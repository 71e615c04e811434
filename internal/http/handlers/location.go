package handlers

import (
	"net/http"

	"crowdfund/internal/middleware"
)

// Location resolves the caller's country so the donation form can prefill the
// shipping country. Proxy headers win; the GeoIP database is the fallback.
func (a *App) Location(w http.ResponseWriter, r *http.Request) {
	country := middleware.CountryFromContext(r.Context())
	if country == "" {
		country = middleware.ResolveCountry(r, a.Geo)
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":       "success",
		"country_code": country,
	})
}
