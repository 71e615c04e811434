package handlers

import (
	"net/http"
)

// Health is unauthenticated and cheap; load balancers poll it.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "crowdfund",
	})
}
