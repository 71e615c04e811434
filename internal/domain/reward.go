package domain

import "time"

// Reward is an optional tier attached to a donation. It enforces a minimum
// donation amount at validation time and is read-only once attached.
type Reward struct {
	ID               string
	CampaignID       string
	Title            string
	Description      string
	AmountInt        int64 // minimum donation, minor units
	RequiresShipping bool
	Status           string
	CreatedAt        time.Time
}

// Comment is a donor remark captured at donation time. It starts inactive and
// is promoted to active only when the donation is confirmed approved, so
// comments for unpaid or failed donations are never displayed.
type Comment struct {
	ID         string
	CampaignID string
	FirstName  string
	LastName   string
	Email      string
	Body       string
	Anonymous  bool
	Status     string
	CreatedAt  time.Time
}

const (
	CommentInactive = "inactive"
	CommentActive   = "active"
)
