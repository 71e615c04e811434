package domain

import (
	"math"
	"time"
)

// Campaign owns the funds_raised accumulator. funds_raised is credited only by
// donation reconciliation, exactly once per approved donation, by the stored
// donation amount.
type Campaign struct {
	ID          string
	UserID      string
	CategoryID  string
	Slug        string
	Title       string
	Summary     string
	GoalInt     int64 // minor units
	FundsRaised int64 // minor units
	Featured    bool
	IsComplete  bool
	Status      string
	ExpiresAt   *time.Time
	CreatedAt   time.Time
}

// Progress returns the funding percentage, capped at 100.
func (c *Campaign) Progress() float64 {
	if c.GoalInt <= 0 || c.FundsRaised <= 0 {
		return 0
	}
	progress := float64(c.FundsRaised) / float64(c.GoalInt) * 100
	return math.Min(math.Round(progress*100)/100, 100)
}

// Expired reports whether the campaign deadline has passed.
func (c *Campaign) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// SuggestedAmounts returns the donation amount suggestions for this campaign,
// in major units.
func (c *Campaign) SuggestedAmounts() []int64 {
	return SuggestedAmounts(c.GoalInt / 100)
}

// SuggestedAmounts produces an ascending, deduplicated sequence of donation
// suggestions for a goal given in major units. The minimum is 10% of the goal
// rounded up to the nearest hundred (or 1 for tiny goals), and the range is
// covered in three steps, each suggestion rounded up to the nearest hundred.
func SuggestedAmounts(goal int64) []int64 {
	if goal <= 0 {
		return nil
	}

	minimum := int64(1)
	if goal > 10 {
		minimum = int64(math.Ceil(float64(goal)*0.1/100)) * 100
	}

	step := int64(100)
	if r := goal - minimum; r > 3 {
		step = int64(math.Ceil(float64(r)/3/100)) * 100
	}

	var amounts []int64
	seen := map[int64]bool{}
	for amount := minimum; amount <= goal+1; amount += step {
		rounded := int64(math.Ceil(float64(amount)/100)) * 100
		if rounded > 0 && !seen[rounded] {
			seen[rounded] = true
			amounts = append(amounts, rounded)
		}
	}
	return amounts
}

// Category groups campaigns for browsing filters.
type Category struct {
	ID   string
	Slug string
	Name string
}

// Update is a progress note authored by the campaign owner.
type Update struct {
	ID         string
	CampaignID string
	Title      string
	Body       string
	CreatedAt  time.Time
}
