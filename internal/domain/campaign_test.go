package domain

import (
	"testing"
	"time"
)

func TestSuggestedAmountsGoal1000(t *testing.T) {
	amounts := SuggestedAmounts(1000)
	if len(amounts) == 0 {
		t.Fatal("expected suggestions")
	}
	if amounts[0] < 100 {
		t.Fatalf("first suggestion %d below 100", amounts[0])
	}
	if last := amounts[len(amounts)-1]; last > 1100 {
		t.Fatalf("last suggestion %d above goal+100", last)
	}
	seen := map[int64]bool{}
	for i, a := range amounts {
		if seen[a] {
			t.Fatalf("duplicate suggestion %d", a)
		}
		seen[a] = true
		if i > 0 && amounts[i] <= amounts[i-1] {
			t.Fatalf("suggestions not strictly ascending: %v", amounts)
		}
	}
}

func TestSuggestedAmountsTinyGoal(t *testing.T) {
	amounts := SuggestedAmounts(5)
	if len(amounts) == 0 {
		t.Fatal("expected suggestions for a tiny goal")
	}
	// minimum is 1 for goals of 10 or less, rounded up to 100
	if amounts[0] != 100 {
		t.Fatalf("expected first suggestion 100, got %d", amounts[0])
	}
}

func TestSuggestedAmountsNonPositiveGoal(t *testing.T) {
	if got := SuggestedAmounts(0); got != nil {
		t.Fatalf("expected nil for zero goal, got %v", got)
	}
	if got := SuggestedAmounts(-50); got != nil {
		t.Fatalf("expected nil for negative goal, got %v", got)
	}
}

func TestCampaignProgress(t *testing.T) {
	tests := []struct {
		name   string
		goal   int64
		raised int64
		want   float64
	}{
		{"halfway", 100000, 50000, 50},
		{"overfunded caps at 100", 100000, 250000, 100},
		{"nothing raised", 100000, 0, 0},
		{"zero goal", 0, 50000, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Campaign{GoalInt: tc.goal, FundsRaised: tc.raised}
			if got := c.Progress(); got != tc.want {
				t.Fatalf("Progress() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCampaignExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if (&Campaign{}).Expired(now) {
		t.Fatal("campaign without deadline should not expire")
	}
	if !(&Campaign{ExpiresAt: &past}).Expired(now) {
		t.Fatal("past deadline should be expired")
	}
	if (&Campaign{ExpiresAt: &future}).Expired(now) {
		t.Fatal("future deadline should not be expired")
	}
}

func TestDonorName(t *testing.T) {
	d := Donation{FirstName: "Ada", LastName: "Obi"}
	if got := d.DonorName(); got != "Ada Obi" {
		t.Fatalf("DonorName() = %q", got)
	}
	d.Anonymous = true
	if got := d.DonorName(); got != "Anonymous" {
		t.Fatalf("anonymous DonorName() = %q", got)
	}
}
