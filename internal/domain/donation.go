package domain

import (
	"fmt"
	"time"
)

// GatewayName identifies a supported payment provider.
type GatewayName string

const (
	GatewayPaystack    GatewayName = "paystack"
	GatewayFlutterwave GatewayName = "flutterwave"
	GatewayMonnify     GatewayName = "monnify"
	GatewayStripe      GatewayName = "stripe"
)

// GatewayNames lists the supported providers in display order.
func GatewayNames() []GatewayName {
	return []GatewayName{GatewayFlutterwave, GatewayMonnify, GatewayPaystack, GatewayStripe}
}

// ParseGatewayName validates a donor-submitted gateway selection.
func ParseGatewayName(s string) (GatewayName, error) {
	switch GatewayName(s) {
	case GatewayPaystack, GatewayFlutterwave, GatewayMonnify, GatewayStripe:
		return GatewayName(s), nil
	}
	return "", fmt.Errorf("unsupported payment gateway %q", s)
}

// DonationStatus is the lifecycle state of a donation. A donation only ever
// moves pending -> approved or pending -> rejected.
type DonationStatus string

const (
	DonationPending  DonationStatus = "pending"
	DonationApproved DonationStatus = "approved"
	DonationRejected DonationStatus = "rejected"
)

// Donation is one attempted contribution. Rows are never deleted; they are the
// financial record even when the campaign is archived.
type Donation struct {
	ID                   string
	CampaignID           string
	RewardID             string
	FirstName            string
	LastName             string
	Email                string
	PhoneNumber          string
	AmountInt            int64 // stored amount, minor units, excludes the platform fee
	Gateway              GatewayName
	Channel              string
	TransactionReference string
	Status               DonationStatus
	Anonymous            bool
	RequiresShipping     bool
	ShippingCountry      string
	ShippingState        string
	ShippingCity         string
	ShippingAddress      string
	ShippingPostalCode   string
	CreatedAt            time.Time
}

// DonorName renders the donor's display name honoring the anonymous flag.
func (d *Donation) DonorName() string {
	if d.Anonymous {
		return "Anonymous"
	}
	return d.FirstName + " " + d.LastName
}
