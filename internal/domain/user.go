package domain

import "time"

// User is a platform account. Campaign owners are beneficiaries: their balance
// is credited per approved donation and debited when a withdrawal is requested.
type User struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Role       string
	BalanceInt int64 // minor units
	CreatedAt  time.Time
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// WithdrawalStatus is the review state of a payout request.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a beneficiary payout request. The requested amount is held
// back from the balance immediately and returned if staff reject the request.
type Withdrawal struct {
	ID                   string
	UserID               string
	WithdrawalSettingsID string
	AmountInt            int64
	Status               WithdrawalStatus
	CreatedAt            time.Time
}

// WithdrawalSettings holds the beneficiary's verified bank destination.
type WithdrawalSettings struct {
	ID            string
	UserID        string
	BankCode      string
	BankName      string
	AccountNumber string
	AccountName   string
	CreatedAt     time.Time
}
