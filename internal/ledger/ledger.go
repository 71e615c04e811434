// Package ledger owns the donation lifecycle and every financial mutation to
// campaign funds and beneficiary balances. All mutations are atomic
// in-database increments inside a single transaction; balances are never
// read-modified-written in application memory.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// DB starts transactions. *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Ledger struct {
	db  DB
	sql infra.SQLExecutor
	log zerolog.Logger
}

func New(db DB, sql infra.SQLExecutor, log zerolog.Logger) *Ledger {
	return &Ledger{db: db, sql: sql, log: log}
}

// CampaignBySlug loads a live campaign for the donation flow.
func (l *Ledger) CampaignBySlug(ctx context.Context, slug string) (*domain.Campaign, error) {
	return scanCampaign(l.sql.QueryRow(ctx, sqlinline.QSelectCampaignBySlug, slug))
}

func (l *Ledger) CampaignByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return scanCampaign(l.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, id))
}

func (l *Ledger) RewardByID(ctx context.Context, id string) (*domain.Reward, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QSelectRewardByID, id)
	var r domain.Reward
	err := row.Scan(&r.ID, &r.CampaignID, &r.Title, &r.Description, &r.AmountInt, &r.RequiresShipping, &r.Status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reward: %w", err)
	}
	return &r, nil
}

func (l *Ledger) DonationByID(ctx context.Context, id string) (*domain.Donation, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QSelectDonationByID, id)
	var d domain.Donation
	var gateway string
	err := row.Scan(&d.ID, &d.CampaignID, &d.RewardID, &d.FirstName, &d.LastName, &d.Email, &d.PhoneNumber,
		&d.AmountInt, &gateway, &d.Channel, &d.TransactionReference, (*string)(&d.Status),
		&d.Anonymous, &d.RequiresShipping, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load donation: %w", err)
	}
	d.Gateway = domain.GatewayName(gateway)
	return &d, nil
}

// CreateDonation inserts a pending donation and fills in its id. The stored
// amount excludes the platform fee.
func (l *Ledger) CreateDonation(ctx context.Context, d *domain.Donation) error {
	row := l.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		d.CampaignID, d.RewardID, d.FirstName, d.LastName, d.Email, d.PhoneNumber,
		d.AmountInt, string(d.Gateway), d.Anonymous, d.RequiresShipping,
		d.ShippingCountry, d.ShippingState, d.ShippingCity, d.ShippingAddress, d.ShippingPostalCode)
	if err := row.Scan(&d.ID); err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	d.Status = domain.DonationPending
	return nil
}

// CreateComment inserts an inactive donor comment and returns its id.
func (l *Ledger) CreateComment(ctx context.Context, c *domain.Comment) (string, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QInsertComment,
		c.CampaignID, c.FirstName, c.LastName, c.Email, c.Body, c.Anonymous)
	if err := row.Scan(&c.ID); err != nil {
		return "", fmt.Errorf("insert comment: %w", err)
	}
	c.Status = domain.CommentInactive
	return c.ID, nil
}

// FinalizeInput carries the verified transaction details into finalization.
type FinalizeInput struct {
	DonationID string
	Reference  string
	Channel    string
	CommentID  string
}

// FinalizeResult reports which campaign was credited, or that a previous
// delivery of the same callback already settled the donation.
type FinalizeResult struct {
	DonationID   string
	CampaignID   string
	AmountInt    int64
	AlreadyFinal bool
}

// Finalize settles an approved donation exactly once. In one transaction it
// flips the donation pending->approved, records the channel and reference,
// credits the campaign's funds_raised and the owner's balance by the stored
// donation amount, and activates the donor comment. A replayed callback fails
// the pending-status guard and returns the prior outcome without re-crediting.
func (l *Ledger) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin finalize: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var campaignID string
	var amount int64
	err = tx.QueryRow(ctx, sqlinline.QApproveDonation, in.DonationID, in.Channel, in.Reference).Scan(&campaignID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return l.finalState(ctx, tx, in.DonationID)
	}
	if err != nil {
		return nil, fmt.Errorf("approve donation %s: %w", in.DonationID, err)
	}

	var ownerID string
	if err := tx.QueryRow(ctx, sqlinline.QCreditCampaignFunds, campaignID, amount).Scan(&ownerID); err != nil {
		return nil, fmt.Errorf("credit campaign %s: %w", campaignID, err)
	}
	if _, err := tx.Exec(ctx, sqlinline.QCreditUserBalance, ownerID, amount); err != nil {
		return nil, fmt.Errorf("credit beneficiary %s: %w", ownerID, err)
	}
	if in.CommentID != "" {
		if _, err := tx.Exec(ctx, sqlinline.QActivateComment, in.CommentID); err != nil {
			return nil, fmt.Errorf("activate comment %s: %w", in.CommentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finalize: %w", err)
	}

	l.log.Info().
		Str("donation_id", in.DonationID).
		Str("campaign_id", campaignID).
		Int64("amount_int", amount).
		Msg("donation finalized")

	return &FinalizeResult{DonationID: in.DonationID, CampaignID: campaignID, AmountInt: amount}, nil
}

func (l *Ledger) finalState(ctx context.Context, tx pgx.Tx, donationID string) (*FinalizeResult, error) {
	var campaignID, status string
	err := tx.QueryRow(ctx, sqlinline.QSelectDonationFinalState, donationID).Scan(&campaignID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load donation %s state: %w", donationID, err)
	}
	if status != string(domain.DonationApproved) {
		return nil, fmt.Errorf("donation %s is %s: %w", donationID, status, domain.ErrAlreadyFinalized)
	}
	l.log.Warn().
		Str("donation_id", donationID).
		Str("campaign_id", campaignID).
		Msg("duplicate callback for finalized donation")
	return &FinalizeResult{DonationID: donationID, CampaignID: campaignID, AlreadyFinal: true}, nil
}

// RequestWithdrawal holds back the requested amount from the beneficiary's
// balance and records a pending payout. The guarded debit refuses to overdraw.
func (l *Ledger) RequestWithdrawal(ctx context.Context, userID, settingsID string, amount int64) (string, error) {
	if amount <= 0 {
		return "", domain.ErrInvalidAmount
	}
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin withdrawal: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var remaining int64
	err = tx.QueryRow(ctx, sqlinline.QDebitUserBalance, userID, amount).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrInsufficientFunds
	}
	if err != nil {
		return "", fmt.Errorf("debit balance for %s: %w", userID, err)
	}

	var withdrawalID string
	if err := tx.QueryRow(ctx, sqlinline.QInsertWithdrawal, userID, settingsID, amount).Scan(&withdrawalID); err != nil {
		return "", fmt.Errorf("insert withdrawal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit withdrawal: %w", err)
	}

	l.log.Info().
		Str("withdrawal_id", withdrawalID).
		Str("user_id", userID).
		Int64("amount_int", amount).
		Int64("remaining_int", remaining).
		Msg("withdrawal requested")
	return withdrawalID, nil
}

// ApproveWithdrawal marks a pending payout approved. The amount was already
// held back at request time, so no balance change happens here.
func (l *Ledger) ApproveWithdrawal(ctx context.Context, id string) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve withdrawal: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var userID string
	var amount int64
	err = tx.QueryRow(ctx, sqlinline.QApproveWithdrawal, id).Scan(&userID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return l.withdrawalConflict(ctx, tx, id)
	}
	if err != nil {
		return fmt.Errorf("approve withdrawal %s: %w", id, err)
	}
	return tx.Commit(ctx)
}

// RejectWithdrawal marks a pending payout rejected and returns the held-back
// amount to the beneficiary.
func (l *Ledger) RejectWithdrawal(ctx context.Context, id string) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reject withdrawal: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var userID string
	var amount int64
	err = tx.QueryRow(ctx, sqlinline.QRejectWithdrawal, id).Scan(&userID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return l.withdrawalConflict(ctx, tx, id)
	}
	if err != nil {
		return fmt.Errorf("reject withdrawal %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, sqlinline.QCreditUserBalance, userID, amount); err != nil {
		return fmt.Errorf("refund balance for %s: %w", userID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	l.log.Info().
		Str("withdrawal_id", id).
		Str("user_id", userID).
		Int64("amount_int", amount).
		Msg("withdrawal rejected, balance refunded")
	return nil
}

func (l *Ledger) withdrawalConflict(ctx context.Context, tx pgx.Tx, id string) error {
	var w domain.Withdrawal
	err := tx.QueryRow(ctx, sqlinline.QSelectWithdrawalByID, id).
		Scan(&w.ID, &w.UserID, &w.WithdrawalSettingsID, &w.AmountInt, (*string)(&w.Status), &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load withdrawal %s: %w", id, err)
	}
	return fmt.Errorf("withdrawal %s is %s: %w", id, w.Status, domain.ErrAlreadyFinalized)
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var expiresAt *time.Time
	err := row.Scan(&c.ID, &c.UserID, &c.CategoryID, &c.Slug, &c.Title, &c.Summary,
		&c.GoalInt, &c.FundsRaised, &c.Featured, &c.IsComplete, &c.Status, &expiresAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	c.ExpiresAt = expiresAt
	return &c, nil
}
