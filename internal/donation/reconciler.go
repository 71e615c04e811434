package donation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/gateway"
	"crowdfund/internal/ledger"
)

// Finalizer is the ledger surface the reconciler needs.
type Finalizer interface {
	Finalize(ctx context.Context, in ledger.FinalizeInput) (*ledger.FinalizeResult, error)
}

// OutcomeStatus is the settled disposition of one gateway callback.
type OutcomeStatus string

const (
	OutcomeApproved  OutcomeStatus = "approved"
	OutcomeCancelled OutcomeStatus = "cancelled"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is what the callback handler renders to the returning donor.
// Message is always safe to show; provider detail stays in the logs.
type Outcome struct {
	Status       OutcomeStatus
	DonationID   string
	CampaignID   string
	AmountInt    int64
	Message      string
	AlreadyFinal bool
}

// Reconciler settles donations when a provider redirects the donor back.
// Every approval is re-verified against the provider's API before the ledger
// is touched; the redirect query alone is never trusted.
type Reconciler struct {
	ledger   Finalizer
	gateways *gateway.Registry
	log      zerolog.Logger

	verifyTries uint
}

func NewReconciler(l Finalizer, gateways *gateway.Registry, log zerolog.Logger) *Reconciler {
	return &Reconciler{ledger: l, gateways: gateways, log: log, verifyTries: 3}
}

const failedMessage = "We could not confirm your payment. You have not been charged twice; please try again."

// Reconcile parses the provider redirect, verifies the transaction with the
// provider and finalizes the donation. fallbackDonationID is the donation id
// recovered from the donor's signed session cookie, used when the provider
// callback carries no metadata of its own (cancellations, or providers that
// only echo a reference).
func (r *Reconciler) Reconcile(ctx context.Context, gatewayName string, query url.Values, fallbackDonationID string) (*Outcome, error) {
	gwName, err := domain.ParseGatewayName(gatewayName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedCallback, err)
	}
	gw, err := r.gateways.Get(gwName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedCallback, err)
	}

	cb, err := gw.ParseCallback(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedCallback, err)
	}
	if cb.Cancelled {
		if fallbackDonationID == "" {
			return nil, fmt.Errorf("%w: cancellation without donation context", domain.ErrMalformedCallback)
		}
		r.log.Info().
			Str("donation_id", fallbackDonationID).
			Str("gateway", string(gwName)).
			Msg("donation cancelled by donor")
		return &Outcome{
			Status:     OutcomeCancelled,
			DonationID: fallbackDonationID,
			Message:    "You cancelled the payment. Your donation was not completed.",
		}, nil
	}

	rec, err := r.verify(ctx, gw, cb.Reference)
	if err != nil {
		r.log.Error().Err(err).
			Str("gateway", string(gwName)).
			Str("reference", cb.Reference).
			Str("donation_id", fallbackDonationID).
			Msg("transaction verification failed")
		return &Outcome{
			Status:     OutcomeFailed,
			DonationID: fallbackDonationID,
			Message:    failedMessage,
		}, nil
	}

	donationID := rec.DonationID
	if donationID == "" {
		donationID = fallbackDonationID
	}
	if donationID == "" {
		return nil, fmt.Errorf("%w: verified transaction %s carries no donation id", domain.ErrMalformedCallback, cb.Reference)
	}

	if rec.Cancelled {
		r.log.Info().
			Str("donation_id", donationID).
			Str("gateway", string(gwName)).
			Str("reference", rec.Reference).
			Msg("provider reports transaction abandoned")
		return &Outcome{
			Status:     OutcomeCancelled,
			DonationID: donationID,
			Message:    "You cancelled the payment. Your donation was not completed.",
		}, nil
	}
	if !rec.Succeeded {
		r.log.Warn().
			Str("donation_id", donationID).
			Str("gateway", string(gwName)).
			Str("reference", rec.Reference).
			Str("provider_message", rec.Message).
			Msg("provider reports transaction not successful")
		return &Outcome{
			Status:     OutcomeFailed,
			DonationID: donationID,
			Message:    failedMessage,
		}, nil
	}

	res, err := r.ledger.Finalize(ctx, ledger.FinalizeInput{
		DonationID: donationID,
		Reference:  rec.Reference,
		Channel:    rec.Channel,
		CommentID:  rec.CommentID,
	})
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Status:       OutcomeApproved,
		DonationID:   res.DonationID,
		CampaignID:   res.CampaignID,
		AmountInt:    res.AmountInt,
		Message:      "Thank you! Your donation has been received.",
		AlreadyFinal: res.AlreadyFinal,
	}, nil
}

// verify calls the provider with a short exponential backoff. Only transient
// transport and 5xx failures are retried; a definitive provider answer is
// returned as-is.
func (r *Reconciler) verify(ctx context.Context, gw gateway.Client, reference string) (*gateway.TransactionRecord, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, func() (*gateway.TransactionRecord, error) {
		rec, err := gw.Verify(ctx, reference)
		if err != nil {
			if errors.Is(err, domain.ErrGatewayUnavailable) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return rec, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(r.verifyTries))
}
