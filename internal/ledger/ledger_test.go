package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
	"crowdfund/internal/sqlinline"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// stubTx scripts a transaction: QueryRow answers are keyed by the exact query
// constant, Exec calls are recorded. Unimplemented pgx.Tx methods panic, which
// is the failure we want if the code under test wanders off script.
type stubTx struct {
	pgx.Tx
	rows       map[string]stubRow
	execs      []execCall
	committed  bool
	rolledBack bool
}

type execCall struct {
	query string
	args  []any
}

func (t *stubTx) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	return t.rows[query]
}

func (t *stubTx) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, nil
}

func (t *stubTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type stubDB struct {
	tx *stubTx
}

func (d *stubDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func scanInto(vals ...any) func(dest ...any) error {
	return func(dest ...any) error {
		for i, v := range vals {
			switch p := dest[i].(type) {
			case *string:
				*p = v.(string)
			case *int64:
				*p = v.(int64)
			default:
				return errors.New("unsupported scan destination")
			}
		}
		return nil
	}
}

func newTestLedger(tx *stubTx) *Ledger {
	return New(&stubDB{tx: tx}, nil, zerolog.Nop())
}

func TestFinalizeCreditsOnce(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QApproveDonation:     {scan: scanInto("cam-1", int64(5000_00))},
		sqlinline.QCreditCampaignFunds: {scan: scanInto("usr-1")},
	}}
	l := newTestLedger(tx)

	res, err := l.Finalize(context.Background(), FinalizeInput{
		DonationID: "don-1",
		Reference:  "ref-1",
		Channel:    "card",
		CommentID:  "com-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "don-1", res.DonationID)
	assert.Equal(t, "cam-1", res.CampaignID)
	assert.Equal(t, int64(5000_00), res.AmountInt)
	assert.False(t, res.AlreadyFinal)
	assert.True(t, tx.committed)

	require.Len(t, tx.execs, 2)
	assert.Equal(t, sqlinline.QCreditUserBalance, tx.execs[0].query)
	assert.Equal(t, []any{"usr-1", int64(5000_00)}, tx.execs[0].args)
	assert.Equal(t, sqlinline.QActivateComment, tx.execs[1].query)
	assert.Equal(t, []any{"com-1"}, tx.execs[1].args)
}

func TestFinalizeWithoutComment(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QApproveDonation:     {scan: scanInto("cam-1", int64(100_00))},
		sqlinline.QCreditCampaignFunds: {scan: scanInto("usr-1")},
	}}
	l := newTestLedger(tx)

	_, err := l.Finalize(context.Background(), FinalizeInput{DonationID: "don-1", Reference: "ref-1"})
	require.NoError(t, err)
	require.Len(t, tx.execs, 1)
	assert.Equal(t, sqlinline.QCreditUserBalance, tx.execs[0].query)
}

func TestFinalizeDuplicateCallback(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		// pending-status guard matches nothing: the donation is already approved
		sqlinline.QSelectDonationFinalState: {scan: scanInto("cam-1", string(domain.DonationApproved))},
	}}
	l := newTestLedger(tx)

	res, err := l.Finalize(context.Background(), FinalizeInput{DonationID: "don-1", Reference: "ref-1"})
	require.NoError(t, err)
	assert.True(t, res.AlreadyFinal)
	assert.Equal(t, "cam-1", res.CampaignID)
	assert.Empty(t, tx.execs, "a replayed callback must not credit anything")
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestFinalizeRejectedDonation(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QSelectDonationFinalState: {scan: scanInto("cam-1", "rejected")},
	}}
	l := newTestLedger(tx)

	_, err := l.Finalize(context.Background(), FinalizeInput{DonationID: "don-1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	assert.Empty(t, tx.execs)
}

func TestFinalizeUnknownDonation(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{}}
	l := newTestLedger(tx)

	_, err := l.Finalize(context.Background(), FinalizeInput{DonationID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestWithdrawal(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QDebitUserBalance: {scan: scanInto(int64(2000_00))},
		sqlinline.QInsertWithdrawal: {scan: scanInto("wd-1")},
	}}
	l := newTestLedger(tx)

	id, err := l.RequestWithdrawal(context.Background(), "usr-1", "ws-1", 3000_00)
	require.NoError(t, err)
	assert.Equal(t, "wd-1", id)
	assert.True(t, tx.committed)
}

func TestRequestWithdrawalInsufficientFunds(t *testing.T) {
	// the guarded debit matches no row when the balance is too low
	tx := &stubTx{rows: map[string]stubRow{}}
	l := newTestLedger(tx)

	_, err := l.RequestWithdrawal(context.Background(), "usr-1", "ws-1", 3000_00)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.False(t, tx.committed)
}

func TestRequestWithdrawalInvalidAmount(t *testing.T) {
	l := newTestLedger(&stubTx{})

	_, err := l.RequestWithdrawal(context.Background(), "usr-1", "ws-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRejectWithdrawalRefunds(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QRejectWithdrawal: {scan: scanInto("usr-1", int64(3000_00))},
	}}
	l := newTestLedger(tx)

	require.NoError(t, l.RejectWithdrawal(context.Background(), "wd-1"))
	require.Len(t, tx.execs, 1)
	assert.Equal(t, sqlinline.QCreditUserBalance, tx.execs[0].query)
	assert.Equal(t, []any{"usr-1", int64(3000_00)}, tx.execs[0].args)
	assert.True(t, tx.committed)
}

func TestApproveWithdrawalLeavesBalanceAlone(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QApproveWithdrawal: {scan: scanInto("usr-1", int64(3000_00))},
	}}
	l := newTestLedger(tx)

	require.NoError(t, l.ApproveWithdrawal(context.Background(), "wd-1"))
	assert.Empty(t, tx.execs, "the amount was held back at request time")
	assert.True(t, tx.committed)
}

func TestApproveWithdrawalAlreadySettled(t *testing.T) {
	tx := &stubTx{rows: map[string]stubRow{
		sqlinline.QSelectWithdrawalByID: {scan: func(dest ...any) error {
			*(dest[0].(*string)) = "wd-1"
			*(dest[1].(*string)) = "usr-1"
			*(dest[2].(*string)) = "ws-1"
			*(dest[3].(*int64)) = 3000_00
			*(dest[4].(*string)) = "approved"
			return nil
		}},
	}}
	l := newTestLedger(tx)

	err := l.ApproveWithdrawal(context.Background(), "wd-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}
