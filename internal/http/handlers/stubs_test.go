package handlers

import (
	"context"
	"fmt"
	"net/url"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"crowdfund/internal/domain"
	"crowdfund/internal/gateway"
	"crowdfund/internal/infra"
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

// rowOf builds a row that copies vals into the scan destinations positionally.
func rowOf(vals ...any) stubRow {
	return stubRow{scan: func(dest ...any) error {
		if len(dest) != len(vals) {
			return fmt.Errorf("scan expects %d destinations, got %d", len(vals), len(dest))
		}
		for i, v := range vals {
			rv := reflect.ValueOf(v)
			dv := reflect.ValueOf(dest[i]).Elem()
			if !rv.Type().AssignableTo(dv.Type()) {
				return fmt.Errorf("cannot scan %T into %T at position %d", v, dest[i], i)
			}
			dv.Set(rv)
		}
		return nil
	}}
}

// stubRows walks a fixed result set row by row.
type stubRows struct {
	data [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in stub rows")
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	return rowOf(r.data[r.idx-1]...).Scan(dest...)
}

// stubSQL answers QueryRow and Query by the exact query constant. A QueryRow
// off script scans as no rows; a Query off script yields an empty result set.
type stubSQL struct {
	rows map[string]stubRow
	sets map[string][][]any
}

func (s *stubSQL) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	return s.rows[query]
}

func (s *stubSQL) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubSQL) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	return &stubRows{data: s.sets[query]}, nil
}

var _ infra.SQLExecutor = (*stubSQL)(nil)

type stubStore struct {
	campaign *domain.Campaign
	reward   *domain.Reward
}

func (s *stubStore) CampaignBySlug(_ context.Context, slug string) (*domain.Campaign, error) {
	if s.campaign == nil || s.campaign.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.campaign, nil
}

func (s *stubStore) RewardByID(_ context.Context, id string) (*domain.Reward, error) {
	if s.reward == nil || s.reward.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.reward, nil
}

func (s *stubStore) CreateDonation(_ context.Context, d *domain.Donation) error {
	d.ID = "11111111-1111-1111-1111-111111111111"
	d.Status = domain.DonationPending
	return nil
}

func (s *stubStore) CreateComment(_ context.Context, c *domain.Comment) (string, error) {
	c.ID = "22222222-2222-2222-2222-222222222222"
	return c.ID, nil
}

type stubGateway struct {
	name      domain.GatewayName
	initErr   error
	lastInit  *gateway.InitializeRequest
	record    *gateway.TransactionRecord
	verifyErr error
	callback  *gateway.Callback
	cbErr     error
}

func (g *stubGateway) Name() domain.GatewayName { return g.name }

func (g *stubGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.lastInit = &req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.InitializeResult{AuthorizationURL: "https://checkout.example.com/" + req.DonationID}, nil
}

func (g *stubGateway) Verify(context.Context, string) (*gateway.TransactionRecord, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.record, nil
}

func (g *stubGateway) ParseCallback(url.Values) (*gateway.Callback, error) {
	if g.cbErr != nil {
		return nil, g.cbErr
	}
	if g.callback == nil {
		return nil, domain.ErrMalformedCallback
	}
	return g.callback, nil
}
