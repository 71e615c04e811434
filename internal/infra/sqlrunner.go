package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface stores depend on. SQLRunner implements it
// over a pgx pool; tests substitute in-memory fakes.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// IsNoRows reports whether err is pgx's empty-result sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Every inline query starts with a `--sql <uuid>` audit line. The uuid ties
// a log entry to the exact constant in internal/sqlinline, since money moves
// through these queries and slow ones need to be attributable.
var auditLinePattern = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)

var errMissingAuditLine = errors.New("sql query missing --sql audit line")

// SQLRunner executes audited queries against the pool, logging each one
// under its audit id.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

var _ SQLExecutor = (*SQLRunner)(nil)

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	id, body, err := splitAuditLine(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, err := r.Pool.Exec(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", id).Msg("exec failed")
		return tag, err
	}
	r.Logger.Debug().Str("sql", id).Int64("rows", tag.RowsAffected()).Msg("exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	id, body, err := splitAuditLine(query)
	if err != nil {
		return failedRow{err: err}
	}
	r.Logger.Debug().Str("sql", id).Msg("query_row")
	return auditedRow{row: r.Pool.QueryRow(ctx, body, args...), logger: r.Logger, id: id}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	id, body, err := splitAuditLine(query)
	if err != nil {
		return nil, err
	}
	rows, err := r.Pool.Query(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", id).Msg("query failed")
		return nil, err
	}
	r.Logger.Debug().Str("sql", id).Msg("query")
	return rows, nil
}

type auditedRow struct {
	row    pgx.Row
	logger zerolog.Logger
	id     string
}

func (a auditedRow) Scan(dest ...any) error {
	err := a.row.Scan(dest...)
	if err != nil && !IsNoRows(err) {
		a.logger.Error().Err(err).Str("sql", a.id).Msg("scan failed")
	}
	return err
}

type failedRow struct {
	err error
}

func (f failedRow) Scan(dest ...any) error {
	return f.err
}

// splitAuditLine separates the audit id from the query body. A query without
// a valid audit line never reaches the database.
func splitAuditLine(query string) (id, body string, err error) {
	trimmed := strings.TrimSpace(query)
	first, rest, _ := strings.Cut(trimmed, "\n")
	match := auditLinePattern.FindStringSubmatch(strings.TrimSpace(first))
	if match == nil {
		return "", "", errMissingAuditLine
	}
	return match[1], rest, nil
}
