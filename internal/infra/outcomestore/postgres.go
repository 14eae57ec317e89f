package outcomestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/infra"
	"pride-notify/internal/usecase/readmodel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) Append(ctx context.Context, o *notification.Outcome) error {
	t, err := tableFor(o.Variant())
	if err != nil {
		return err
	}
	row, err := t.row(o)
	if err != nil {
		return err
	}
	pgRow(t, row)

	cols := t.columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := s.pool.Exec(ctx, query, row...); err != nil {
		return s.wrap("failed to append outcome to "+t.name, err)
	}
	return nil
}

// AppendBatch copies every outcome in one transaction, one COPY per table.
func (s *PostgresStore) AppendBatch(ctx context.Context, outcomes []*notification.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	order, groups, err := groupByTable(outcomes)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return s.wrap("failed to begin outcome batch", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range order {
		rows := make([][]any, 0, len(groups[t.name]))
		for _, o := range groups[t.name] {
			row, err := t.row(o)
			if err != nil {
				return err
			}
			pgRow(t, row)
			rows = append(rows, row)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columns(), pgx.CopyFromRows(rows)); err != nil {
			return s.wrap("failed to copy outcomes into "+t.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.wrap("failed to commit outcome batch", err)
	}
	return nil
}

func (s *PostgresStore) CountOutcomes(ctx context.Context, v notification.Variant, from, to time.Time) (int, error) {
	t, err := tableFor(v)
	if err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE created_at >= $1 AND created_at < $2", t.name)
	if err := s.pool.QueryRow(ctx, query, from, to).Scan(&n); err != nil {
		return 0, s.wrap("failed to count "+t.name, err)
	}
	return n, nil
}

// ListOutcomes returns rows newest first. A limit <= 0 returns every row in range.
func (s *PostgresStore) ListOutcomes(ctx context.Context, v notification.Variant, from, to time.Time, limit, offset int) ([]*readmodel.OutcomeLogRM, error) {
	t, err := tableFor(v)
	if err != nil {
		return nil, err
	}

	exprs := []string{
		"id::text", "run_id", "attempt", "recipient", "account_name", "message",
		"status", "succeeded", "response_data::text", "error_detail", "created_at",
	}
	for _, c := range t.extra {
		switch c.kind {
		case kindNumeric:
			exprs = append(exprs, c.name+"::float8")
		case kindDate:
			exprs = append(exprs, "to_char("+c.name+", 'YYYY-MM-DD')")
		default:
			exprs = append(exprs, c.name)
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC, id DESC",
		strings.Join(exprs, ", "), t.name)
	args := []any{from, to}
	if limit > 0 {
		query += " LIMIT $3 OFFSET $4"
		args = append(args, limit, offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("failed to list "+t.name, err)
	}
	defer rows.Close()

	var out []*readmodel.OutcomeLogRM
	for rows.Next() {
		r := newScanRow(t)
		var created time.Time
		if err := rows.Scan(r.dest(&created)...); err != nil {
			return nil, s.wrap("failed to scan "+t.name, err)
		}
		r.rm.CreatedAt = created
		rm, err := r.finish(t)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("failed to iterate "+t.name, err)
	}
	return out, nil
}

func (s *PostgresStore) wrap(msg string, err error) error {
	kind := infra.KindDBFailure
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		kind = infra.KindDuplicateKey
	}
	return infra.WrapRepoErr(s.logger, kind, msg, err)
}

// pgRow adapts a logical row to pgx encoders in place: date columns become
// calendar days, amounts go over the wire as exact NUMERIC and a missing
// response stays NULL.
func pgRow(t table, row []any) {
	if b, ok := row[responseIdx].([]byte); ok && b == nil {
		row[responseIdx] = nil
	}
	base := len(commonColumns)
	for i, c := range t.extra {
		switch c.kind {
		case kindDate:
			if d, ok := row[base+i].(time.Time); ok {
				row[base+i] = dateOnly(d)
			}
		case kindNumeric:
			if d, ok := row[base+i].(decimal.Decimal); ok {
				row[base+i] = pgNumeric(d)
			}
		}
	}
}

func pgNumeric(d decimal.Decimal) pgtype.Numeric {
	d = d.Round(amountScale)
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
