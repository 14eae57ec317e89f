package outcomestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/infra"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver
)

// Fixed-width UTC text keeps lexical order equal to time order for range queries.
const (
	sqliteTimeLayout = "2006-01-02 15:04:05.000000"
	sqliteDateLayout = "2006-01-02"
)

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens path with WAL and a busy timeout so appends from several
// categories can interleave. ":memory:" is pinned to one connection.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(err, "open sqlite outcome store")
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "ping sqlite outcome store")
	}
	return db, nil
}

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

func (s *SQLiteStore) Append(ctx context.Context, o *notification.Outcome) error {
	t, err := tableFor(o.Variant())
	if err != nil {
		return err
	}
	row, err := t.row(o)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertSQL(t), sqliteRow(t, row)...); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to append outcome to "+t.name, err)
	}
	return nil
}

// AppendBatch inserts every outcome in a single transaction.
func (s *SQLiteStore) AppendBatch(ctx context.Context, outcomes []*notification.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	order, groups, err := groupByTable(outcomes)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to begin outcome batch", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range order {
		stmt, err := tx.PrepareContext(ctx, insertSQL(t))
		if err != nil {
			return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to prepare insert into "+t.name, err)
		}
		for _, o := range groups[t.name] {
			row, err := t.row(o)
			if err != nil {
				_ = stmt.Close()
				return err
			}
			if _, err := stmt.ExecContext(ctx, sqliteRow(t, row)...); err != nil {
				_ = stmt.Close()
				return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to insert outcome into "+t.name, err)
			}
		}
		_ = stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to commit outcome batch", err)
	}
	return nil
}

func (s *SQLiteStore) CountOutcomes(ctx context.Context, v notification.Variant, from, to time.Time) (int, error) {
	t, err := tableFor(v)
	if err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE created_at >= ? AND created_at < ?", t.name)
	if err := s.db.QueryRowContext(ctx, query, sqliteTime(from), sqliteTime(to)).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to count "+t.name, err)
	}
	return n, nil
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, v notification.Variant, from, to time.Time, limit, offset int) ([]*readmodel.OutcomeLogRM, error) {
	t, err := tableFor(v)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE created_at >= ? AND created_at < ? ORDER BY created_at DESC, id DESC",
		strings.Join(t.columns(), ", "), t.name)
	args := []any{sqliteTime(from), sqliteTime(to)}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to list "+t.name, err)
	}
	defer rows.Close()

	var out []*readmodel.OutcomeLogRM
	for rows.Next() {
		r := newScanRow(t)
		var created string
		if err := rows.Scan(r.dest(&created)...); err != nil {
			return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to scan "+t.name, err)
		}
		ts, err := time.ParseInLocation(sqliteTimeLayout, created, time.UTC)
		if err != nil {
			return nil, errs.Wrapf(err, "parse created_at %q", created)
		}
		r.rm.CreatedAt = ts
		rm, err := r.finish(t)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to iterate "+t.name, err)
	}
	return out, nil
}

func insertSQL(t table) string {
	cols := t.columns()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
}

// sqliteRow encodes ids, timestamps, dates and the response document as TEXT
// and amounts as REAL.
func sqliteRow(t table, row []any) []any {
	if id, ok := row[idIdx].(uuid.UUID); ok {
		row[idIdx] = id.String()
	}
	if b, ok := row[responseIdx].([]byte); ok {
		if b == nil {
			row[responseIdx] = nil
		} else {
			row[responseIdx] = string(b)
		}
	}
	if ts, ok := row[createdIdx].(time.Time); ok {
		row[createdIdx] = sqliteTime(ts)
	}
	base := len(commonColumns)
	for i, c := range t.extra {
		switch c.kind {
		case kindDate:
			if d, ok := row[base+i].(time.Time); ok {
				row[base+i] = d.Format(sqliteDateLayout)
			}
		case kindNumeric:
			// REAL affinity stores binary floats anyway.
			if d, ok := row[base+i].(decimal.Decimal); ok {
				row[base+i] = d.Round(amountScale).InexactFloat64()
			}
		}
	}
	return row
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
