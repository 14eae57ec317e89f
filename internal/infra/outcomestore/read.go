package outcomestore

import (
	"database/sql"
	"encoding/json"

	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/readmodel"

	"github.com/google/uuid"
)

// scanRow collects one log row regardless of dialect. The caller supplies
// the created_at target since the dialects store timestamps differently.
type scanRow struct {
	id        string
	rm        readmodel.OutcomeLogRM
	response  sql.NullString
	errDetail sql.NullString
	extras    []any
}

func newScanRow(t table) *scanRow {
	r := &scanRow{extras: make([]any, len(t.extra))}
	for i, c := range t.extra {
		if c.kind == kindNumeric {
			r.extras[i] = &sql.NullFloat64{}
		} else {
			r.extras[i] = &sql.NullString{}
		}
	}
	return r
}

func (r *scanRow) dest(createdAt any) []any {
	d := []any{
		&r.id,
		&r.rm.RunID,
		&r.rm.Attempt,
		&r.rm.Recipient,
		&r.rm.AccountName,
		&r.rm.Message,
		&r.rm.Status,
		&r.rm.Succeeded,
		&r.response,
		&r.errDetail,
		createdAt,
	}
	return append(d, r.extras...)
}

func (r *scanRow) finish(t table) (*readmodel.OutcomeLogRM, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return nil, errs.Wrapf(err, "parse outcome id %q", r.id)
	}
	rm := r.rm
	rm.ID = id

	if r.response.Valid && r.response.String != "" {
		if err := json.Unmarshal([]byte(r.response.String), &rm.ResponseData); err != nil {
			return nil, errs.Wrap(err, "decode response_data")
		}
	}
	if r.errDetail.Valid {
		detail := r.errDetail.String
		rm.ErrorDetail = &detail
	}

	if len(t.extra) > 0 {
		rm.Details = make(map[string]any, len(t.extra))
		for i, c := range t.extra {
			switch v := r.extras[i].(type) {
			case *sql.NullFloat64:
				if v.Valid {
					rm.Details[c.name] = v.Float64
				} else {
					rm.Details[c.name] = nil
				}
			case *sql.NullString:
				if v.Valid {
					rm.Details[c.name] = v.String
				} else {
					rm.Details[c.name] = nil
				}
			}
		}
	}
	return &rm, nil
}
