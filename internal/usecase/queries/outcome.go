package queries

//go:generate mockgen -source=outcome.go -destination=mock/outcome.go -package=mock

import (
	"context"
	"strings"
	"time"

	"pride-notify/internal/domain/notification"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/readmodel"
)

const (
	DateLayout      = "2006-01-02"
	DefaultPageSize = 10
	MaxPageSize     = 200
)

type OutcomeLogReadStore interface {
	CountOutcomes(ctx context.Context, v notification.Variant, from, to time.Time) (int, error)
	ListOutcomes(ctx context.Context, v notification.Variant, from, to time.Time, limit, offset int) ([]*readmodel.OutcomeLogRM, error)
}

// DateRange is a whole-day window: both days are included.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) from() time.Time { return r.Start }
func (r DateRange) to() time.Time   { return r.End.AddDate(0, 0, 1) }

type Pagination struct {
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalRecords int `json:"total_records"`
}

type OutcomeLogPage struct {
	Count      int
	Logs       []*readmodel.OutcomeLogRM
	Pagination Pagination
}

type OutcomeLogExport struct {
	Count int
	Logs  []*readmodel.OutcomeLogRM
	Range DateRange
}

type OutcomeQueries interface {
	ParseRange(startDate, endDate string) (DateRange, error)
	List(ctx context.Context, variant string, r DateRange, page, pageSize int) (*OutcomeLogPage, error)
	Export(ctx context.Context, variant string, r DateRange) (*OutcomeLogExport, error)
}

type outcomeQueriesImpl struct {
	repo OutcomeLogReadStore
	loc  *time.Location
}

// NewOutcomeQueries interprets report dates as calendar days in loc.
func NewOutcomeQueries(repo OutcomeLogReadStore, loc *time.Location) OutcomeQueries {
	if loc == nil {
		loc = time.UTC
	}
	return &outcomeQueriesImpl{repo: repo, loc: loc}
}

func (q *outcomeQueriesImpl) ParseRange(startDate, endDate string) (DateRange, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return DateRange{}, errs.Mark(errs.New("please provide both start_date and end_date"), errs.ErrInvalidDateRange)
	}
	start, err := time.ParseInLocation(DateLayout, startDate, q.loc)
	if err != nil {
		return DateRange{}, errs.Mark(errs.New("invalid date format, use YYYY-MM-DD"), errs.ErrInvalidDateRange)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, q.loc)
	if err != nil {
		return DateRange{}, errs.Mark(errs.New("invalid date format, use YYYY-MM-DD"), errs.ErrInvalidDateRange)
	}
	if end.Before(start) {
		return DateRange{}, errs.Mark(errs.New("end_date is before start_date"), errs.ErrInvalidDateRange)
	}
	return DateRange{Start: start, End: end}, nil
}

// List returns one page, newest first. Pages past the end come back empty.
func (q *outcomeQueriesImpl) List(ctx context.Context, variant string, r DateRange, page, pageSize int) (*OutcomeLogPage, error) {
	v, err := notification.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	pageSize = validatePageSize(pageSize)

	total, err := q.repo.CountOutcomes(ctx, v, r.from(), r.to())
	if err != nil {
		return nil, err
	}

	logs := []*readmodel.OutcomeLogRM{}
	offset := (page - 1) * pageSize
	if offset < total {
		logs, err = q.repo.ListOutcomes(ctx, v, r.from(), r.to(), pageSize, offset)
		if err != nil {
			return nil, err
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	return &OutcomeLogPage{
		Count: total,
		Logs:  logs,
		Pagination: Pagination{
			TotalPages:   totalPages,
			CurrentPage:  page,
			PerPage:      pageSize,
			TotalRecords: total,
		},
	}, nil
}

func (q *outcomeQueriesImpl) Export(ctx context.Context, variant string, r DateRange) (*OutcomeLogExport, error) {
	v, err := notification.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	logs, err := q.repo.ListOutcomes(ctx, v, r.from(), r.to(), 0, 0)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*readmodel.OutcomeLogRM{}
	}
	return &OutcomeLogExport{Count: len(logs), Logs: logs, Range: r}, nil
}

func validatePageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
