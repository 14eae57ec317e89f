package response

import (
	"time"

	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/queries"
	"pride-notify/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OutcomeLogResponse struct {
	ID           string         `json:"id"`
	RunID        string         `json:"run_id"`
	Attempt      int            `json:"attempt"`
	Recipient    string         `json:"recipient"`
	AccountName  string         `json:"account_name"`
	Message      string         `json:"message"`
	Status       string         `json:"status"`
	Succeeded    bool           `json:"succeeded"`
	ResponseData map[string]any `json:"response_data"`
	ErrorDetail  *string        `json:"error_detail"`
	CreatedAt    string         `json:"created_at"`
	Details      map[string]any `json:"details,omitempty"`
}

type OutcomeLogPageResponse struct {
	Count      int                   `json:"count"`
	Logs       []*OutcomeLogResponse `json:"logs"`
	Pagination queries.Pagination    `json:"pagination"`
}

type DateRangeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type OutcomeLogExportResponse struct {
	Data      []*OutcomeLogResponse `json:"data"`
	Count     int                   `json:"count"`
	DateRange DateRangeResponse     `json:"date_range"`
}

var copyOption = copier.Option{
	DeepCopy: true,
	Converters: []copier.TypeConverter{
		{
			SrcType: uuid.UUID{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(uuid.UUID).String(), nil
			},
		},
		{
			SrcType: time.Time{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(time.Time).Format(time.RFC3339), nil
			},
		},
	},
}

func FromOutcomeLogs(rms []*readmodel.OutcomeLogRM) ([]*OutcomeLogResponse, error) {
	out := make([]*OutcomeLogResponse, 0, len(rms))
	if err := copier.CopyWithOption(&out, &rms, copyOption); err != nil {
		return nil, errs.Wrap(err, "copy outcome logs")
	}
	return out, nil
}

func FromOutcomeLogPage(p *queries.OutcomeLogPage) (*OutcomeLogPageResponse, error) {
	logs, err := FromOutcomeLogs(p.Logs)
	if err != nil {
		return nil, err
	}
	return &OutcomeLogPageResponse{Count: p.Count, Logs: logs, Pagination: p.Pagination}, nil
}

func FromOutcomeLogExport(e *queries.OutcomeLogExport) (*OutcomeLogExportResponse, error) {
	logs, err := FromOutcomeLogs(e.Logs)
	if err != nil {
		return nil, err
	}
	return &OutcomeLogExportResponse{
		Data:  logs,
		Count: e.Count,
		DateRange: DateRangeResponse{
			StartDate: e.Range.Start.Format(queries.DateLayout),
			EndDate:   e.Range.End.Format(queries.DateLayout),
		},
	}, nil
}
