package response

import (
	"pride-notify/internal/usecase/dispatch"
)

type RejectionResponse struct {
	Index  int      `json:"index"`
	Fields []string `json:"fields"`
}

type BatchResultResponse struct {
	Category       string              `json:"category"`
	RunID          string              `json:"run_id"`
	Attempt        int                 `json:"attempt"`
	State          string              `json:"state"`
	Fetched        int                 `json:"fetched"`
	Sent           int                 `json:"sent"`
	Failed         int                 `json:"failed"`
	Rejected       []RejectionResponse `json:"rejected"`
	Error          string              `json:"error,omitempty"`
	DurationMillis int64               `json:"duration_ms"`
}

type ScheduledDispatchResponse struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func FromBatchResult(r *dispatch.BatchResult) *BatchResultResponse {
	res := &BatchResultResponse{
		Category:       string(r.Category),
		RunID:          r.RunID,
		Attempt:        r.Attempt,
		State:          string(r.State),
		Fetched:        r.Fetched,
		Sent:           r.Succeeded(),
		Failed:         r.Failed(),
		Rejected:       make([]RejectionResponse, 0, len(r.Rejections)),
		DurationMillis: r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	}
	for _, rej := range r.Rejections {
		res.Rejected = append(res.Rejected, RejectionResponse{Index: rej.Index, Fields: rej.Fields})
	}
	if r.Err != nil {
		res.Error = r.Err.Error()
	}
	return res
}
