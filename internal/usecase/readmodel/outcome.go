package readmodel

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeLogRM is one row of a variant log table. Details holds the
// variant-specific columns keyed by column name.
type OutcomeLogRM struct {
	ID           uuid.UUID      `json:"id"`
	RunID        string         `json:"run_id"`
	Attempt      int            `json:"attempt"`
	Recipient    string         `json:"recipient"`
	AccountName  string         `json:"account_name"`
	Message      string         `json:"message"`
	Status       string         `json:"status"`
	Succeeded    bool           `json:"succeeded"`
	ResponseData map[string]any `json:"response_data,omitempty"`
	ErrorDetail  *string        `json:"error_detail,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Details      map[string]any `json:"details,omitempty"`
}
