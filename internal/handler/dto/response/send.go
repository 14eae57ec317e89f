package response

type SendEmailResponse struct {
	Success   int    `json:"success"`
	Message   string `json:"message"`
	OutcomeID string `json:"outcome_id"`
}
