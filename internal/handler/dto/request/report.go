package request

// ReportQuery is shared by the paginated and export report endpoints.
type ReportQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1"`
}

type DispatchQuery struct {
	Schedule bool `form:"schedule"`
}
