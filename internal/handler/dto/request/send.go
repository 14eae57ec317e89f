package request

import "mime/multipart"

// SendSMSRequest carries upstream-shaped records; each is classified and rendered
// exactly like a record fetched from the ESB.
type SendSMSRequest struct {
	Records []map[string]any `json:"records" binding:"required,min=1,max=500"`
}

// SendEmailRequest binds from multipart/form-data (with attachments) or JSON.
// One of HTMLMessage or Message is required.
type SendEmailRequest struct {
	SenderEmail string                  `form:"sender_email" json:"sender_email" binding:"omitempty,email"`
	Subject     string                  `form:"subject" json:"subject" binding:"required"`
	HTMLMessage string                  `form:"html_message" json:"html_message"`
	Message     string                  `form:"message" json:"message"`
	To          []string                `form:"to" json:"to" binding:"required,min=1,dive,email"`
	Cc          []string                `form:"cc" json:"cc" binding:"omitempty,dive,email"`
	Attachments []*multipart.FileHeader `form:"attachments" json:"-"`
}
