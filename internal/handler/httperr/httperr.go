// Package httperr shapes every error body the API returns.
package httperr

import (
	"github.com/gin-gonic/gin"
)

// requestIDKey mirrors the key the logging middleware stores the request id under.
const requestIDKey = "request_id"

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail    any    `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func New(c *gin.Context, status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail, RequestID: c.GetString(requestIDKey)}
	resp.Error.Message = msg
	return resp
}

// AbortWithError replies with msg and keeps err on the context so the
// error middleware can log it with the request.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: AbortWithError needs a non-nil error")
	}

	resp := New(c, status, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
