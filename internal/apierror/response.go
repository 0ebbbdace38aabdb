package apierror

import (
	"github.com/gin-gonic/gin"
)

// Body is the error payload returned to clients
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every error response
type Envelope struct {
	Success bool `json:"success"`
	Error   Body `json:"error"`
}

// Abort writes err as an error envelope and stops the handler chain.
// The HTTP status always equals the envelope code.
func Abort(c *gin.Context, err error, production bool) {
	apiErr := From(err)
	_ = c.Error(apiErr)
	c.AbortWithStatusJSON(apiErr.Code, Envelope{
		Success: false,
		Error: Body{
			Code:    apiErr.Code,
			Message: apiErr.Public(production),
		},
	})
}
