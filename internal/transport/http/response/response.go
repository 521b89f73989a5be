package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest         = 40000
	CodeEmailExists        = 40002
	CodeNotAnImage         = 40003
	CodeImageTooLarge      = 40004
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeUserNotFound       = 40401
	CodeInternalServer     = 50000
	CodeProcessingFailed   = 50001
)

// ErrorBody is the payload of every non-2xx JSON response.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// OK writes data as the response body without an envelope; clients read
// fields such as access_token at the top level.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus, code int, detail string) {
	c.JSON(httpStatus, ErrorBody{
		Detail: detail,
		Code:   code,
	})
}
