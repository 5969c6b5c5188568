package middleware

import (
	"net/http"

	"resellops/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error converts the last error recorded on the context into the JSON error
// envelope. Internal errors are logged with detail and returned with a
// generic message.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		if base, ok := errutil.As(err.Err); ok {
			if base.Code == errutil.StatusInternal {
				zap.L().Error("internal error",
					zap.String("path", c.FullPath()),
					zap.Error(err.Err),
				)
				c.JSON(http.StatusInternalServerError, errutil.BaseError{
					Code:    errutil.StatusInternal,
					Message: "internal error",
				}.JSON())
				return
			}
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		zap.L().Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err.Err),
		)
		c.JSON(http.StatusInternalServerError, errutil.BaseError{
			Code:    errutil.StatusInternal,
			Message: "internal error",
		}.JSON())
	}
}
