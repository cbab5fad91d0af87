package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/materials-catalog/internal/domain/aggregates"
	"github.com/yungbote/materials-catalog/internal/platform/apierr"
	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

const internalMessage = "internal server error"

type ErrorBody struct {
	Error string `json:"error"`
}

func RespondError(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Status maps err to an HTTP status and a message that is safe to return.
func Status(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status > 0 {
		if ae.Status >= http.StatusInternalServerError {
			return ae.Status, internalMessage
		}
		return ae.Status, ae.Error()
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation, domainagg.CodeReference:
		return http.StatusBadRequest, domainagg.PublicMessage(err)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, domainagg.PublicMessage(err)
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized, domainagg.PublicMessage(err)
	case domainagg.CodeForbidden:
		return http.StatusForbidden, domainagg.PublicMessage(err)
	case domainagg.CodeConflict:
		return http.StatusConflict, domainagg.PublicMessage(err)
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

// Fail writes the error response for err. Server-side failures are logged with
// their full cause; the client only sees the generic message.
func Fail(c *gin.Context, log *logger.Logger, err error) {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		fields := append(ctxutil.LogFields(c.Request.Context()),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"code", string(domainagg.CodeOf(err)),
			"error", err,
		)
		log.Error("request failed", fields...)
	}
	RespondError(c, status, msg)
}
