package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deskchat-backend/internal/platform/apierr"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps err onto the error envelope. Only *apierr.Error messages
// reach the caller; anything else is logged and reported as internal.
func RespondErr(c *gin.Context, log *logger.Logger, err error) {
	status, code, msg := classify(c, log, err)
	RespondError(c, status, code, errors.New(msg))
}

// Abort is RespondErr for middleware; the handler chain stops.
func Abort(c *gin.Context, log *logger.Logger, err error) {
	status, code, msg := classify(c, log, err)
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func classify(c *gin.Context, log *logger.Logger, err error) (int, string, string) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae != nil && ae.Code != apierr.CodeInternal {
		status := ae.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		return status, string(ae.Code), ae.Error()
	}
	if err != nil {
		_ = c.Error(err)
	}
	if log != nil {
		log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	return http.StatusInternalServerError, string(apierr.CodeInternal), "internal error"
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
