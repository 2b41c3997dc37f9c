package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/common"
	"github.com/dmitrijs2005/devconnector/internal/server/auth"
	"github.com/dmitrijs2005/devconnector/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgServerError   = "Server Error"
	msgNotAuthorized = "Not authorized to access this route"
	msgUserNotFound  = "User not found"
	msgBadBody       = "Invalid request body"
)

type fieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

type errorsResponse struct {
	Errors []fieldError `json:"errors"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError maps a service or token error to its HTTP status and body.
// Unknown errors are logged and answered with a generic 500.
func (s *Server) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		body := errorsResponse{Errors: make([]fieldError, len(ve.Errors))}
		for i, fe := range ve.Errors {
			body.Errors[i] = fieldError{Msg: fe.Msg, Param: fe.Param}
		}
		c.JSON(http.StatusBadRequest, body)

	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, errorsResponse{Errors: []fieldError{{Msg: services.MsgInvalidCredential}}})

	case errors.Is(err, auth.ErrTokenMissing),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		s.logger.Debug(ctx, "bearer rejected", "reason", err.Error())
		c.JSON(http.StatusUnauthorized, failureResponse{Success: false, Error: msgNotAuthorized})

	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, failureResponse{Success: false, Error: msgUserNotFound})

	default:
		s.logger.Error(ctx, "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, failureResponse{Success: false, Error: msgServerError})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, errorsResponse{Errors: []fieldError{{Msg: msgBadBody}}})
}
