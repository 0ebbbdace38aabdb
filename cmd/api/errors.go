package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/apierror"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/ledger"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/transcript"
)

// classifyError maps domain errors onto the client error taxonomy
func classifyError(op string, err error) *apierror.Error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ledger.ErrInsufficientTokens):
		return apierror.InsufficientTokens(op, err)
	case errors.Is(err, ledger.ErrNotFound):
		return apierror.Internal(op, err, "Failed to check token balance")
	case errors.Is(err, transcript.ErrNotFound):
		return apierror.TranscriptNotFound(op, err)
	case errors.Is(err, transcript.ErrAuthFailed):
		return apierror.ProviderAuthFailed(op, err)
	case errors.Is(err, transcript.ErrFetchFailed):
		return apierror.TranscriptFetchFailed(op, err)
	default:
		return apierror.Internal(op, err, "Internal server error")
	}
}

// fail logs err and writes the error envelope
func (api *API) fail(c *gin.Context, op string, err error) {
	apiErr := classifyError(op, err)

	l := api.logger.WithRequestID(middleware.GetRequestID(c)).
		WithField("operation", op).
		WithField("status_code", apiErr.Code)
	if userID, ok := middleware.GetUserID(c); ok {
		l = l.WithUserID(userID)
	}
	if apiErr.Code >= http.StatusInternalServerError {
		l.ErrorWithErr(apiErr.Message, err)
		metrics.RecordError("api", string(apiErr.Kind))
	} else {
		l.WithError(err).Warn(apiErr.Message)
	}

	apierror.Abort(c, apiErr, api.production)
}

// respond writes the success envelope
func respond(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (api *API) notFound(c *gin.Context) {
	apierror.Abort(c, &apierror.Error{
		Code:    http.StatusNotFound,
		Kind:    apierror.KindNotFound,
		Message: "Route not found",
		Op:      "api.notFound",
	}, api.production)
}
