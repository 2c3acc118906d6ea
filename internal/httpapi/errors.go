package httpapi

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const internalMessage = "Internal server error"

type errorResponse struct {
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

var errorMappers = []goerrors.ErrorMapper{mapEchoError, goerrors.MapHTTPErrors}

// errorHandler renders every error as an errorResponse. Anything that is
// not a client error is logged and reported as a bare 500.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		e := goerrors.MapToError(err, errorMappers)
		status := e.Code
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusInternalServerError
		}

		body := errorResponse{
			Message:   e.Message,
			Code:      e.TextCode,
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		}
		if len(e.ValidationErrors) > 0 {
			body.Errors = e.ValidationMap()
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("request_id", body.RequestID).
				Str("path", c.Path()).
				Msg("request failed")
			body = errorResponse{Message: internalMessage, Code: "INTERNAL_ERROR", RequestID: body.RequestID}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

// mapEchoError converts the router's and middleware's own errors.
func mapEchoError(err error) *goerrors.Error {
	var he *echo.HTTPError
	if !goerrors.As(err, &he) {
		return nil
	}

	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}
	return goerrors.New(message, goerrors.HTTPStatusToCategory(he.Code)).
		WithCode(he.Code).
		WithTextCode(goerrors.HTTPStatusToTextCode(he.Code))
}

func badRequest(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode("BAD_REQUEST")
}
