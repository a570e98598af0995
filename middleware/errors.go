package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/apperr"
)

// ErrorHandler returns an echo.HTTPErrorHandler that reports *apperr.Error
// values with their mapped status. Pool failures carry the cause as a
// plain-text body; every other kind is sent with an empty body. Errors from
// outside the taxonomy fall through to Echo's default handler.
// Failures are logged once, by RequestLogger; logger only reports errors
// writing the response itself.
func ErrorHandler(e *echo.Echo, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		status := appErr.HTTPStatus()
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else if body := appErr.Body(); body != "" {
			werr = c.String(status, body)
		} else {
			werr = c.NoContent(status)
		}
		if werr != nil {
			logger.Error("writing error response", zap.Error(werr))
		}
	}
}
