package middleware

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/apperr"
)

// RequestLogger returns an Echo middleware that writes one zap line per request.
// Errors are handed to the HTTP error handler first so the logged status is final.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,
		LogLatency:   true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("request_id", v.RequestID),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				fields = append(fields, errorFields(v.Error)...)
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	})
}

// RequestID tags every request with a UUID in X-Request-ID unless the
// caller already sent one.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// errorFields describes a taxonomy error for the request log line.
func errorFields(err error) []zap.Field {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return nil
	}
	fields := []zap.Field{zap.String("kind", appErr.Kind.String())}
	if state := apperr.SQLState(err); state != "" {
		fields = append(fields, zap.String("sqlstate", state))
	}
	return fields
}
