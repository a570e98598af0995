// Package server assembles the Echo instance serving the users API.
package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/handlers"
	mw "github.com/padraicbc/usersapi/middleware"
)

// New returns an Echo instance with the users routes and the standard
// middleware stack. The handler's pool is shared by every request.
func New(h *handlers.Handler, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = mw.ErrorHandler(e, logger)

	e.Use(mw.RequestID())
	e.Use(mw.RequestLogger(logger))
	e.Use(echomw.Recover())

	h.Register(e)
	return e
}
