package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/apperr"
	"github.com/padraicbc/usersapi/db"
	"github.com/padraicbc/usersapi/models"
)

// Register binds the users routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/users", h.AddUser)
	e.DELETE("/users", h.DelUser)
}

// AddUser creates a user from the JSON body and returns it as stored.
func (h *Handler) AddUser(c echo.Context) error {
	// Bind treats an empty body as nothing to bind; a user needs every field.
	if c.Request().ContentLength == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "request body is empty")
	}
	var user models.User
	if err := c.Bind(&user); err != nil {
		return err
	}

	ctx := c.Request().Context()
	conn, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer h.release(conn)

	created, err := db.AddUser(ctx, conn.Conn, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, created)
}

// DelUser deletes the user named by the username query parameter.
// Deleting an unknown user succeeds.
func (h *Handler) DelUser(c echo.Context) error {
	params := c.QueryParams()
	if !params.Has("username") {
		return echo.NewHTTPError(http.StatusBadRequest, "missing field `username`")
	}
	username := params.Get("username")

	ctx := c.Request().Context()
	conn, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer h.release(conn)

	if err := db.DelUser(ctx, conn.Conn, username); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}

// acquire leases one client from the pool for the current request.
func (h *Handler) acquire(ctx context.Context) (bun.Conn, error) {
	if h.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.waitTimeout)
		defer cancel()
	}

	conn, err := h.pool.Conn(ctx)
	if err != nil {
		return bun.Conn{}, apperr.Pool(err)
	}
	return conn, nil
}

func (h *Handler) release(conn bun.Conn) {
	if err := conn.Close(); err != nil {
		h.logger.Warn("releasing pooled connection", zap.Error(err))
	}
}
