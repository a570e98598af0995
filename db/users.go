package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/padraicbc/usersapi/apperr"
	"github.com/padraicbc/usersapi/models"
)

const tableFieldsPlaceholder = "$table_fields"

var (
	//go:embed sql/add_user.sql
	addUserSQL string
	//go:embed sql/del_user.sql
	delUserSQL string
)

// Client is a connection leased from the pool for a single unit of work.
// *sql.Conn satisfies it. Callers own acquiring and releasing it.
type Client interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// AddUser inserts user and returns the row as stored.
func AddUser(ctx context.Context, client Client, user models.User) (*models.User, error) {
	stmt, err := prepare(ctx, client, addUserSQL)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, user.Username, user.FirstName, user.LastName, user.Pwd)
	if err != nil {
		return nil, apperr.Database(err)
	}
	defer rows.Close()

	var users []models.User
	if err := sqlscan.ScanAll(&users, rows); err != nil {
		return nil, scanError(err)
	}

	if len(users) == 0 {
		return nil, apperr.NotFound()
	}
	return &users[len(users)-1], nil
}

// DelUser deletes the user with the given username. Deleting a username
// that does not exist is not an error.
func DelUser(ctx context.Context, client Client, username string) error {
	stmt, err := prepare(ctx, client, delUserSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, username); err != nil {
		return apperr.Database(err)
	}
	return nil
}

func prepare(ctx context.Context, client Client, tmpl string) (*sql.Stmt, error) {
	query := strings.ReplaceAll(tmpl, tableFieldsPlaceholder, models.SQLTableFields())
	stmt, err := client.PrepareContext(ctx, query)
	if err != nil {
		return nil, apperr.Statement(err)
	}
	return stmt, nil
}

// scanError classifies a failure while reading returned rows. Server,
// connection and cancellation errors are database failures; anything else
// means the row did not fit the model.
func scanError(err error) error {
	var netErr net.Error
	switch {
	case apperr.IsDriverError(err),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return apperr.Database(err)
	default:
		return apperr.Mapping(err)
	}
}
