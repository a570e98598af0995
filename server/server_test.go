package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/usersapi/handlers"
)

// Unit tests against fake pools (no external dependencies)

type failingPool struct {
	err   error
	calls atomic.Int32
}

func (p *failingPool) Conn(context.Context) (bun.Conn, error) {
	p.calls.Add(1)
	return bun.Conn{}, p.err
}

// blockingPool never has a free client; it waits until the caller gives up.
type blockingPool struct{}

func (blockingPool) Conn(ctx context.Context) (bun.Conn, error) {
	<-ctx.Done()
	return bun.Conn{}, ctx.Err()
}

func newTestServer(pool handlers.Pool, waitTimeout time.Duration) *echo.Echo {
	logger := zap.NewNop()
	return New(handlers.New(pool, waitTimeout, logger), logger)
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const aliceJSON = `{"username":"alice","first_name":"Alice","last_name":"A","pwd":"x"}`

func TestAddUser_PoolFailure(t *testing.T) {
	pool := &failingPool{err: errors.New("pool exhausted")}
	e := newTestServer(pool, 0)

	rec := doRequest(e, http.MethodPost, "/users", aliceJSON)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "pool exhausted", rec.Body.String())
	assert.EqualValues(t, 1, pool.calls.Load())
}

func TestDelUser_PoolFailure(t *testing.T) {
	pool := &failingPool{err: errors.New("pool exhausted")}
	e := newTestServer(pool, 0)

	rec := doRequest(e, http.MethodDelete, "/users?username=alice", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "pool exhausted", rec.Body.String())
}

func TestAddUser_WaitTimeout(t *testing.T) {
	e := newTestServer(blockingPool{}, 20*time.Millisecond)

	rec := doRequest(e, http.MethodPost, "/users", aliceJSON)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), context.DeadlineExceeded.Error())
}

func TestAddUser_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"username":`},
		{"missing field", `{"username":"alice","first_name":"Alice","last_name":"A"}`},
		{"wrong type", `{"username":7,"first_name":"Alice","last_name":"A","pwd":"x"}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &failingPool{err: errors.New("unused")}
			e := newTestServer(pool, 0)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, pool.calls.Load(), "pool must not be touched before the body is decoded")
		})
	}
}

func TestDelUser_MissingUsername(t *testing.T) {
	pool := &failingPool{err: errors.New("unused")}
	e := newTestServer(pool, 0)

	rec := doRequest(e, http.MethodDelete, "/users", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, pool.calls.Load())
}

func TestUsers_MethodNotAllowed(t *testing.T) {
	e := newTestServer(&failingPool{err: errors.New("unused")}, 0)

	rec := doRequest(e, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(e, http.MethodPost, "/accounts", aliceJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	e := newTestServer(&failingPool{err: errors.New("pool exhausted")}, 0)

	rec := doRequest(e, http.MethodDelete, "/users?username=alice", "")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodDelete, "/users?username=alice", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
}
