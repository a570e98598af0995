package handlers

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Pool hands out database connections. *bun.DB satisfies it.
type Pool interface {
	Conn(ctx context.Context) (bun.Conn, error)
}

// Handler holds shared dependencies used by all route handlers.
// It is read-only after construction and safe for concurrent use.
type Handler struct {
	pool        Pool
	waitTimeout time.Duration
	logger      *zap.Logger
}

// New creates a Handler borrowing clients from pool. A positive waitTimeout
// bounds how long a request waits for a free client.
func New(pool Pool, waitTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{pool: pool, waitTimeout: waitTimeout, logger: logger}
}
