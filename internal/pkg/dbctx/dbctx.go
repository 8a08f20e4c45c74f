package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries a request context and, optionally, the transaction a repo
// call should join.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Of wraps a bare context with no transaction.
func Of(ctx context.Context) Context { return Context{Ctx: ctx} }

// Conn returns the transaction when set, fallback otherwise, bound to Ctx.
func (c Context) Conn(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx)
}
