package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and an optional transaction into repo
// calls. A nil Tx means the repo's own handle is used.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
