package httpserver

import (
	"context"

	"github.com/fnb-collective/directory/internal/model"
)

type ctxKey string

const identityKey ctxKey = "directory.identity"

// WithIdentity stores the resolved identity in context.
func WithIdentity(ctx context.Context, ident model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromCtx fetches the resolved identity from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return model.Identity{}, false
	}
	ident, ok := v.(model.Identity)
	return ident, ok
}
