package auth

import "context"

type contextKey struct{}

// Identity is the request-scoped identity resolved by the auth middleware.
// Authentication itself happens upstream; handlers only ever see these two
// IDs.
type Identity struct {
	UserID   string
	FamilyID string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID
}

func FamilyID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.FamilyID
}
