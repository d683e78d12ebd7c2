package auth

import "context"

// Identity is the authenticated caller of a protected route.
type Identity struct {
	UserID string
	Claims *Claims
}

// ClientInfo describes where a request came from, for the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type identityKey struct{}
type clientInfoKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller set by the auth middleware, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// UserID is a shortcut for IdentityFrom(ctx).UserID.
func UserID(ctx context.Context) string {
	if id := IdentityFrom(ctx); id != nil {
		return id.UserID
	}
	return ""
}

func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}
