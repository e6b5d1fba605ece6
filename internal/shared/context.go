package shared

import "context"

type sessionContextKey struct{}

type principalContextKey struct{}

// Principal is the authenticated staff member resolved for a request.
type Principal struct {
	UserID      int64
	Role        string
	Permissions []string
}

// Has reports whether the principal holds perm.
func (p Principal) Has(perm string) bool {
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal resolved by the RBAC middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
