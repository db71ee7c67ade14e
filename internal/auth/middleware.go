package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/photoshare-api/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "user", u), ANY package that knows the string "user"
// can read or shadow your value. Using a package-private type prevents
// collisions: only THIS package can create a key of type contextKey.
type contextKey string

const currentUserKey contextKey = "currentUser"

// UserResolver finds the user owning a bearer token.
// A nil user with a nil error means "anonymous".
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*model.User, error)
}

// CurrentUser is a middleware that resolves the caller's identity from the
// Authorization header and stores it in the request context.
//
// It never blocks a request: a missing header, an unknown token, or a store
// failure all continue as an anonymous request. Individual operations
// (postPhoto, tagPhoto) decide whether anonymous callers are allowed.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
func CurrentUser(resolver UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.ResolveCurrentUser(r.Context(), token)
			if err != nil {
				// The token is a credential; it is never logged.
				logger.Error("resolving current user",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest returns the bearer token of r. Both
// "Authorization: <token>" and "Authorization: Bearer <token>" are accepted.
// A bare "Bearer" carries no token.
func TokenFromRequest(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.EqualFold(h, "bearer") {
		return ""
	}
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// WithUser returns a copy of ctx carrying user as the current user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// UserFromContext returns the current user, or nil for an anonymous request.
//
// Usage in resolvers:
//
//	if u := auth.UserFromContext(ctx); u == nil {
//	    // anonymous caller
//	}
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(currentUserKey).(*model.User)
	return u
}
