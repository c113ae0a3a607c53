package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/infrastructure/auth"
)

// CallerAddressHeader carries the caller identity when tokens are disabled.
const CallerAddressHeader = "X-Caller-Address"

type callerKey struct{}

// CallerIdentity resolves the caller address and stores it in the request
// context. With a JWT manager the address claim of a bearer token is used,
// otherwise the X-Caller-Address header. Requests without a caller get 401.
func CallerIdentity(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolveCaller(r, jwtManager)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			ctx := WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveCaller(r *http.Request, jwtManager *auth.JWTManager) (domain.Address, error) {
	if jwtManager == nil {
		header := r.Header.Get(CallerAddressHeader)
		if strings.TrimSpace(header) == "" {
			return "", errors.New("missing " + CallerAddressHeader + " header")
		}
		return domain.ParseAddress(header)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}

	claims, err := jwtManager.Verify(parts[1])
	if err != nil {
		return "", err
	}

	return domain.ParseAddress(claims.Address)
}

// WithCaller returns a context carrying the caller address.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext extracts the caller address set by CallerIdentity.
func CallerFromContext(ctx context.Context) (domain.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Address)
	return caller, ok && caller != ""
}
