package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/api/responses"
	"github.com/soukly/soukly-backend/pkg/config"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/logger"
	"github.com/soukly/soukly-backend/pkg/types"
)

const deviceTokenHeader = "X-Device-Token"

const maxDeviceTokenLength = 128

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity resolves the caller of every request. A valid bearer token yields
// an account identity; otherwise the X-Device-Token header yields a guest
// identity. Requests carrying neither are rejected.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				userID, err := parseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}

				identity := types.AccountIdentity(userID)
				ctx = WithIdentity(ctx, identity)
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID.String())
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			deviceToken := strings.TrimSpace(r.Header.Get(deviceTokenHeader))
			if deviceToken == "" || len(deviceToken) > maxDeviceTokenLength {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity := types.GuestIdentity(deviceToken)
			ctx = WithIdentity(ctx, identity)
			if logg != nil {
				ctx = logg.WithDeviceToken(ctx, deviceToken)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

func parseAccessToken(cfg config.JWTConfig, token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return uuid.Nil, err
	}
	if !parsed.Valid {
		return uuid.Nil, fmt.Errorf("token not valid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing subject: %w", err)
	}
	return userID, nil
}

// WithIdentity injects the resolved caller into the context.
func WithIdentity(ctx context.Context, identity types.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the caller seeded by the Identity middleware.
func IdentityFromContext(ctx context.Context) (types.Identity, bool) {
	if ctx == nil {
		return types.Identity{}, false
	}
	identity, ok := ctx.Value(ctxIdentity).(types.Identity)
	if !ok || !identity.Valid() {
		return types.Identity{}, false
	}
	return identity, true
}
