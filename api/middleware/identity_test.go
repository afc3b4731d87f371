package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/soukly/soukly-backend/pkg/config"
	"github.com/soukly/soukly-backend/pkg/enums"
	pkgerrors "github.com/soukly/soukly-backend/pkg/errors"
	"github.com/soukly/soukly-backend/pkg/types"
)

var identityTestCfg = config.JWTConfig{Secret: "test-secret", Issuer: "soukly"}

func signToken(t *testing.T, cfg config.JWTConfig, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func identityEcho(t *testing.T, captured *types.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("expected identity in context")
		}
		*captured = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentity_BearerTokenYieldsAccount(t *testing.T) {
	userID := uuid.New()
	var captured types.Identity
	handler := Identity(identityTestCfg, nil)(identityEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, identityTestCfg, userID.String(), time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Kind != enums.IdentityAccount {
		t.Fatalf("expected account identity, got %s", captured.Kind)
	}
	if captured.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, captured.UserID)
	}
}

func TestIdentity_DeviceTokenYieldsGuest(t *testing.T) {
	var captured types.Identity
	handler := Identity(identityTestCfg, nil)(identityEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Device-Token", "device-abc-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Kind != enums.IdentityGuest {
		t.Fatalf("expected guest identity, got %s", captured.Kind)
	}
	if captured.DeviceToken != "device-abc-123" {
		t.Fatalf("unexpected device token: %s", captured.DeviceToken)
	}
}

func TestIdentity_MissingCredentialsRejected(t *testing.T) {
	handler := Identity(identityTestCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected code: %s", payload.Error.Code)
	}
}

func TestIdentity_ExpiredTokenRejected(t *testing.T) {
	handler := Identity(identityTestCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, identityTestCfg, uuid.NewString(), -time.Minute))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIdentity_WrongIssuerRejected(t *testing.T) {
	other := config.JWTConfig{Secret: identityTestCfg.Secret, Issuer: "elsewhere"}
	handler := Identity(identityTestCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, other, uuid.NewString(), time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIdentity_BearerTakesPrecedenceOverDeviceToken(t *testing.T) {
	userID := uuid.New()
	var captured types.Identity
	handler := Identity(identityTestCfg, nil)(identityEcho(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, identityTestCfg, userID.String(), time.Hour))
	req.Header.Set("X-Device-Token", "device-abc-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !captured.IsAccount() {
		t.Fatalf("expected account identity to win")
	}
}
