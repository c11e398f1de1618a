package authware_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nullspire/forum/middleware/authware"
)

// stubClaims is a fixed claims payload for middleware tests
type stubClaims struct {
	subject string
	email   string
	admin   bool
	banned  bool
}

func (s stubClaims) Subject() string   { return s.subject }
func (s stubClaims) UserID() string    { return s.subject }
func (s stubClaims) UserEmail() string { return s.email }
func (s stubClaims) IsAdmin() bool     { return s.admin }
func (s stubClaims) IsBanned() bool    { return s.banned }

// stubValidator returns canned claims for an expected raw token
type stubValidator struct {
	expected string
	claims   authware.AuthClaims
	err      error
}

func (s *stubValidator) Validate(tokenString string) (authware.AuthClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.expected != "" && tokenString != s.expected {
		return nil, errors.New("unexpected token")
	}
	return s.claims, nil
}

func passthroughErrorHandler(ctx router.Context, err error) error {
	return err
}

func TestAccessMiddleware(t *testing.T) {
	next := func(ctx router.Context) error { return ctx.Next() }

	t.Run("valid token attaches claims and continues", func(t *testing.T) {
		claims := stubClaims{subject: "user-123", email: "person@example.com"}
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{expected: "good-token", claims: claims},
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer good-token"

		err := handler(ctx)
		require.NoError(t, err)
		assert.True(t, ctx.NextCalled)

		attached, ok := ctx.LocalsMock["user"].(authware.AuthClaims)
		require.True(t, ok)
		assert.Equal(t, "user-123", attached.UserID())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{},
			ErrorHandler:   passthroughErrorHandler,
		})(next)

		ctx := NewMockContext()

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrMissingAuthHeader)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("header without token segment is rejected", func(t *testing.T) {
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{},
			ErrorHandler:   passthroughErrorHandler,
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer"

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrMissingToken)
	})

	t.Run("wrong auth scheme is rejected", func(t *testing.T) {
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{},
			ErrorHandler:   passthroughErrorHandler,
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Basic dXNlcjpwYXNz"

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrMissingToken)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		validationErr := errors.New("signature mismatch")
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{err: validationErr},
			ErrorHandler:   passthroughErrorHandler,
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer forged-token"

		err := handler(ctx)
		assert.ErrorIs(t, err, validationErr)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("banned claims never reach the handler", func(t *testing.T) {
		claims := stubClaims{subject: "user-123", banned: true}
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{claims: claims},
			ErrorHandler:   passthroughErrorHandler,
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer banned-token"

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrUserBanned)
		assert.False(t, ctx.NextCalled)
		assert.NotContains(t, ctx.LocalsMock, "user")
	})

	t.Run("filter bypasses the gates", func(t *testing.T) {
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{},
			Filter:         func(ctx router.Context) bool { return true },
		})(next)

		ctx := NewMockContext()

		err := handler(ctx)
		require.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})

	t.Run("custom context key is honored", func(t *testing.T) {
		claims := stubClaims{subject: "user-123"}
		handler := authware.New(authware.Config{
			TokenValidator: &stubValidator{claims: claims},
			ContextKey:     "session",
		})(next)

		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer good-token"

		err := handler(ctx)
		require.NoError(t, err)
		assert.Contains(t, ctx.LocalsMock, "session")
	})
}

func TestRequireAdmin(t *testing.T) {
	next := func(ctx router.Context) error { return ctx.Next() }

	cfg := authware.Config{
		TokenValidator: &stubValidator{},
		ErrorHandler:   passthroughErrorHandler,
	}

	t.Run("admin claims pass", func(t *testing.T) {
		handler := authware.RequireAdmin(cfg)(next)

		ctx := NewMockContext()
		ctx.LocalsMock["user"] = stubClaims{subject: "admin-1", admin: true}

		err := handler(ctx)
		require.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})

	t.Run("non admin claims are rejected", func(t *testing.T) {
		handler := authware.RequireAdmin(cfg)(next)

		ctx := NewMockContext()
		ctx.LocalsMock["user"] = stubClaims{subject: "user-123"}

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrAdminRequired)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("absent claims fail closed", func(t *testing.T) {
		handler := authware.RequireAdmin(cfg)(next)

		ctx := NewMockContext()

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrAdminRequired)
	})

	t.Run("wrong claims type fails closed", func(t *testing.T) {
		handler := authware.RequireAdmin(cfg)(next)

		ctx := NewMockContext()
		ctx.LocalsMock["user"] = "not-claims"

		err := handler(ctx)
		assert.ErrorIs(t, err, authware.ErrAdminRequired)
	})
}

func TestExtractRawToken(t *testing.T) {
	t.Run("returns the bearer token", func(t *testing.T) {
		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer raw-token"

		raw, err := authware.ExtractRawToken(ctx, "Authorization", "Bearer")
		require.NoError(t, err)
		assert.Equal(t, "raw-token", raw)
	})

	t.Run("scheme comparison is case-insensitive", func(t *testing.T) {
		ctx := NewMockContext()
		ctx.HeadersM["Authorization"] = "bearer raw-token"

		raw, err := authware.ExtractRawToken(ctx, "Authorization", "Bearer")
		require.NoError(t, err)
		assert.Equal(t, "raw-token", raw)
	})
}

func TestDefaultErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			err:        authware.ErrMissingAuthHeader,
			wantStatus: router.StatusUnauthorized,
			wantBody:   "Missing authorization header",
		},
		{
			name:       "missing token",
			err:        authware.ErrMissingToken,
			wantStatus: router.StatusUnauthorized,
			wantBody:   "Missing token",
		},
		{
			name:       "banned user",
			err:        authware.ErrUserBanned,
			wantStatus: router.StatusForbidden,
			wantBody:   "User is banned",
		},
		{
			name:       "admin required",
			err:        authware.ErrAdminRequired,
			wantStatus: router.StatusForbidden,
			wantBody:   "Admin access required",
		},
		{
			name:       "anything else reads as invalid token",
			err:        errors.New("token is expired"),
			wantStatus: router.StatusUnauthorized,
			wantBody:   "Invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMockContext()

			var payload map[string]string
			ctx.On("JSON", tt.wantStatus, mock.Anything).Run(func(args mock.Arguments) {
				payload = args.Get(1).(map[string]string)
			}).Return(nil)

			err := authware.DefaultErrorHandler(ctx, tt.err)
			require.NoError(t, err)
			require.NotNil(t, payload)
			assert.Equal(t, tt.wantBody, payload["error"])
		})
	}
}

func TestGetDefaultConfig(t *testing.T) {
	t.Run("panics without a token validator", func(t *testing.T) {
		assert.Panics(t, func() {
			authware.GetDefaultConfig(authware.Config{})
		})
	})

	t.Run("fills in defaults", func(t *testing.T) {
		cfg := authware.GetDefaultConfig(authware.Config{
			TokenValidator: &stubValidator{},
		})

		assert.Equal(t, "user", cfg.ContextKey)
		assert.Equal(t, router.HeaderAuthorization, cfg.HeaderName)
		assert.Equal(t, "Bearer", cfg.AuthScheme)
		assert.NotNil(t, cfg.SuccessHandler)
		assert.NotNil(t, cfg.ErrorHandler)
	})
}
