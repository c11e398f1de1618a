// Package authware intercepts API requests, validating the bearer token and
// enforcing the ban and admin gates before handlers run.
package authware

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// TokenValidator mirrors the token service Validate method without an import cycle
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the slice of the session claims the middleware needs
type AuthClaims interface {
	Subject() string
	UserID() string
	UserEmail() string
	IsAdmin() bool
	IsBanned() bool
}

// Text codes shared with the host application's error taxonomy.
const (
	TextCodeMissingAuthHeader = "MISSING_AUTH_HEADER"
	TextCodeMissingToken      = "MISSING_TOKEN"
	TextCodeTokenInvalid      = "TOKEN_INVALID"
	TextCodeUserBanned        = "USER_BANNED"
	TextCodeAdminRequired     = "ADMIN_REQUIRED"
)

var (
	ErrMissingAuthHeader = goerrors.New("missing authorization header", goerrors.CategoryAuth).
				WithTextCode(TextCodeMissingAuthHeader).
				WithCode(goerrors.CodeUnauthorized)

	ErrMissingToken = goerrors.New("missing token", goerrors.CategoryAuth).
			WithTextCode(TextCodeMissingToken).
			WithCode(goerrors.CodeUnauthorized)

	ErrUserBanned = goerrors.New("user is banned", goerrors.CategoryAuthz).
			WithTextCode(TextCodeUserBanned).
			WithCode(goerrors.CodeForbidden)

	ErrAdminRequired = goerrors.New("admin access required", goerrors.CategoryAuthz).
				WithTextCode(TextCodeAdminRequired).
				WithCode(goerrors.CodeForbidden)
)

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	ContextKey     string
	HeaderName     string
	AuthScheme     string
	TokenValidator TokenValidator
}

// New builds the access middleware. Requests pass through four gates in
// order: header present, token present, token valid, bearer not banned.
// The first failed gate decides the response.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawToken(ctx, cfg.HeaderName, cfg.AuthScheme)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			// The ban flag is the one embedded at issue time. A ban applied
			// after issuance takes effect when the token expires.
			if claims.IsBanned() {
				return cfg.ErrorHandler(ctx, ErrUserBanned)
			}

			ctx.Locals(cfg.ContextKey, claims)

			return cfg.SuccessHandler(ctx)
		}
	}
}

// RequireAdmin gates a route on the admin claim. It expects claims already
// attached by New under the same context key and fails closed when absent.
func RequireAdmin(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			raw := ctx.Locals(cfg.ContextKey)
			if raw == nil {
				return cfg.ErrorHandler(ctx, ErrAdminRequired)
			}

			claims, ok := raw.(AuthClaims)
			if !ok || !claims.IsAdmin() {
				return cfg.ErrorHandler(ctx, ErrAdminRequired)
			}

			return ctx.Next()
		}
	}
}

// ExtractRawToken pulls the bearer token out of the auth header. A missing
// header and a header without a token segment are distinct failures.
func ExtractRawToken(ctx router.Context, header, authScheme string) (string, error) {
	value := ctx.Header(header)
	if value == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.Fields(value)
	if len(parts) < 2 {
		return "", ErrMissingToken
	}

	if authScheme != "" && !strings.EqualFold(parts[0], authScheme) {
		return "", ErrMissingToken
	}

	return parts[1], nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.TokenValidator == nil {
		panic("authware middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = router.HeaderAuthorization
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler maps rejection reasons onto the API's JSON contract.
func DefaultErrorHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.TextCode {
		case TextCodeMissingAuthHeader:
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": "Missing authorization header",
			})
		case TextCodeMissingToken:
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": "Missing token",
			})
		case TextCodeUserBanned:
			return ctx.JSON(router.StatusForbidden, map[string]string{
				"error": "User is banned",
			})
		case TextCodeAdminRequired:
			return ctx.JSON(router.StatusForbidden, map[string]string{
				"error": "Admin access required",
			})
		}
	}

	// Everything else is a token that failed validation. Expired, malformed
	// and forged tokens are indistinguishable to the caller.
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": "Invalid token",
	})
}
