package forum

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Text codes surfaced to HTTP error handlers. The middleware maps them to
// status codes and response bodies; nothing else should switch on message
// strings.
const (
	TextCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	TextCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	TextCodeCorruptCredential = "CORRUPT_CREDENTIAL"
	TextCodeInvalidCredential = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid      = "TOKEN_INVALID"
	TextCodeMissingAuthHeader = "MISSING_AUTH_HEADER"
	TextCodeMissingToken      = "MISSING_TOKEN"
	TextCodeUserBanned        = "USER_BANNED"
	TextCodeAdminRequired     = "ADMIN_REQUIRED"
)

// ErrDuplicateIdentity is returned when a signup collides with an existing email
var ErrDuplicateIdentity = errors.New("email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryValidation).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeBadRequest)

// ErrCorruptCredential signals a stored hash that bcrypt cannot parse. A
// mismatched password is never reported this way.
var ErrCorruptCredential = errors.New("stored credential is corrupt", errors.CategoryInternal).
	WithTextCode(TextCodeCorruptCredential).
	WithCode(errors.CodeInternal)

// ErrInvalidCredentials is deliberately shared between unknown-email and
// wrong-password so login responses do not enumerate users.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredential).
	WithCode(errors.CodeBadRequest)

// ErrTokenInvalid covers malformed tokens, bad signatures and expired
// timestamps alike; verification does not leak which check failed.
var ErrTokenInvalid = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrMissingAuthHeader is returned when a request carries no authorization header
var ErrMissingAuthHeader = errors.New("missing authorization header", errors.CategoryAuth).
	WithTextCode(TextCodeMissingAuthHeader).
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when the authorization header has no token segment
var ErrMissingToken = errors.New("missing token", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrUserBanned rejects banned principals at the middleware layer
var ErrUserBanned = errors.New("user is banned", errors.CategoryAuthz).
	WithTextCode(TextCodeUserBanned).
	WithCode(errors.CodeForbidden)

// ErrAdminRequired rejects non admin principals on privileged routes
var ErrAdminRequired = errors.New("admin access required", errors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// TextCode extracts the text code from a rich error, empty otherwise.
func TextCode(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// IsUniqueViolation reports whether the store rejected a write because of the
// email uniqueness constraint. Uniqueness is enforced at the store, not by
// check-then-insert, so concurrent signups surface here.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}

// errorIsNotFound widens the repository's not-found detection to cover our
// own identity sentinel.
func errorIsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrIdentityNotFound) {
		return true
	}
	return repository.IsRecordNotFound(err)
}
