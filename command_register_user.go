package forum

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// AdminEmail is the configured bootstrap address. The first identity that
	// matches it (case-insensitively) is the forum administrator.
	AdminEmail string `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	user     *User
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		activity: noopActivitySink{},
	}
}

// WithActivitySink sets the sink used to emit signup events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// User returns the record created by the last successful Execute
func (h *RegisterUserHandler) User() *User {
	return h.user
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Admin = isBootstrapAdmin(event.Email, event.AdminEmail)

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.user = user

	// best effort, a failing sink never fails the signup
	_ = normalizeActivitySink(h.activity).Record(ctx, ActivityEvent{
		EventType:  ActivityEventUserRegistered,
		UserID:     user.ID.String(),
		Metadata:   map[string]any{"admin": user.Admin},
		OccurredAt: time.Now(),
	})

	return nil
}

func isBootstrapAdmin(email, adminEmail string) bool {
	if adminEmail == "" {
		return false
	}
	return strings.EqualFold(email, adminEmail)
}
