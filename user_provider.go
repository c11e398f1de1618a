package forum

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserStore is the slice of the credential store identity verification needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
}

// UserProvider bridges stored user records to verified identities
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. Unknown email and wrong password both come back as
// ErrInvalidCredentials so the login surface cannot enumerate users. Banned
// accounts are refused before the password comparison runs, a ban outranks
// whatever credentials were supplied.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.Banned {
		return nil, ErrUserBanned
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		// corrupt stored hash, not a failed login
		return nil, err
	}

	return identityFromUser(user), nil
}

// FindIdentityByEmail resolves a stored user without checking credentials
func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return identityFromUser(user), nil
}

// authIdentity is the read-only snapshot handed to token issuance
type authIdentity struct {
	id     string
	email  string
	admin  bool
	banned bool
}

var _ Identity = authIdentity{}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:     user.ID.String(),
		email:  user.Email,
		admin:  user.Admin,
		banned: user.Banned,
	}
}

func (a authIdentity) ID() string     { return a.id }
func (a authIdentity) Email() string  { return a.email }
func (a authIdentity) IsAdmin() bool  { return a.admin }
func (a authIdentity) IsBanned() bool { return a.banned }
