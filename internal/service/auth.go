package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/notes-service/internal/domain"
	"github.com/tazhibayda/notes-service/internal/oauth"
	"github.com/tazhibayda/notes-service/internal/repo"
	"github.com/tazhibayda/notes-service/internal/security"
)

// UserStore is the credential-store contract the resolver runs against.
// *repo.Store implements it; tests use an in-memory fake. Find methods
// return (nil, nil) when nothing matches; writes report unique-index
// violations as repo.ErrDuplicate.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	AddAuthProvider(ctx context.Context, userID primitive.ObjectID, provider, providerID string) error
	SetProfileImage(ctx context.Context, userID primitive.ObjectID, url string) error
}

// Auth maps authentication attempts (local credentials or OAuth profiles)
// to exactly one canonical user.
type Auth struct {
	users UserStore
}

func NewAuth(users UserStore) *Auth {
	return &Auth{users: users}
}

// NormalizeEmail is applied on every lookup and write path, so the unique
// index on email is the single authority for collisions.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func usernameOrLocalPart(username, email string) string {
	username = strings.TrimSpace(username)
	if username != "" {
		return username
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// outward strips the password hash before a user leaves the service.
func outward(u *domain.User) *domain.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// SignUp creates a local-credential account. Duplicate email fails with a
// ConflictError that names linked providers when the existing account has
// any, guiding the caller to the social flow instead of a generic error.
func (a *Auth) SignUp(ctx context.Context, email, password, username string) (*domain.User, error) {
	email = NormalizeEmail(email)

	if existing, err := a.users.FindUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ConflictError{Providers: existing.Providers()}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:         email,
		Username:      usernameOrLocalPart(username, email),
		PasswordHash:  hash,
		AuthProviders: []domain.AuthProvider{},
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// lost the check-then-create race; report the winner's providers
			if existing, ferr := a.users.FindUserByEmail(ctx, email); ferr == nil && existing != nil {
				return nil, &ConflictError{Providers: existing.Providers()}
			}
			return nil, &ConflictError{}
		}
		return nil, err
	}
	return outward(u), nil
}

// ValidateLocal checks email+password. Unknown email and wrong password are
// indistinguishable to the caller; a passwordless account with linked
// providers gets a SocialLoginError naming them.
func (a *Auth) ValidateLocal(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)

	u, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if u.PasswordHash == "" {
		if providers := u.Providers(); len(providers) > 0 {
			return nil, &SocialLoginError{Providers: providers}
		}
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return outward(u), nil
}

// Outcome reports which resolution step produced the user.
type Outcome int

const (
	OutcomeMatched Outcome = iota // existing (provider, providerID) pair
	OutcomeLinked                 // provider appended to an email-matched account
	OutcomeCreated                // fresh account
)

// ResolveOAuth maps an external profile to a canonical user, in strict
// precedence: exact (provider, providerID) match, then email match with
// linking, then creation. Getting this order wrong either double-creates
// accounts or lets one provider identity hijack another's email account.
// A duplicate-key error from the store means a concurrent callback won a
// create/link race, so the lookup chain is re-run once against the winner.
func (a *Auth) ResolveOAuth(ctx context.Context, p *oauth.Profile) (*domain.User, Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	u, out, err := a.resolveOAuthOnce(ctx, p)
	if errors.Is(err, repo.ErrDuplicate) {
		u, out, err = a.resolveOAuthOnce(ctx, p)
	}
	return u, out, err
}

func (a *Auth) resolveOAuthOnce(ctx context.Context, p *oauth.Profile) (*domain.User, Outcome, error) {
	// 1. Exact provider match is authoritative. Side effect: the avatar is
	// overwritten whenever the provider supplies a different one.
	u, err := a.users.FindUserByProvider(ctx, p.Provider, p.ProviderID)
	if err != nil {
		return nil, 0, err
	}
	if u != nil {
		if p.Picture != "" && u.ProfileImage != p.Picture {
			if err := a.users.SetProfileImage(ctx, u.ID, p.Picture); err != nil {
				return nil, 0, err
			}
			u.ProfileImage = p.Picture
		}
		return outward(u), OutcomeMatched, nil
	}

	// 2. Email match: link the new provider to the existing account. The
	// avatar is only filled in when empty — a freshly linked provider must
	// not clobber a deliberately set one.
	u, err = a.users.FindUserByEmail(ctx, p.Email)
	if err != nil {
		return nil, 0, err
	}
	if u != nil {
		if err := a.users.AddAuthProvider(ctx, u.ID, p.Provider, p.ProviderID); err != nil {
			return nil, 0, err
		}
		if !u.HasProvider(p.Provider, p.ProviderID) {
			u.AuthProviders = append(u.AuthProviders, domain.AuthProvider{Provider: p.Provider, ProviderID: p.ProviderID})
		}
		if p.Picture != "" && u.ProfileImage == "" {
			if err := a.users.SetProfileImage(ctx, u.ID, p.Picture); err != nil {
				return nil, 0, err
			}
			u.ProfileImage = p.Picture
		}
		return outward(u), OutcomeLinked, nil
	}

	// 3. Creation.
	nu := &domain.User{
		Email:        p.Email,
		Username:     usernameOrLocalPart(p.Username, p.Email),
		ProfileImage: p.Picture,
		AuthProviders: []domain.AuthProvider{
			{Provider: p.Provider, ProviderID: p.ProviderID},
		},
	}
	if err := a.users.CreateUser(ctx, nu); err != nil {
		return nil, 0, err
	}
	return outward(nu), OutcomeCreated, nil
}

// Profile returns the current user for a verified token subject, hash
// stripped.
func (a *Auth) Profile(ctx context.Context, uid string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, nil
	}
	u, err := a.users.FindUserByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return outward(u), nil
}
