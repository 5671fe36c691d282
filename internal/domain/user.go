package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthProvider is one linked external identity. The (Provider, ProviderID)
// pair is unique system-wide (enforced by a partial unique index).
type AuthProvider struct {
	Provider   string `bson:"provider"    json:"provider"`    // "google" | "github"
	ProviderID string `bson:"provider_id" json:"provider_id"` // provider-scoped stable id
}

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"           json:"id"`
	Email         string             `bson:"email"                   json:"email"`
	Username      string             `bson:"username"                json:"username"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	ProfileImage  string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	AuthProviders []AuthProvider     `bson:"auth_providers"          json:"auth_providers"`
	CreatedAt     time.Time          `bson:"created_at"              json:"created_at"`
}

// Providers returns the names of all linked external identities.
func (u *User) Providers() []string {
	out := make([]string, 0, len(u.AuthProviders))
	for _, p := range u.AuthProviders {
		out = append(out, p.Provider)
	}
	return out
}

// HasProvider reports whether the exact (provider, providerID) pair is linked.
func (u *User) HasProvider(provider, providerID string) bool {
	for _, p := range u.AuthProviders {
		if p.Provider == provider && p.ProviderID == providerID {
			return true
		}
	}
	return false
}

// CanAuthenticate reports the account invariant: a password hash, or at least
// one linked provider, or both.
func (u *User) CanAuthenticate() bool {
	return u.PasswordHash != "" || len(u.AuthProviders) > 0
}
