package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// Profile is the normalized identity extracted from a provider callback.
// It is validated here, at the adapter boundary, so the resolver never sees
// loosely-shaped provider payloads.
type Profile struct {
	Provider   string // "google" | "github"
	ProviderID string // provider-scoped stable identifier
	Email      string
	Username   string
	Picture    string
}

var ErrBadProfile = errors.New("incomplete oauth profile")

// Validate normalizes the email and rejects profiles missing the fields the
// resolver keys on.
func (p *Profile) Validate() error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Provider == "" || p.ProviderID == "" || p.Email == "" {
		return ErrBadProfile
	}
	return nil
}

// Provider is one configured OAuth backend.
type Provider interface {
	Name() string
	AuthURL(state string) string
	// FetchProfile exchanges the callback code and returns a validated
	// Profile.
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}

// StateSigner produces HMAC-signed state values for CSRF protection of the
// callback, shared by all providers.
type StateSigner struct {
	key []byte
}

func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{key: []byte(secret)}
}

func (s *StateSigner) Sign(raw string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(raw))
	sig := mac.Sum(nil)
	return raw + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (s *StateSigner) Verify(got string) bool {
	i := strings.IndexByte(got, '.')
	if i < 0 {
		return false
	}
	raw := got[:i]
	sigb, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(raw))
	return hmac.Equal(mac.Sum(nil), sigb)
}
