package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/notes-service/internal/oauth"
)

func TestStateSignVerify(t *testing.T) {
	s := oauth.NewStateSigner("state-secret")

	st := s.Sign("nonce-123")
	require.True(t, s.Verify(st))
}

func TestStateRejectsTampering(t *testing.T) {
	s := oauth.NewStateSigner("state-secret")

	st := s.Sign("nonce-123")
	require.False(t, s.Verify("other"+st[5:]))
	require.False(t, s.Verify("no-separator"))
	require.False(t, s.Verify(""))

	other := oauth.NewStateSigner("different-secret")
	require.False(t, other.Verify(st))
}

func TestProfileValidate(t *testing.T) {
	p := &oauth.Profile{Provider: "github", ProviderID: "42", Email: "  A@X.com "}
	require.NoError(t, p.Validate())
	require.Equal(t, "a@x.com", p.Email)

	missing := &oauth.Profile{Provider: "github", Email: "a@x.com"}
	require.ErrorIs(t, missing.Validate(), oauth.ErrBadProfile)

	noEmail := &oauth.Profile{Provider: "github", ProviderID: "42"}
	require.ErrorIs(t, noEmail.Validate(), oauth.ErrBadProfile)
}
