package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"resellops/pkg/rbac"
)

func TestSignAndParse(t *testing.T) {
	p := Principal{ID: 987654321, Role: rbac.Lister}

	token, err := SignToken(p, "secret", time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := SignToken(Principal{ID: 1, Role: rbac.Lister}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := SignToken(Principal{ID: 1, Role: rbac.Lister}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	require.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	token, err := SignToken(Principal{ID: 1, Role: rbac.Role("auditor")}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	require.Error(t, err)
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := Principal{ID: 42, Role: rbac.SuperAdmin}
	ctx := WithPrincipal(context.Background(), p)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, p, got)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}
