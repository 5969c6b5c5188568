package user

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"resellops/pkg/errutil"
	"resellops/pkg/rbac"
	"resellops/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func TestCreateHashesPasswordAndNormalisesEmail(t *testing.T) {
	s := newService(t)
	record, err := s.Create(context.Background(), CreateInput{
		Email:    "  Jordan@Example.COM ",
		Name:     "Jordan",
		Password: "hunter2hunter2",
		Role:     rbac.Lister,
	})
	require.NoError(t, err)

	require.Equal(t, "jordan@example.com", record.Email)
	require.True(t, record.Active)
	require.NotEqual(t, "hunter2hunter2", record.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CreateInput{
		Email:    "jordan@example.com",
		Name:     "Jordan",
		Password: "hunter2hunter2",
		Role:     rbac.Lister,
	})
	require.NoError(t, err)

	_, err = s.Create(ctx, CreateInput{
		Email:    "Jordan@Example.com",
		Name:     "Jordan Again",
		Password: "hunter2hunter2",
		Role:     rbac.Lister,
	})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusConflict, base.Code)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	s := newService(t)
	_, err := s.Create(context.Background(), CreateInput{
		Email:    "a@b.com",
		Name:     "A",
		Password: "hunter2hunter2",
		Role:     "auditor",
	})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestListFiltersByRole(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Email: "a@b.com", Name: "A", Password: "hunter2hunter2", Role: rbac.Lister},
		{Email: "c@d.com", Name: "C", Password: "hunter2hunter2", Role: rbac.Lister},
		{Email: "e@f.com", Name: "E", Password: "hunter2hunter2", Role: rbac.ListingAdmin},
	} {
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}

	listers, err := s.List(ctx, rbac.Lister)
	require.NoError(t, err)
	require.Len(t, listers, 2)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDeactivateKeepsRecord(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	record, err := s.Create(ctx, CreateInput{
		Email:    "a@b.com",
		Name:     "A",
		Password: "hunter2hunter2",
		Role:     rbac.Lister,
	})
	require.NoError(t, err)

	deactivated, err := s.Deactivate(ctx, record.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	// The record still resolves for audit references.
	got, err := s.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, record.Email, got.Email)
}
