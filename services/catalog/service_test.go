package catalog

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resellops/pkg/errutil"
	"resellops/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &Platform{}, &Store{}, &Category{}, &Subcategory{}, &Range{})
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func TestCreatePlatformSlugAndKind(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	record, err := s.CreatePlatform(ctx, CreatePlatformInput{Name: "Ali Express", Kind: KindSource})
	require.NoError(t, err)
	require.Equal(t, "ali-express", record.Slug)

	_, err = s.CreatePlatform(ctx, CreatePlatformInput{Name: "Shopify", Kind: "marketplace"})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestListPlatformsByKind(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.CreatePlatform(ctx, CreatePlatformInput{Name: "AliExpress", Kind: KindSource})
	require.NoError(t, err)
	_, err = s.CreatePlatform(ctx, CreatePlatformInput{Name: "eBay", Kind: KindListing})
	require.NoError(t, err)
	_, err = s.CreatePlatform(ctx, CreatePlatformInput{Name: "Amazon", Kind: KindListing})
	require.NoError(t, err)

	listing, err := s.ListPlatforms(ctx, KindListing)
	require.NoError(t, err)
	require.Len(t, listing, 2)

	all, err := s.ListPlatforms(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStoreRequiresPlatform(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.CreateStore(ctx, CreateStoreInput{Name: "Main", PlatformID: 999})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusNotFound, base.Code)

	platform, err := s.CreatePlatform(ctx, CreatePlatformInput{Name: "eBay", Kind: KindListing})
	require.NoError(t, err)

	store, err := s.CreateStore(ctx, CreateStoreInput{Name: "Main Store", PlatformID: platform.ID})
	require.NoError(t, err)
	require.Equal(t, "main-store", store.Slug)
}

func TestRangeRequiresCategory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.CreateRange(ctx, CreateRangeInput{Name: "Front", CategoryID: 999})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusNotFound, base.Code)

	category, err := s.CreateCategory(ctx, CreateCategoryInput{Name: "Brake Parts"})
	require.NoError(t, err)

	rng, err := s.CreateRange(ctx, CreateRangeInput{Name: "Front", CategoryID: category.ID})
	require.NoError(t, err)

	got, err := s.GetRange(ctx, rng.ID)
	require.NoError(t, err)
	require.Equal(t, category.ID, got.CategoryID)

	ranges, err := s.ListRanges(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
}

func TestDeleteSubcategory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, CreateCategoryInput{Name: "Brake Parts"})
	require.NoError(t, err)
	sub, err := s.CreateSubcategory(ctx, CreateSubcategoryInput{Name: "Pads", CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSubcategory(ctx, sub.ID))

	subs, err := s.ListSubcategories(ctx, category.ID)
	require.NoError(t, err)
	require.Empty(t, subs)
}

func TestDeleteRangeWithoutUsageChecker(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, CreateCategoryInput{Name: "Brake Parts"})
	require.NoError(t, err)
	rng, err := s.CreateRange(ctx, CreateRangeInput{Name: "Front", CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRange(ctx, rng.ID))

	ranges, err := s.ListRanges(ctx, category.ID)
	require.NoError(t, err)
	require.Empty(t, ranges)
}

type stubRangeUsage struct{ inUse bool }

func (s stubRangeUsage) RangeInUse(context.Context, snowflake.ID) (bool, error) {
	return s.inUse, nil
}

func TestDeleteRangeRefusedWhileInUse(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, CreateCategoryInput{Name: "Brake Parts"})
	require.NoError(t, err)
	rng, err := s.CreateRange(ctx, CreateRangeInput{Name: "Front", CategoryID: category.ID})
	require.NoError(t, err)

	s.SetRangeUsage(stubRangeUsage{inUse: true})
	err = s.DeleteRange(ctx, rng.ID)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusConflict, base.Code)

	s.SetRangeUsage(stubRangeUsage{inUse: false})
	require.NoError(t, s.DeleteRange(ctx, rng.ID))
}

func TestDeleteCategory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	category, err := s.CreateCategory(ctx, CreateCategoryInput{Name: "Lighting"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, category.ID))

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, categories)
}
