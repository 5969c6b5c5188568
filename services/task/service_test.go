package task

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"resellops/pkg/db/pagination"
	"resellops/pkg/errutil"
	"resellops/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &Task{})
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func create(t *testing.T, s *Service, in CreateInput) *Task {
	t.Helper()
	if in.Title == "" {
		in.Title = "Wiper blades"
	}
	if in.Quantity == 0 {
		in.Quantity = 5
	}
	if in.Marketplace == "" {
		in.Marketplace = MarketplaceEbayUK
	}
	if in.CategoryID == 0 {
		in.CategoryID = 1
	}
	record, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	return record
}

func TestCreateDefaultsToDraft(t *testing.T) {
	s := newService(t)
	record := create(t, s, CreateInput{
		MarketplaceData: datatypes.JSON(`{"ebayCategoryId":"6030"}`),
	})

	require.Equal(t, StatusDraft, record.Status)
	require.Equal(t, 0, record.CompletedQuantity)
	require.JSONEq(t, `{"ebayCategoryId":"6030"}`, string(record.MarketplaceData))
}

func TestCreateRejectsUnknownMarketplace(t *testing.T) {
	s := newService(t)
	_, err := s.Create(context.Background(), CreateInput{
		Title:       "Wiper blades",
		Quantity:    5,
		Marketplace: "etsy",
		CategoryID:  1,
	})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestUpdateQuantityFloor(t *testing.T) {
	s := newService(t)
	record := create(t, s, CreateInput{Quantity: 10})

	// Simulate completion progress recorded by the reconciliation workflow.
	record.CompletedQuantity = 6
	require.NoError(t, s.repo.Save(context.Background(), record))

	four := 4
	_, err := s.Update(context.Background(), record.ID, UpdateInput{Quantity: &four})
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)

	eight := 8
	updated, err := s.Update(context.Background(), record.ID, UpdateInput{Quantity: &eight})
	require.NoError(t, err)
	require.Equal(t, 8, updated.Quantity)
}

func TestUpdateStatusManualOverride(t *testing.T) {
	s := newService(t)
	record := create(t, s, CreateInput{})

	completed := StatusCompleted
	updated, err := s.Update(context.Background(), record.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)

	// Manual edits may move status backwards; only automatic transitions
	// are monotonic.
	draft := StatusDraft
	updated, err = s.Update(context.Background(), record.ID, UpdateInput{Status: &draft})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, updated.Status)
}

func TestAdvanceNeverRegresses(t *testing.T) {
	tk := &Task{Status: StatusCompleted}
	tk.Advance(StatusAssigned)
	require.Equal(t, StatusCompleted, tk.Status)

	tk = &Task{Status: StatusDraft}
	tk.Advance(StatusAssigned)
	require.Equal(t, StatusAssigned, tk.Status)
}

func TestListFiltersAndPages(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		create(t, s, CreateInput{Marketplace: MarketplaceEbayUK})
	}
	create(t, s, CreateInput{Marketplace: MarketplaceAmazon})

	records, total, err := s.List(ctx, ListFilter{Marketplace: MarketplaceEbayUK})
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Zero(t, total, "total is only computed for paged queries")

	records, total, err = s.List(ctx, ListFilter{
		Marketplace: MarketplaceEbayUK,
		Page:        pagination.Pagination{Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.EqualValues(t, 3, total)
}

func TestDeleteMissingTask(t *testing.T) {
	s := newService(t)
	err := s.Delete(context.Background(), 12345)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusNotFound, base.Code)
}
