package assignment

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resellops/pkg/auth"
	"resellops/pkg/errutil"
	"resellops/pkg/rbac"
	"resellops/services/catalog"
	"resellops/services/compat"
	"resellops/services/completion"
	"resellops/services/task"
	"resellops/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixtures struct {
	db         *gorm.DB
	node       *snowflake.Node
	svc        *Service
	tasks      *task.Service
	compats    *compat.Service
	catalog    *catalog.Service
	admin      auth.Principal
	lister     auth.Principal
	task       *task.Task
	rangeA     *catalog.Range
	rangeB     *catalog.Range
	rangeOther *catalog.Range
}

func setup(t *testing.T) *fixtures {
	t.Helper()

	db := testutil.NewTestDB(t,
		&task.Task{},
		&Assignment{},
		&RangeQuantity{},
		&completion.ListingCompletion{},
		&completion.RangeCompletion{},
		&compat.CompatibilityAssignment{},
		&catalog.Category{},
		&catalog.Range{},
	)

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	catalogSvc := catalog.NewService(catalog.ServiceParams{DB: db, Node: node})
	compatSvc := compat.NewService(compat.ServiceParams{DB: db, Node: node})
	completions := completion.NewRepository(completion.RepositoryParams{DB: db})

	svc := NewService(ServiceParams{
		DB:          db,
		Node:        node,
		Completions: completions,
		Compats:     compatSvc,
		Catalog:     catalogSvc,
	})
	catalogSvc.SetRangeUsage(svc)

	taskSvc := task.NewService(task.ServiceParams{DB: db, Node: node, Deps: svc})

	ctx := context.Background()
	catA, err := catalogSvc.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Brake Parts"})
	require.NoError(t, err)
	catB, err := catalogSvc.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Lighting"})
	require.NoError(t, err)

	rangeA, err := catalogSvc.CreateRange(ctx, catalog.CreateRangeInput{Name: "Front", CategoryID: catA.ID})
	require.NoError(t, err)
	rangeB, err := catalogSvc.CreateRange(ctx, catalog.CreateRangeInput{Name: "Rear", CategoryID: catA.ID})
	require.NoError(t, err)
	rangeOther, err := catalogSvc.CreateRange(ctx, catalog.CreateRangeInput{Name: "Headlamp", CategoryID: catB.ID})
	require.NoError(t, err)

	admin := auth.Principal{ID: node.Generate(), Role: rbac.ListingAdmin}
	lister := auth.Principal{ID: node.Generate(), Role: rbac.Lister}

	tk, err := taskSvc.Create(ctx, task.CreateInput{
		Title:       "Brake pad set",
		Quantity:    10,
		Marketplace: task.MarketplaceEbayUS,
		CategoryID:  catA.ID,
		CreatedBy:   admin.ID,
	})
	require.NoError(t, err)

	return &fixtures{
		db:         db,
		node:       node,
		svc:        svc,
		tasks:      taskSvc,
		compats:    compatSvc,
		catalog:    catalogSvc,
		admin:      admin,
		lister:     lister,
		task:       tk,
		rangeA:     rangeA,
		rangeB:     rangeB,
		rangeOther: rangeOther,
	}
}

func (f *fixtures) createAssignment(t *testing.T, quantity int) *Assignment {
	t.Helper()
	record, err := f.svc.Create(context.Background(), CreateInput{
		TaskID:            f.task.ID,
		ListerID:          f.lister.ID,
		Quantity:          quantity,
		ListingPlatformID: f.node.Generate(),
		StoreID:           f.node.Generate(),
		CreatedBy:         f.admin.ID,
	})
	require.NoError(t, err)
	return record
}

func (f *fixtures) snapshot(t *testing.T, assignmentID snowflake.ID) *completion.ListingCompletion {
	t.Helper()
	var records []*completion.ListingCompletion
	require.NoError(t, f.db.Preload("RangeCompletions").
		Where("assignment_id = ?", assignmentID).
		Find(&records).Error)
	require.LessOrEqual(t, len(records), 1, "at most one listing completion per assignment")
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

func TestCreateCopiesMarketplaceAndAdvancesTask(t *testing.T) {
	f := setup(t)
	record := f.createAssignment(t, 10)

	require.Equal(t, task.MarketplaceEbayUS, record.Marketplace)
	require.NotNil(t, record.Task)
	require.Equal(t, task.StatusAssigned, record.Task.Status)
	require.NotNil(t, record.Task.AssignedAt)
	require.Equal(t, f.admin.ID, *record.Task.AssignedBy)
}

func TestCompleteRangeLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	// Partial distribution: 4 of 10.
	record, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, record.CompletedQuantity)
	require.Nil(t, record.CompletedAt)

	snap := f.snapshot(t, record.ID)
	require.NotNil(t, snap)
	require.Equal(t, 4, snap.TotalQuantity)
	require.Len(t, snap.RangeCompletions, 1)

	// Second range tops it up to 10: auto-completed.
	record, err = f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeB.ID, 6)
	require.NoError(t, err)
	require.Equal(t, 10, record.CompletedQuantity)
	require.NotNil(t, record.CompletedAt)

	snap = f.snapshot(t, record.ID)
	require.NotNil(t, snap)
	require.Equal(t, 10, snap.TotalQuantity)
	require.Len(t, snap.RangeCompletions, 2)

	// Zeroing rangeA reopens the assignment.
	record, err = f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 6, record.CompletedQuantity)
	require.Nil(t, record.CompletedAt)
	require.Len(t, record.RangeQuantities, 1)

	snap = f.snapshot(t, record.ID)
	require.NotNil(t, snap)
	require.Equal(t, 6, snap.TotalQuantity)
	require.Len(t, snap.RangeCompletions, 1)

	// Zeroing the remaining range deletes the snapshot entirely.
	record, err = f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeB.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 0, record.CompletedQuantity)
	require.Nil(t, f.snapshot(t, record.ID))
}

func TestCompleteRangeLastWriteWins(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	record, err := f.svc.CompleteRange(ctx, f.admin, record.ID, f.rangeA.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, record.CompletedQuantity)

	// Overwrites, does not add.
	record, err = f.svc.CompleteRange(ctx, f.admin, record.ID, f.rangeA.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 7, record.CompletedQuantity)
	require.Len(t, record.RangeQuantities, 1)
}

func TestCompleteRangeOverDistributionClampsCompleted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	record, err := f.svc.CompleteRange(ctx, f.admin, record.ID, f.rangeA.ID, 14)
	require.NoError(t, err)
	require.Equal(t, 10, record.CompletedQuantity, "completedQuantity is capped at the assigned quantity")
	require.NotNil(t, record.CompletedAt)
	require.Equal(t, 14, f.snapshot(t, record.ID).TotalQuantity)
}

func TestCompleteRangeCategoryMismatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	_, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeOther.ID, 4)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)

	// No state changes.
	reloaded, err := f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.CompletedQuantity)
	require.Empty(t, reloaded.RangeQuantities)
	require.Nil(t, f.snapshot(t, record.ID))
}

func TestCompleteRangeForbiddenForOtherLister(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	stranger := auth.Principal{ID: f.node.Generate(), Role: rbac.Lister}
	_, err := f.svc.CompleteRange(ctx, stranger, record.ID, f.rangeA.ID, 4)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusForbidden, base.Code)
}

func TestCompleteRangeNegativeQuantity(t *testing.T) {
	f := setup(t)
	record := f.createAssignment(t, 10)

	_, err := f.svc.CompleteRange(context.Background(), f.admin, record.ID, f.rangeA.ID, -1)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusValidationFailed, base.Code)
}

func TestSubmitShortfallRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	record, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 7)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.lister, record.ID)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusConflict, base.Code)
	require.Contains(t, base.Message, "shortfall of 3")

	// Assignment and snapshot untouched.
	reloaded, err := f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.Equal(t, 7, reloaded.CompletedQuantity)
	require.Nil(t, reloaded.CompletedAt)
	require.Equal(t, 7, f.snapshot(t, record.ID).TotalQuantity)
}

func TestSubmitFinalizes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	_, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 4)
	require.NoError(t, err)
	_, err = f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeB.ID, 6)
	require.NoError(t, err)

	record, err = f.svc.Submit(ctx, f.lister, record.ID)
	require.NoError(t, err)
	require.Equal(t, 10, record.CompletedQuantity)
	require.NotNil(t, record.CompletedAt)
	require.Equal(t, 10, f.snapshot(t, record.ID).TotalQuantity)

	// The task rolls up to completed.
	tk, err := f.tasks.Get(ctx, f.task.ID)
	require.NoError(t, err)
	require.Equal(t, task.StatusCompleted, tk.Status)
	require.Equal(t, 10, tk.CompletedQuantity)
	require.NotNil(t, tk.CompletedAt)
}

func TestDeleteCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	_, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 4)
	require.NoError(t, err)
	_, err = f.compats.Create(ctx, compat.CreateInput{
		TaskID:             f.task.ID,
		SourceAssignmentID: record.ID,
		ListerID:           f.lister.ID,
		Quantity:           2,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, record.ID))

	_, err = f.svc.Get(ctx, record.ID)
	require.Error(t, err)
	require.Nil(t, f.snapshot(t, record.ID))

	var compatCount int64
	require.NoError(t, f.db.Model(&compat.CompatibilityAssignment{}).
		Where("source_assignment_id = ?", record.ID).
		Count(&compatCount).Error)
	require.Zero(t, compatCount)
}

func TestTaskDeleteLeavesNoOrphans(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.createAssignment(t, 6)
	second := f.createAssignment(t, 4)

	_, err := f.svc.CompleteRange(ctx, f.lister, first.ID, f.rangeA.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.CompleteRange(ctx, f.lister, second.ID, f.rangeB.ID, 1)
	require.NoError(t, err)
	_, err = f.compats.Create(ctx, compat.CreateInput{
		TaskID:             f.task.ID,
		SourceAssignmentID: first.ID,
		ListerID:           f.lister.ID,
		Quantity:           1,
	})
	require.NoError(t, err)

	require.NoError(t, f.tasks.Delete(ctx, f.task.ID))

	for name, model := range map[string]any{
		"assignments":               &Assignment{},
		"range quantities":          &RangeQuantity{},
		"listing completions":       &completion.ListingCompletion{},
		"completion ranges":         &completion.RangeCompletion{},
		"compatibility assignments": &compat.CompatibilityAssignment{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		require.Zero(t, count, "%s must not survive a task delete", name)
	}
}

func TestDeleteRangeGuardedByDistribution(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	_, err := f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 4)
	require.NoError(t, err)

	// A range with live distribution entries cannot be deleted.
	err = f.catalog.DeleteRange(ctx, f.rangeA.ID)
	require.Error(t, err)
	base, ok := errutil.As(err)
	require.True(t, ok)
	require.Equal(t, errutil.StatusConflict, base.Code)

	// Zeroing the entry releases the range.
	_, err = f.svc.CompleteRange(ctx, f.lister, record.ID, f.rangeA.ID, 0)
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteRange(ctx, f.rangeA.ID))

	// Never-distributed ranges delete freely.
	require.NoError(t, f.catalog.DeleteRange(ctx, f.rangeOther.ID))
}

func TestConcurrentCompleteRangeKeepsInvariant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	record := f.createAssignment(t, 10)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		rangeID := f.rangeA.ID
		if i%2 == 1 {
			rangeID = f.rangeB.ID
		}
		qty := i
		go func() {
			defer wg.Done()
			_, err := f.svc.CompleteRange(ctx, f.admin, record.ID, rangeID, qty)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded, err := f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, reloaded.CompletedQuantity, 0)
	require.LessOrEqual(t, reloaded.CompletedQuantity, reloaded.Quantity)

	total := reloaded.DistributedTotal()
	if total > 0 {
		snap := f.snapshot(t, record.ID)
		require.NotNil(t, snap)
		require.Equal(t, total, snap.TotalQuantity)
	} else {
		require.Nil(t, f.snapshot(t, record.ID))
	}
}
