package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resellops/pkg/auth"
	"resellops/pkg/db/pagination"
	"resellops/pkg/errutil"
	"resellops/pkg/keymutex"
	"resellops/services/catalog"
	"resellops/services/compat"
	"resellops/services/completion"
	"resellops/services/task"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns assignments and drives the reconciliation workflow that keeps
// an assignment's bookkeeping and its mirrored ListingCompletion consistent.
type Service struct {
	db          *gorm.DB
	node        *snowflake.Node
	keys        *keymutex.KeyMutex
	completions completion.Repository
	compats     *compat.Service
	catalog     *catalog.Service
	logger      *zap.Logger
}

type ServiceParams struct {
	fx.In

	DB          *gorm.DB
	Node        *snowflake.Node
	Completions completion.Repository
	Compats     *compat.Service
	Catalog     *catalog.Service
	Logger      *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:          p.DB,
		node:        p.Node,
		keys:        keymutex.New(),
		completions: p.Completions,
		compats:     p.Compats,
		catalog:     p.Catalog,
		logger:      logger,
	}
}

type CreateInput struct {
	TaskID            snowflake.ID `json:"taskId" binding:"required"`
	ListerID          snowflake.ID `json:"listerId" binding:"required"`
	Quantity          int          `json:"quantity" binding:"required,gte=1"`
	ListingPlatformID snowflake.ID `json:"listingPlatformId" binding:"required"`
	StoreID           snowflake.ID `json:"storeId" binding:"required"`
	Notes             string       `json:"notes"`
	ScheduledDate     *time.Time   `json:"scheduledDate"`
	CreatedBy         snowflake.ID `json:"-"`
}

// Create commits a lister to a task. The task moves draft -> assigned and is
// stamped with the lister, platform, store and assigner.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Assignment, error) {
	if in.Quantity < 1 {
		return nil, errutil.ValidationFailed("quantity must be at least 1")
	}

	var t task.Task
	if err := s.db.WithContext(ctx).Where("id = ?", in.TaskID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("task not found")
		}
		return nil, errutil.Internal("failed to load task", errutil.WithErr(err))
	}

	record := &Assignment{
		ID:                s.node.Generate(),
		TaskID:            t.ID,
		ListerID:          in.ListerID,
		Quantity:          in.Quantity,
		ListingPlatformID: in.ListingPlatformID,
		StoreID:           in.StoreID,
		Marketplace:       t.Marketplace,
		CreatedBy:         in.CreatedBy,
		Notes:             in.Notes,
		ScheduledDate:     in.ScheduledDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		now := time.Now()
		t.Advance(task.StatusAssigned)
		t.ListerID = &in.ListerID
		t.ListingPlatformID = &in.ListingPlatformID
		t.StoreID = &in.StoreID
		t.AssignedBy = &in.CreatedBy
		t.AssignedAt = &now
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, errutil.Internal("failed to create assignment", errutil.WithErr(err))
	}

	s.logger.Info("assignment created",
		zap.String("assignment_id", record.ID.String()),
		zap.String("task_id", t.ID.String()),
		zap.String("lister_id", in.ListerID.String()),
	)
	return s.Get(ctx, record.ID)
}

// Get returns the assignment with its range distribution and task expanded.
func (s *Service) Get(ctx context.Context, id snowflake.ID) (*Assignment, error) {
	var record Assignment
	err := s.db.WithContext(ctx).
		Preload("RangeQuantities").
		Preload("Task").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("assignment not found")
		}
		return nil, errutil.Internal("failed to load assignment", errutil.WithErr(err))
	}
	return &record, nil
}

type ListFilter struct {
	TaskID            snowflake.ID     `form:"taskId"`
	ListerID          snowflake.ID     `form:"listerId"`
	ListingPlatformID snowflake.ID     `form:"listingPlatformId"`
	StoreID           snowflake.ID     `form:"storeId"`
	Marketplace       task.Marketplace `form:"marketplace"`
	ScheduledFrom     *time.Time       `form:"scheduledFrom" time_format:"2006-01-02"`
	ScheduledTo       *time.Time       `form:"scheduledTo" time_format:"2006-01-02"`
	CreatedFrom       *time.Time       `form:"createdFrom" time_format:"2006-01-02"`
	CreatedTo         *time.Time       `form:"createdTo" time_format:"2006-01-02"`
	Page              pagination.Pagination
}

func (f ListFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.TaskID != 0 {
		tx = tx.Where("task_id = ?", f.TaskID)
	}
	if f.ListerID != 0 {
		tx = tx.Where("lister_id = ?", f.ListerID)
	}
	if f.ListingPlatformID != 0 {
		tx = tx.Where("listing_platform_id = ?", f.ListingPlatformID)
	}
	if f.StoreID != 0 {
		tx = tx.Where("store_id = ?", f.StoreID)
	}
	if f.Marketplace != "" {
		tx = tx.Where("marketplace = ?", f.Marketplace)
	}
	if f.ScheduledFrom != nil {
		tx = tx.Where("scheduled_date >= ?", *f.ScheduledFrom)
	}
	if f.ScheduledTo != nil {
		tx = tx.Where("scheduled_date < ?", f.ScheduledTo.AddDate(0, 0, 1))
	}
	if f.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		tx = tx.Where("created_at < ?", f.CreatedTo.AddDate(0, 0, 1))
	}
	return tx
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Assignment, int64, error) {
	base := s.db.WithContext(ctx).Model(&Assignment{}).Scopes(f.scope)

	var total int64
	if f.Page.Paged() {
		if err := base.Count(&total).Error; err != nil {
			return nil, 0, errutil.Internal("failed to count assignments", errutil.WithErr(err))
		}
	}

	query := s.db.WithContext(ctx).
		Preload("RangeQuantities").
		Preload("Task").
		Scopes(f.scope).
		Order("created_at DESC")
	if f.Page.Paged() {
		query = query.Limit(f.Page.Normalize()).Offset(f.Page.Offset())
	}

	var records []*Assignment
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, errutil.Internal("failed to list assignments", errutil.WithErr(err))
	}
	return records, total, nil
}

// Delete removes the assignment and cascades to its ListingCompletion and any
// CompatibilityAssignment derived from it.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.completions.DeleteByAssignment(ctx, tx, id); err != nil {
			return err
		}
		if err := s.compats.DeleteBySourceAssignment(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&RangeQuantity{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Assignment{}).Error
	})
	if err != nil {
		return errutil.Internal("failed to delete assignment", errutil.WithErr(err))
	}

	s.logger.Info("assignment deleted", zap.String("assignment_id", id.String()))
	return nil
}

// CompleteRange reports progress on one product range of the assignment.
// Zero quantity removes the entry; a positive quantity overwrites it (last
// write wins, not additive). The assignment's bookkeeping and the mirrored
// ListingCompletion are updated in one transaction, serialised per
// assignment so concurrent reports cannot interleave.
func (s *Service) CompleteRange(ctx context.Context, principal auth.Principal, id, rangeID snowflake.ID, quantity int) (*Assignment, error) {
	if quantity < 0 {
		return nil, errutil.ValidationFailed("quantity must not be negative")
	}

	s.keys.Lock(int64(id))
	defer s.keys.Unlock(int64(id))

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, record); err != nil {
		return nil, err
	}

	t := record.Task
	if t == nil {
		return nil, errutil.Internal("assignment has no task")
	}

	rng, err := s.catalog.GetRange(ctx, rangeID)
	if err != nil {
		return nil, err
	}
	if rng.CategoryID != t.CategoryID {
		return nil, errutil.ValidationFailed("range does not belong to the task's category")
	}

	entries := applyRangeQuantity(record.RangeQuantities, rangeID, quantity)
	record.RangeQuantities = entries

	if err := s.reconcile(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("range quantity reported",
		zap.String("assignment_id", id.String()),
		zap.String("range_id", rangeID.String()),
		zap.Int("quantity", quantity),
	)
	return s.Get(ctx, id)
}

// Submit finalizes the assignment. An under-distributed assignment is
// rejected with a conflict naming the shortfall.
func (s *Service) Submit(ctx context.Context, principal auth.Principal, id snowflake.ID) (*Assignment, error) {
	s.keys.Lock(int64(id))
	defer s.keys.Unlock(int64(id))

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(principal, record); err != nil {
		return nil, err
	}

	total := record.DistributedTotal()
	if total < record.Quantity {
		return nil, errutil.Conflict(fmt.Sprintf(
			"cannot submit assignment: %d of %d distributed, shortfall of %d",
			total, record.Quantity, record.Quantity-total,
		))
	}

	if err := s.reconcile(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("assignment submitted", zap.String("assignment_id", id.String()))
	return s.Get(ctx, id)
}

// reconcile persists the assignment's recomputed bookkeeping and mirrors it
// into the ListingCompletion snapshot, inside one transaction. It also rolls
// the task-level completion totals forward.
func (s *Service) reconcile(ctx context.Context, record *Assignment) error {
	total := record.DistributedTotal()

	record.CompletedQuantity = total
	if record.CompletedQuantity > record.Quantity {
		record.CompletedQuantity = record.Quantity
	}

	now := time.Now()
	if total >= record.Quantity {
		if record.CompletedAt == nil {
			record.CompletedAt = &now
		}
	} else {
		record.CompletedAt = nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", record.ID).Delete(&RangeQuantity{}).Error; err != nil {
			return err
		}
		if len(record.RangeQuantities) > 0 {
			rows := make([]RangeQuantity, len(record.RangeQuantities))
			copy(rows, record.RangeQuantities)
			for i := range rows {
				rows[i].ID = 0
				rows[i].AssignmentID = record.ID
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&Assignment{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{
				"completed_quantity": record.CompletedQuantity,
				"completed_at":       record.CompletedAt,
			}).Error; err != nil {
			return err
		}

		if total == 0 {
			if err := s.completions.DeleteByAssignment(ctx, tx, record.ID); err != nil {
				return err
			}
		} else {
			if err := s.completions.Upsert(ctx, tx, s.buildSnapshot(record, total)); err != nil {
				return err
			}
		}

		return s.syncTask(ctx, tx, record.TaskID)
	})
	if err != nil {
		return errutil.Internal("failed to reconcile assignment", errutil.WithErr(err))
	}
	return nil
}

// buildSnapshot materialises the reporting view of the assignment's current
// completion state. Zeroed ranges never appear.
func (s *Service) buildSnapshot(record *Assignment, total int) *completion.ListingCompletion {
	t := record.Task
	snapshot := &completion.ListingCompletion{
		ID:                s.node.Generate(),
		Date:              time.Now(),
		AssignmentID:      record.ID,
		TaskID:            record.TaskID,
		ListerID:          record.ListerID,
		ListingPlatformID: record.ListingPlatformID,
		StoreID:           record.StoreID,
		Marketplace:       record.Marketplace,
		TotalQuantity:     total,
	}
	if t != nil {
		snapshot.CategoryID = t.CategoryID
		snapshot.SubcategoryID = t.SubcategoryID
	}
	for _, rq := range record.RangeQuantities {
		if rq.Quantity <= 0 {
			continue
		}
		snapshot.RangeCompletions = append(snapshot.RangeCompletions, completion.RangeCompletion{
			RangeID:  rq.RangeID,
			Quantity: rq.Quantity,
		})
	}
	return snapshot
}

// syncTask rolls the sum of assignment completions up to the task. The task
// status only moves forward; completion totals still track downward
// corrections.
func (s *Service) syncTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error {
	var t task.Task
	if err := tx.WithContext(ctx).Where("id = ?", taskID).First(&t).Error; err != nil {
		return err
	}

	var sum int64
	if err := tx.WithContext(ctx).Model(&Assignment{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(SUM(completed_quantity), 0)").
		Scan(&sum).Error; err != nil {
		return err
	}

	t.CompletedQuantity = int(sum)
	if t.CompletedQuantity > t.Quantity {
		t.CompletedQuantity = t.Quantity
	}
	if t.CompletedQuantity >= t.Quantity {
		t.Advance(task.StatusCompleted)
		if t.CompletedAt == nil {
			now := time.Now()
			t.CompletedAt = &now
		}
	}
	return tx.Save(&t).Error
}

// DeleteForTask implements task.DependentDeleter: a task delete removes every
// assignment, listing completion and compatibility assignment referencing it.
func (s *Service) DeleteForTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error {
	var ids []snowflake.ID
	if err := tx.WithContext(ctx).Model(&Assignment{}).
		Where("task_id = ?", taskID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	if len(ids) > 0 {
		if err := tx.WithContext(ctx).Where("assignment_id IN ?", ids).Delete(&RangeQuantity{}).Error; err != nil {
			return err
		}
	}
	if err := s.completions.DeleteByTask(ctx, tx, taskID); err != nil {
		return err
	}
	if err := s.compats.DeleteByTask(ctx, tx, taskID); err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("task_id = ?", taskID).Delete(&Assignment{}).Error
}

// RangeInUse implements catalog.RangeUsageChecker: a range with live
// distribution entries cannot be deleted.
func (s *Service) RangeInUse(ctx context.Context, rangeID snowflake.ID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&RangeQuantity{}).
		Where("range_id = ?", rangeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyRangeQuantity applies last-write-wins semantics to the entry for
// rangeID: zero removes it, anything else overwrites or inserts.
func applyRangeQuantity(entries []RangeQuantity, rangeID snowflake.ID, quantity int) []RangeQuantity {
	out := entries[:0]
	found := false
	for _, rq := range entries {
		if rq.RangeID == rangeID {
			found = true
			if quantity == 0 {
				continue
			}
			rq.Quantity = quantity
		}
		out = append(out, rq)
	}
	if !found && quantity > 0 {
		out = append(out, RangeQuantity{RangeID: rangeID, Quantity: quantity})
	}
	return out
}

// authorize permits admins and the assignment's own lister.
func authorize(principal auth.Principal, record *Assignment) error {
	if principal.Role.IsAdmin() {
		return nil
	}
	if principal.ID == record.ListerID {
		return nil
	}
	return errutil.Forbidden("only admins or the assignment's lister may act on it")
}
