package completion

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Repository owns ListingCompletion persistence. The reconciliation workflow
// calls it inside the same transaction that writes the assignment.
type Repository interface {
	FindByAssignment(ctx context.Context, tx *gorm.DB, assignmentID snowflake.ID) (*ListingCompletion, error)
	Upsert(ctx context.Context, tx *gorm.DB, snapshot *ListingCompletion) error
	DeleteByAssignment(ctx context.Context, tx *gorm.DB, assignmentID snowflake.ID) error
	DeleteByTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error
	List(ctx context.Context, filter ListFilter) ([]*ListingCompletion, error)
}

type ListFilter struct {
	TaskID   snowflake.ID
	ListerID snowflake.ID
}

type gormRepository struct {
	db *gorm.DB
}

type RepositoryParams struct {
	fx.In
	DB *gorm.DB
}

func NewRepository(p RepositoryParams) Repository {
	return &gormRepository{db: p.DB}
}

func (r *gormRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *gormRepository) FindByAssignment(ctx context.Context, tx *gorm.DB, assignmentID snowflake.ID) (*ListingCompletion, error) {
	var record ListingCompletion
	err := r.conn(tx).WithContext(ctx).
		Preload("RangeCompletions").
		Where("assignment_id = ?", assignmentID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert updates the existing snapshot for the assignment in place or
// creates a new one. Range rows are replaced wholesale; the snapshot is
// rebuilt from assignment state on every reconciliation.
func (r *gormRepository) Upsert(ctx context.Context, tx *gorm.DB, snapshot *ListingCompletion) error {
	conn := r.conn(tx).WithContext(ctx)

	existing, err := r.FindByAssignment(ctx, tx, snapshot.AssignmentID)
	if err != nil {
		return err
	}

	if existing != nil {
		snapshot.ID = existing.ID
		if err := conn.Where("completion_id = ?", existing.ID).Delete(&RangeCompletion{}).Error; err != nil {
			return err
		}
		if err := conn.Model(&ListingCompletion{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"date":           snapshot.Date,
				"total_quantity": snapshot.TotalQuantity,
				"store_id":       snapshot.StoreID,
			}).Error; err != nil {
			return err
		}
		for i := range snapshot.RangeCompletions {
			snapshot.RangeCompletions[i].ID = 0
			snapshot.RangeCompletions[i].CompletionID = existing.ID
		}
		if len(snapshot.RangeCompletions) > 0 {
			if err := conn.Create(&snapshot.RangeCompletions).Error; err != nil {
				return err
			}
		}
		return nil
	}

	for i := range snapshot.RangeCompletions {
		snapshot.RangeCompletions[i].CompletionID = snapshot.ID
	}
	return conn.Create(snapshot).Error
}

func (r *gormRepository) DeleteByAssignment(ctx context.Context, tx *gorm.DB, assignmentID snowflake.ID) error {
	conn := r.conn(tx).WithContext(ctx)

	var ids []snowflake.ID
	if err := conn.Model(&ListingCompletion{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := conn.Where("completion_id IN ?", ids).Delete(&RangeCompletion{}).Error; err != nil {
		return err
	}
	return conn.Where("id IN ?", ids).Delete(&ListingCompletion{}).Error
}

func (r *gormRepository) DeleteByTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error {
	conn := r.conn(tx).WithContext(ctx)

	var ids []snowflake.ID
	if err := conn.Model(&ListingCompletion{}).
		Where("task_id = ?", taskID).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := conn.Where("completion_id IN ?", ids).Delete(&RangeCompletion{}).Error; err != nil {
		return err
	}
	return conn.Where("id IN ?", ids).Delete(&ListingCompletion{}).Error
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]*ListingCompletion, error) {
	tx := r.db.WithContext(ctx).Preload("RangeCompletions")
	if filter.TaskID != 0 {
		tx = tx.Where("task_id = ?", filter.TaskID)
	}
	if filter.ListerID != 0 {
		tx = tx.Where("lister_id = ?", filter.ListerID)
	}

	var records []*ListingCompletion
	if err := tx.Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
