package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"resellops/pkg/db/option"
	"resellops/pkg/db/pagination"
	"resellops/pkg/errutil"
	"resellops/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DependentDeleter removes every record referencing a task inside the given
// transaction. Implemented by the assignment service so a task delete leaves
// no orphaned assignments, listing completions or compatibility assignments.
type DependentDeleter interface {
	DeleteForTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error
}

type Service struct {
	db     *gorm.DB
	repo   repository.Repository[Task]
	node   *snowflake.Node
	deps   DependentDeleter
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Deps   DependentDeleter `optional:"true"`
	Logger *zap.Logger      `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     p.DB,
		repo:   repository.ProvideStore[Task](p.DB),
		node:   p.Node,
		deps:   p.Deps,
		logger: logger,
	}
}

type CreateInput struct {
	Title            string         `json:"title" binding:"required"`
	SupplierLink     string         `json:"supplierLink"`
	SourcePrice      float64        `json:"sourcePrice"`
	SellingPrice     float64        `json:"sellingPrice"`
	Quantity         int            `json:"quantity" binding:"required,gte=1"`
	SourcePlatformID snowflake.ID   `json:"sourcePlatformId"`
	Marketplace      Marketplace    `json:"marketplace" binding:"required"`
	CategoryID       snowflake.ID   `json:"categoryId" binding:"required"`
	SubcategoryID    snowflake.ID   `json:"subcategoryId"`
	RangeID          *snowflake.ID  `json:"rangeId"`
	MarketplaceData  datatypes.JSON `json:"marketplaceData"`
	CreatedBy        snowflake.ID   `json:"-"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	if !in.Marketplace.Valid() {
		return nil, errutil.ValidationFailed("unknown marketplace")
	}
	if in.Quantity < 1 {
		return nil, errutil.ValidationFailed("quantity must be at least 1")
	}

	record := &Task{
		ID:               s.node.Generate(),
		Title:            strings.TrimSpace(in.Title),
		SupplierLink:     in.SupplierLink,
		SourcePrice:      in.SourcePrice,
		SellingPrice:     in.SellingPrice,
		Quantity:         in.Quantity,
		SourcePlatformID: in.SourcePlatformID,
		Marketplace:      in.Marketplace,
		CategoryID:       in.CategoryID,
		SubcategoryID:    in.SubcategoryID,
		RangeID:          in.RangeID,
		Status:           StatusDraft,
		CreatedBy:        in.CreatedBy,
		MarketplaceData:  in.MarketplaceData,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create task", errutil.WithErr(err))
	}

	s.logger.Info("task created",
		zap.String("task_id", record.ID.String()),
		zap.String("marketplace", record.Marketplace.String()),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*Task, error) {
	record, err := s.repo.FindOne(ctx, &Task{ID: id})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("task not found")
		}
		return nil, errutil.Internal("failed to load task", errutil.WithErr(err))
	}
	return record, nil
}

type ListFilter struct {
	Status      Status        `form:"status"`
	Marketplace Marketplace   `form:"marketplace"`
	CategoryID  snowflake.ID  `form:"categoryId"`
	ListerID    snowflake.ID  `form:"listerId"`
	CreatedFrom *time.Time    `form:"createdFrom" time_format:"2006-01-02"`
	CreatedTo   *time.Time    `form:"createdTo" time_format:"2006-01-02"`
	Page        pagination.Pagination
}

func (f ListFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Marketplace != "" {
		tx = tx.Where("marketplace = ?", f.Marketplace)
	}
	if f.CategoryID != 0 {
		tx = tx.Where("category_id = ?", f.CategoryID)
	}
	if f.ListerID != 0 {
		tx = tx.Where("lister_id = ?", f.ListerID)
	}
	if f.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		tx = tx.Where("created_at < ?", f.CreatedTo.AddDate(0, 0, 1))
	}
	return tx
}

// List returns tasks matching the filter; when paging is requested the
// envelope carries the total match count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Task, int64, error) {
	opts := []option.QueryOption{
		option.WithScope(f.scope),
		option.WithOrder("created_at DESC"),
	}

	var total int64
	if f.Page.Paged() {
		var err error
		total, err = s.repo.Count(ctx, &Task{}, option.WithScope(f.scope))
		if err != nil {
			return nil, 0, errutil.Internal("failed to count tasks", errutil.WithErr(err))
		}
		opts = append(opts,
			option.WithLimit(f.Page.Normalize()),
			option.WithOffset(f.Page.Offset()),
		)
	}

	records, err := s.repo.Find(ctx, &Task{}, opts...)
	if err != nil {
		return nil, 0, errutil.Internal("failed to list tasks", errutil.WithErr(err))
	}
	return records, total, nil
}

type UpdateInput struct {
	Title        *string  `json:"title"`
	SupplierLink *string  `json:"supplierLink"`
	SourcePrice  *float64 `json:"sourcePrice"`
	SellingPrice *float64 `json:"sellingPrice"`
	Quantity     *int     `json:"quantity"`
	Status       *Status  `json:"status"`
}

// Update applies a manual edit. Manual edits may move status in either
// direction; only automatic transitions are monotonic.
func (s *Service) Update(ctx context.Context, id snowflake.ID, in UpdateInput) (*Task, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		record.Title = strings.TrimSpace(*in.Title)
	}
	if in.SupplierLink != nil {
		record.SupplierLink = *in.SupplierLink
	}
	if in.SourcePrice != nil {
		record.SourcePrice = *in.SourcePrice
	}
	if in.SellingPrice != nil {
		record.SellingPrice = *in.SellingPrice
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, errutil.ValidationFailed("quantity must be at least 1")
		}
		if *in.Quantity < record.CompletedQuantity {
			return nil, errutil.ValidationFailed("quantity cannot drop below completed quantity")
		}
		record.Quantity = *in.Quantity
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, errutil.ValidationFailed("unknown status")
		}
		record.Status = *in.Status
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, errutil.Internal("failed to update task", errutil.WithErr(err))
	}
	return record, nil
}

// Delete removes the task and cascades to every dependent record in one
// transaction. No orphans remain.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.deps != nil {
			if err := s.deps.DeleteForTask(ctx, tx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&Task{}).Error
	})
	if err != nil {
		return errutil.Internal("failed to delete task", errutil.WithErr(err))
	}

	s.logger.Info("task deleted", zap.String("task_id", id.String()))
	return nil
}
