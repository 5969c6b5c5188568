package compat

import (
	"context"

	"resellops/pkg/errutil"
	"resellops/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	repo   repository.Repository[CompatibilityAssignment]
	node   *snowflake.Node
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Logger *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     p.DB,
		repo:   repository.ProvideStore[CompatibilityAssignment](p.DB),
		node:   p.Node,
		logger: logger,
	}
}

type CreateInput struct {
	TaskID             snowflake.ID `json:"taskId" binding:"required"`
	SourceAssignmentID snowflake.ID `json:"sourceAssignmentId" binding:"required"`
	ListerID           snowflake.ID `json:"listerId" binding:"required"`
	Quantity           int          `json:"quantity" binding:"required,gte=1"`
	Notes              string       `json:"notes"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*CompatibilityAssignment, error) {
	record := &CompatibilityAssignment{
		ID:                 s.node.Generate(),
		TaskID:             in.TaskID,
		SourceAssignmentID: in.SourceAssignmentID,
		ListerID:           in.ListerID,
		Quantity:           in.Quantity,
		Notes:              in.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create compatibility assignment", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, taskID snowflake.ID) ([]*CompatibilityAssignment, error) {
	query := &CompatibilityAssignment{}
	if taskID != 0 {
		query.TaskID = taskID
	}
	records, err := s.repo.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list compatibility assignments", errutil.WithErr(err))
	}
	return records, nil
}

// DeleteBySourceAssignment removes every compatibility assignment derived
// from the given assignment. Runs inside the caller's transaction.
func (s *Service) DeleteBySourceAssignment(ctx context.Context, tx *gorm.DB, assignmentID snowflake.ID) error {
	conn := tx
	if conn == nil {
		conn = s.db
	}
	return conn.WithContext(ctx).
		Where("source_assignment_id = ?", assignmentID).
		Delete(&CompatibilityAssignment{}).Error
}

// DeleteByTask removes every compatibility assignment referencing the task,
// whether directly or through one of its assignments.
func (s *Service) DeleteByTask(ctx context.Context, tx *gorm.DB, taskID snowflake.ID) error {
	conn := tx
	if conn == nil {
		conn = s.db
	}
	return conn.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&CompatibilityAssignment{}).Error
}
