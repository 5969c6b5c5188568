package user

import (
	"context"
	"errors"
	"strings"

	"resellops/pkg/errutil"
	"resellops/pkg/rbac"
	"resellops/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	repo   repository.Repository[User]
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
		repo:   repository.ProvideStore[User](p.DB),
		node:   p.Node,
		logger: logger,
	}
}

type CreateInput struct {
	Email    string    `json:"email" binding:"required,email"`
	Name     string    `json:"name" binding:"required"`
	Password string    `json:"password" binding:"required,min=8"`
	Role     rbac.Role `json:"role" binding:"required"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if !in.Role.Valid() {
		return nil, errutil.ValidationFailed("unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errutil.Internal("failed to hash password", errutil.WithErr(err))
	}

	record := &User{
		ID:           s.node.Generate(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         in.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict("email already registered")
		}
		return nil, errutil.Internal("failed to create user", errutil.WithErr(err))
	}

	s.logger.Info("user created",
		zap.String("user_id", record.ID.String()),
		zap.String("role", record.Role.String()),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*User, error) {
	record, err := s.repo.FindOne(ctx, &User{ID: id})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("user not found")
		}
		return nil, errutil.Internal("failed to load user", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, role rbac.Role) ([]*User, error) {
	query := &User{}
	if role != "" {
		if !role.Valid() {
			return nil, errutil.ValidationFailed("unknown role")
		}
		query.Role = role
	}
	records, err := s.repo.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list users", errutil.WithErr(err))
	}
	return records, nil
}

type UpdateInput struct {
	Name *string    `json:"name"`
	Role *rbac.Role `json:"role"`
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, in UpdateInput) (*User, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		record.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, errutil.ValidationFailed("unknown role")
		}
		record.Role = *in.Role
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, errutil.Internal("failed to update user", errutil.WithErr(err))
	}
	return record, nil
}

// Deactivate marks the user inactive; records are never hard-deleted so the
// audit trail on tasks and assignments keeps resolving.
func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) (*User, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Active = false
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, errutil.Internal("failed to deactivate user", errutil.WithErr(err))
	}
	return record, nil
}
