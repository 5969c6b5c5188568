package catalog

import (
	"context"
	"errors"
	"strings"

	"resellops/pkg/errutil"
	"resellops/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RangeUsageChecker reports whether assignments still distribute quantity
// onto a range. Implemented by the assignment service and bound after
// construction, since that service already depends on this one.
type RangeUsageChecker interface {
	RangeInUse(ctx context.Context, rangeID snowflake.ID) (bool, error)
}

// Service owns the reference collections: platforms, stores, categories,
// subcategories and ranges.
type Service struct {
	db            *gorm.DB
	node          *snowflake.Node
	platforms     repository.Repository[Platform]
	stores        repository.Repository[Store]
	categories    repository.Repository[Category]
	subcategories repository.Repository[Subcategory]
	ranges        repository.Repository[Range]
	usage         RangeUsageChecker
	logger        *zap.Logger
}

// SetRangeUsage binds the usage checker guarding range deletes.
func (s *Service) SetRangeUsage(u RangeUsageChecker) {
	s.usage = u
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
		db:            p.DB,
		node:          p.Node,
		platforms:     repository.ProvideStore[Platform](p.DB),
		stores:        repository.ProvideStore[Store](p.DB),
		categories:    repository.ProvideStore[Category](p.DB),
		subcategories: repository.ProvideStore[Subcategory](p.DB),
		ranges:        repository.ProvideStore[Range](p.DB),
		logger:        logger,
	}
}

type CreatePlatformInput struct {
	Name string       `json:"name" binding:"required"`
	Kind PlatformKind `json:"kind" binding:"required"`
}

func (s *Service) CreatePlatform(ctx context.Context, in CreatePlatformInput) (*Platform, error) {
	if !in.Kind.Valid() {
		return nil, errutil.ValidationFailed("kind must be source or listing")
	}
	record := &Platform{
		ID:   s.node.Generate(),
		Name: strings.TrimSpace(in.Name),
		Kind: in.Kind,
	}
	record.Slug = slug.Make(record.Name)
	if err := s.platforms.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create platform", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) ListPlatforms(ctx context.Context, kind PlatformKind) ([]*Platform, error) {
	query := &Platform{}
	if kind != "" {
		query.Kind = kind
	}
	records, err := s.platforms.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list platforms", errutil.WithErr(err))
	}
	return records, nil
}

func (s *Service) DeletePlatform(ctx context.Context, id snowflake.ID) error {
	return deleteByID(ctx, s.platforms, &Platform{ID: id}, "platform")
}

type CreateStoreInput struct {
	Name       string       `json:"name" binding:"required"`
	PlatformID snowflake.ID `json:"platformId" binding:"required"`
}

func (s *Service) CreateStore(ctx context.Context, in CreateStoreInput) (*Store, error) {
	if _, err := s.platforms.FindOne(ctx, &Platform{ID: in.PlatformID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("platform not found")
		}
		return nil, errutil.Internal("failed to load platform", errutil.WithErr(err))
	}
	record := &Store{
		ID:         s.node.Generate(),
		Name:       strings.TrimSpace(in.Name),
		PlatformID: in.PlatformID,
	}
	record.Slug = slug.Make(record.Name)
	if err := s.stores.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create store", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) ListStores(ctx context.Context, platformID snowflake.ID) ([]*Store, error) {
	query := &Store{}
	if platformID != 0 {
		query.PlatformID = platformID
	}
	records, err := s.stores.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list stores", errutil.WithErr(err))
	}
	return records, nil
}

func (s *Service) DeleteStore(ctx context.Context, id snowflake.ID) error {
	return deleteByID(ctx, s.stores, &Store{ID: id}, "store")
}

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required"`
}

func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (*Category, error) {
	record := &Category{
		ID:   s.node.Generate(),
		Name: strings.TrimSpace(in.Name),
	}
	record.Slug = slug.Make(record.Name)
	if err := s.categories.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create category", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	records, err := s.categories.Find(ctx, &Category{})
	if err != nil {
		return nil, errutil.Internal("failed to list categories", errutil.WithErr(err))
	}
	return records, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id snowflake.ID) error {
	return deleteByID(ctx, s.categories, &Category{ID: id}, "category")
}

type CreateSubcategoryInput struct {
	Name       string       `json:"name" binding:"required"`
	CategoryID snowflake.ID `json:"categoryId" binding:"required"`
}

func (s *Service) CreateSubcategory(ctx context.Context, in CreateSubcategoryInput) (*Subcategory, error) {
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	record := &Subcategory{
		ID:         s.node.Generate(),
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
	}
	if err := s.subcategories.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create subcategory", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) ListSubcategories(ctx context.Context, categoryID snowflake.ID) ([]*Subcategory, error) {
	query := &Subcategory{}
	if categoryID != 0 {
		query.CategoryID = categoryID
	}
	records, err := s.subcategories.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list subcategories", errutil.WithErr(err))
	}
	return records, nil
}

func (s *Service) DeleteSubcategory(ctx context.Context, id snowflake.ID) error {
	return deleteByID(ctx, s.subcategories, &Subcategory{ID: id}, "subcategory")
}

type CreateRangeInput struct {
	Name       string       `json:"name" binding:"required"`
	CategoryID snowflake.ID `json:"categoryId" binding:"required"`
}

func (s *Service) CreateRange(ctx context.Context, in CreateRangeInput) (*Range, error) {
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	record := &Range{
		ID:         s.node.Generate(),
		CategoryID: in.CategoryID,
		Name:       strings.TrimSpace(in.Name),
	}
	if err := s.ranges.Create(ctx, record); err != nil {
		return nil, errutil.Internal("failed to create range", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) ListRanges(ctx context.Context, categoryID snowflake.ID) ([]*Range, error) {
	query := &Range{}
	if categoryID != 0 {
		query.CategoryID = categoryID
	}
	records, err := s.ranges.Find(ctx, query)
	if err != nil {
		return nil, errutil.Internal("failed to list ranges", errutil.WithErr(err))
	}
	return records, nil
}

// DeleteRange refuses while assignments still distribute quantity onto the
// range; their entries would dangle otherwise.
func (s *Service) DeleteRange(ctx context.Context, id snowflake.ID) error {
	if s.usage != nil {
		inUse, err := s.usage.RangeInUse(ctx, id)
		if err != nil {
			return errutil.Internal("failed to check range usage", errutil.WithErr(err))
		}
		if inUse {
			return errutil.Conflict("range is still referenced by assignments")
		}
	}
	return deleteByID(ctx, s.ranges, &Range{ID: id}, "range")
}

// GetRange resolves a range for the reconciliation workflow's category check.
func (s *Service) GetRange(ctx context.Context, id snowflake.ID) (*Range, error) {
	record, err := s.ranges.FindOne(ctx, &Range{ID: id})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("range not found")
		}
		return nil, errutil.Internal("failed to load range", errutil.WithErr(err))
	}
	return record, nil
}

func (s *Service) requireCategory(ctx context.Context, id snowflake.ID) error {
	if _, err := s.categories.FindOne(ctx, &Category{ID: id}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errutil.NotFound("category not found")
		}
		return errutil.Internal("failed to load category", errutil.WithErr(err))
	}
	return nil
}

func deleteByID[T any](ctx context.Context, repo repository.Repository[T], query *T, name string) error {
	if err := repo.Delete(ctx, query); err != nil {
		return errutil.Internal("failed to delete "+name, errutil.WithErr(err))
	}
	return nil
}
