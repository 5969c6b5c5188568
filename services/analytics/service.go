package analytics

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"resellops/pkg/config"
	"resellops/pkg/errutil"
	"resellops/services/assignment"
	"resellops/services/completion"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// reportingZone is the fixed timezone all daily buckets use, regardless of
// server or client locale.
var reportingZone = time.FixedZone("UTC+05:30", 5*3600+30*60)

const defaultCacheTTL = time.Minute

// Service answers read-only reporting queries over assignments and listing
// completions. Rows are bucketed in Go over repository-filtered record sets
// so the queries stay portable across dialects; responses are cached in
// redis when it is configured.
type Service struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Redis  *redis.Client `optional:"true"`
	Config *config.Config
	Logger *zap.Logger `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := p.Config.Analytics.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		db:       p.DB,
		rdb:      p.Redis,
		cacheTTL: ttl,
		logger:   logger,
	}
}

func (f Filter) scope(tx *gorm.DB) *gorm.DB {
	if f.From != nil {
		tx = tx.Where("created_at >= ?", f.From.In(reportingZone))
	}
	if f.To != nil {
		tx = tx.Where("created_at < ?", f.To.In(reportingZone).AddDate(0, 0, 1))
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
	return tx
}

func (s *Service) assignments(ctx context.Context, f Filter) ([]*assignment.Assignment, error) {
	var records []*assignment.Assignment
	err := s.db.WithContext(ctx).
		Scopes(f.scope).
		Find(&records).Error
	if err != nil {
		return nil, errutil.Internal("failed to load assignments for analytics", errutil.WithErr(err))
	}
	return records, nil
}

// Daily groups assignments per reporting day. Each assignment is a single
// unit: quantities are summed at the assignment level, never multiplied by
// its range rows.
func (s *Service) Daily(ctx context.Context, f Filter) ([]DailyRow, error) {
	return cached(ctx, s, f.CacheKey("daily"), func() ([]DailyRow, error) {
		records, err := s.assignments(ctx, f)
		if err != nil {
			return nil, err
		}

		type bucket struct {
			count     int
			assigned  int
			completed int
			listers   map[snowflake.ID]struct{}
		}
		buckets := make(map[string]*bucket)

		for _, a := range records {
			day := a.CreatedAt.In(reportingZone).Format("2006-01-02")
			b, ok := buckets[day]
			if !ok {
				b = &bucket{listers: make(map[snowflake.ID]struct{})}
				buckets[day] = b
			}
			b.count++
			b.assigned += a.Quantity
			b.completed += a.CompletedQuantity
			b.listers[a.ListerID] = struct{}{}
		}

		rows := make([]DailyRow, 0, len(buckets))
		for day, b := range buckets {
			rows = append(rows, DailyRow{
				Date:              day,
				AssignmentCount:   b.count,
				AssignedQuantity:  b.assigned,
				CompletedQuantity: b.completed,
				DistinctListers:   len(b.listers),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
		return rows, nil
	})
}

// ListerMatrix groups assignments per (assigning admin, lister) pair.
func (s *Service) ListerMatrix(ctx context.Context, f Filter) ([]MatrixRow, error) {
	return cached(ctx, s, f.CacheKey("lister-matrix"), func() ([]MatrixRow, error) {
		records, err := s.assignments(ctx, f)
		if err != nil {
			return nil, err
		}

		type key struct{ admin, lister snowflake.ID }
		buckets := make(map[key]*MatrixRow)

		for _, a := range records {
			k := key{admin: a.CreatedBy, lister: a.ListerID}
			row, ok := buckets[k]
			if !ok {
				row = &MatrixRow{AdminID: k.admin, ListerID: k.lister}
				buckets[k] = row
			}
			row.AssignmentCount++
			row.AssignedQuantity += a.Quantity
			row.CompletedQuantity += a.CompletedQuantity
		}

		rows := make([]MatrixRow, 0, len(buckets))
		for _, row := range buckets {
			rows = append(rows, *row)
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].AdminID != rows[j].AdminID {
				return rows[i].AdminID < rows[j].AdminID
			}
			return rows[i].ListerID < rows[j].ListerID
		})
		return rows, nil
	})
}

// StockLedger sums distributed quantities per (task, range) from completion
// snapshots. Range-level quantities are summed per range only.
func (s *Service) StockLedger(ctx context.Context, f Filter) ([]LedgerRow, error) {
	return cached(ctx, s, f.CacheKey("stock-ledger"), func() ([]LedgerRow, error) {
		var records []*completion.ListingCompletion
		err := s.db.WithContext(ctx).
			Preload("RangeCompletions").
			Scopes(func(tx *gorm.DB) *gorm.DB {
				if f.From != nil {
					tx = tx.Where("date >= ?", f.From.In(reportingZone))
				}
				if f.To != nil {
					tx = tx.Where("date < ?", f.To.In(reportingZone).AddDate(0, 0, 1))
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
				return tx
			}).
			Find(&records).Error
		if err != nil {
			return nil, errutil.Internal("failed to load completions for analytics", errutil.WithErr(err))
		}

		type key struct{ taskID, rangeID snowflake.ID }
		buckets := make(map[key]int)
		for _, c := range records {
			for _, rc := range c.RangeCompletions {
				buckets[key{c.TaskID, rc.RangeID}] += rc.Quantity
			}
		}

		rows := make([]LedgerRow, 0, len(buckets))
		for k, qty := range buckets {
			rows = append(rows, LedgerRow{TaskID: k.taskID, RangeID: k.rangeID, Quantity: qty})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].TaskID != rows[j].TaskID {
				return rows[i].TaskID < rows[j].TaskID
			}
			return rows[i].RangeID < rows[j].RangeID
		})
		return rows, nil
	})
}

// cached wraps a query with the redis read-through cache and collapses
// concurrent identical queries with singleflight. Without redis the query
// runs directly.
func cached[T any](ctx context.Context, s *Service, key string, load func() ([]T, error)) ([]T, error) {
	if s.rdb == nil {
		return load()
	}

	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var rows []T
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		rows, err := load()
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(rows); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}
