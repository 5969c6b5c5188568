package option

import "gorm.io/gorm"

// QueryOption mutates a gorm query before execution.
type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(relations ...string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		for _, r := range relations {
			tx = tx.Preload(r)
		}
		return tx
	}
}

func WithOrder(order string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(order)
	}
}

func WithLimit(limit int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		return tx
	}
}

func WithOffset(offset int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if offset > 0 {
			tx = tx.Offset(offset)
		}
		return tx
	}
}

// WithScope applies an arbitrary filter scope.
func WithScope(scope func(*gorm.DB) *gorm.DB) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(scope)
	}
}

// Apply runs all options against tx.
func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		tx = opt(tx)
	}
	return tx
}
