package catalog

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PlatformKind string

var (
	KindSource  PlatformKind = "source"
	KindListing PlatformKind = "listing"
)

func (k PlatformKind) Valid() bool {
	return k == KindSource || k == KindListing
}

// Platform is a marketplace or supplier site tasks reference, either as the
// product source or as the listing destination.
type Platform struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"column:name;not null" json:"name"`
	Slug      string       `gorm:"column:slug;uniqueIndex" json:"slug"`
	Kind      PlatformKind `gorm:"column:kind;not null" json:"kind"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// Store is a seller account on a listing platform.
type Store struct {
	ID         snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name       string       `gorm:"column:name;not null" json:"name"`
	Slug       string       `gorm:"column:slug;uniqueIndex" json:"slug"`
	PlatformID snowflake.ID `gorm:"column:platform_id;index" json:"platformId"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

type Category struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"column:name;not null" json:"name"`
	Slug      string       `gorm:"column:slug;uniqueIndex" json:"slug"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

type Subcategory struct {
	ID         snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	CategoryID snowflake.ID `gorm:"column:category_id;index;not null" json:"categoryId"`
	Name       string       `gorm:"column:name;not null" json:"name"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// Range is a sub-classification of a category used to distribute an
// assignment's quantity across product variants.
type Range struct {
	ID         snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	CategoryID snowflake.ID `gorm:"column:category_id;index;not null" json:"categoryId"`
	Name       string       `gorm:"column:name;not null" json:"name"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
