package completion

import (
	"time"

	"resellops/services/task"

	"github.com/bwmarrin/snowflake"
)

// ListingCompletion is the denormalized reporting snapshot of one
// assignment's completion state. It is derived by the reconciliation
// workflow and never written by a client request; at most one row exists per
// assignment.
type ListingCompletion struct {
	ID                snowflake.ID      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Date              time.Time         `gorm:"column:date;index" json:"date"`
	AssignmentID      snowflake.ID      `gorm:"column:assignment_id;index;not null" json:"assignmentId"`
	TaskID            snowflake.ID      `gorm:"column:task_id;index;not null" json:"taskId"`
	ListerID          snowflake.ID      `gorm:"column:lister_id;index;not null" json:"listerId"`
	ListingPlatformID snowflake.ID      `gorm:"column:listing_platform_id;index" json:"listingPlatformId"`
	StoreID           snowflake.ID      `gorm:"column:store_id;index" json:"storeId"`
	Marketplace       task.Marketplace  `gorm:"column:marketplace;index" json:"marketplace"`
	CategoryID        snowflake.ID      `gorm:"column:category_id;index" json:"categoryId"`
	SubcategoryID     snowflake.ID      `gorm:"column:subcategory_id" json:"subcategoryId"`
	TotalQuantity     int               `gorm:"column:total_quantity;not null" json:"totalQuantity"`
	RangeCompletions  []RangeCompletion `gorm:"foreignKey:CompletionID" json:"rangeCompletions"`
}

// RangeCompletion records the per-range share of a completion snapshot.
// Quantity is always positive; zeroed ranges are dropped from the snapshot.
type RangeCompletion struct {
	ID           uint         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	CompletionID snowflake.ID `gorm:"column:completion_id;index;not null" json:"-"`
	RangeID      snowflake.ID `gorm:"column:range_id;index;not null" json:"rangeId"`
	Quantity     int          `gorm:"column:quantity;not null" json:"quantity"`
}
