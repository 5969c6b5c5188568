package assignment

import (
	"time"

	"resellops/services/task"

	"github.com/bwmarrin/snowflake"
)

// Assignment is a commitment that a lister will list a quantity of a task's
// product on a platform/store. Marketplace is copied from the task at
// creation time for query convenience.
type Assignment struct {
	ID                snowflake.ID     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	TaskID            snowflake.ID     `gorm:"column:task_id;index;not null" json:"taskId"`
	ListerID          snowflake.ID     `gorm:"column:lister_id;index;not null" json:"listerId"`
	Quantity          int              `gorm:"column:quantity;not null" json:"quantity"`
	ListingPlatformID snowflake.ID     `gorm:"column:listing_platform_id;index;not null" json:"listingPlatformId"`
	StoreID           snowflake.ID     `gorm:"column:store_id;index;not null" json:"storeId"`
	Marketplace       task.Marketplace `gorm:"column:marketplace;index" json:"marketplace"`
	CreatedBy         snowflake.ID     `gorm:"column:created_by;index;not null" json:"createdBy"`
	Notes             string           `gorm:"column:notes" json:"notes"`
	ScheduledDate     *time.Time       `gorm:"column:scheduled_date;index" json:"scheduledDate,omitempty"`
	CompletedQuantity int              `gorm:"column:completed_quantity;default:0" json:"completedQuantity"`
	CompletedAt       *time.Time       `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	RangeQuantities []RangeQuantity `gorm:"foreignKey:AssignmentID" json:"rangeQuantities"`
	Task            *task.Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// RangeQuantity records how much of the assigned quantity is distributed to
// one product range. One row per (assignment, range); last write wins.
type RangeQuantity struct {
	ID           uint         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AssignmentID snowflake.ID `gorm:"column:assignment_id;index;not null" json:"-"`
	RangeID      snowflake.ID `gorm:"column:range_id;index;not null" json:"rangeId"`
	Quantity     int          `gorm:"column:quantity;not null" json:"quantity"`
}

// DistributedTotal sums the range-quantity entries.
func (a *Assignment) DistributedTotal() int {
	total := 0
	for _, rq := range a.RangeQuantities {
		total += rq.Quantity
	}
	return total
}
