package analytics

import (
	"fmt"
	"time"

	"resellops/services/task"

	"github.com/bwmarrin/snowflake"
)

// Filter bounds an analytics query. Dates are interpreted in the fixed
// reporting timezone.
type Filter struct {
	From              *time.Time       `form:"from" time_format:"2006-01-02"`
	To                *time.Time       `form:"to" time_format:"2006-01-02"`
	ListingPlatformID snowflake.ID     `form:"listingPlatformId"`
	StoreID           snowflake.ID     `form:"storeId"`
	Marketplace       task.Marketplace `form:"marketplace"`
}

// CacheKey derives a stable redis key for the filter.
func (f Filter) CacheKey(report string) string {
	from, to := "", ""
	if f.From != nil {
		from = f.From.Format("2006-01-02")
	}
	if f.To != nil {
		to = f.To.Format("2006-01-02")
	}
	return fmt.Sprintf("analytics:%s:%s:%s:%d:%d:%s",
		report, from, to, f.ListingPlatformID, f.StoreID, f.Marketplace)
}

// DailyRow summarises one reporting day. An assignment counts once no matter
// how many ranges its quantity is spread across.
type DailyRow struct {
	Date              string `json:"date"`
	AssignmentCount   int    `json:"assignmentCount"`
	AssignedQuantity  int    `json:"assignedQuantity"`
	CompletedQuantity int    `json:"completedQuantity"`
	DistinctListers   int    `json:"distinctListers"`
}

// MatrixRow summarises one (assigning admin, lister) pair.
type MatrixRow struct {
	AdminID           snowflake.ID `json:"adminId"`
	ListerID          snowflake.ID `json:"listerId"`
	AssignmentCount   int          `json:"assignmentCount"`
	AssignedQuantity  int          `json:"assignedQuantity"`
	CompletedQuantity int          `json:"completedQuantity"`
}

// LedgerRow summarises distributed stock per (task, range).
type LedgerRow struct {
	TaskID   snowflake.ID `json:"taskId"`
	RangeID  snowflake.ID `json:"rangeId"`
	Quantity int          `json:"quantity"`
}
