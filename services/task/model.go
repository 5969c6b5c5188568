package task

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Marketplace is the closed set of target marketplaces products get listed on.
type Marketplace string

var (
	MarketplaceEbayUS Marketplace = "ebay_us"
	MarketplaceEbayUK Marketplace = "ebay_uk"
	MarketplaceAmazon Marketplace = "amazon"
)

func (m Marketplace) String() string {
	switch m {
	case MarketplaceEbayUS, MarketplaceEbayUK, MarketplaceAmazon:
		return string(m)
	default:
		return ""
	}
}

func (m Marketplace) Valid() bool {
	return m.String() != ""
}

type Status string

var (
	StatusDraft     Status = "draft"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusAssigned, StatusCompleted:
		return true
	default:
		return false
	}
}

// rank orders statuses so automatic transitions never regress.
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusAssigned:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// Task is a unit of product research to be listed for sale. MarketplaceData
// carries the raw marketplace payload verbatim; it is never modeled
// structurally.
type Task struct {
	ID                snowflake.ID   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	Title             string         `gorm:"column:title;not null" json:"title"`
	SupplierLink      string         `gorm:"column:supplier_link" json:"supplierLink"`
	SourcePrice       float64        `gorm:"column:source_price" json:"sourcePrice"`
	SellingPrice      float64        `gorm:"column:selling_price" json:"sellingPrice"`
	Quantity          int            `gorm:"column:quantity;not null" json:"quantity"`
	CompletedQuantity int            `gorm:"column:completed_quantity;default:0" json:"completedQuantity"`
	SourcePlatformID  snowflake.ID   `gorm:"column:source_platform_id;index" json:"sourcePlatformId"`
	Marketplace       Marketplace    `gorm:"column:marketplace;index;not null" json:"marketplace"`
	CategoryID        snowflake.ID   `gorm:"column:category_id;index;not null" json:"categoryId"`
	SubcategoryID     snowflake.ID   `gorm:"column:subcategory_id;index" json:"subcategoryId"`
	RangeID           *snowflake.ID  `gorm:"column:range_id" json:"rangeId,omitempty"`
	ListingPlatformID *snowflake.ID  `gorm:"column:listing_platform_id;index" json:"listingPlatformId,omitempty"`
	StoreID           *snowflake.ID  `gorm:"column:store_id;index" json:"storeId,omitempty"`
	ListerID          *snowflake.ID  `gorm:"column:lister_id;index" json:"listerId,omitempty"`
	Status            Status         `gorm:"column:status;index;default:'draft'" json:"status"`
	CreatedBy         snowflake.ID   `gorm:"column:created_by;index;not null" json:"createdBy"`
	AssignedBy        *snowflake.ID  `gorm:"column:assigned_by" json:"assignedBy,omitempty"`
	AssignedAt        *time.Time     `gorm:"column:assigned_at" json:"assignedAt,omitempty"`
	CompletedAt       *time.Time     `gorm:"column:completed_at" json:"completedAt,omitempty"`
	MarketplaceData   datatypes.JSON `gorm:"column:marketplace_data" json:"marketplaceData,omitempty"`
}

// Advance moves status forward only; automatic transitions never regress.
func (t *Task) Advance(next Status) {
	if next.rank() > t.Status.rank() {
		t.Status = next
	}
}
