package compat

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CompatibilityAssignment is a secondary listing commitment derived from a
// primary assignment (the same product listed as a compatible part). Only its
// create/list surface and its cascade behaviour are interesting: it must
// disappear with its source assignment or task.
type CompatibilityAssignment struct {
	ID                 snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	TaskID             snowflake.ID `gorm:"column:task_id;index;not null" json:"taskId"`
	SourceAssignmentID snowflake.ID `gorm:"column:source_assignment_id;index;not null" json:"sourceAssignmentId"`
	ListerID           snowflake.ID `gorm:"column:lister_id;index;not null" json:"listerId"`
	Quantity           int          `gorm:"column:quantity;not null" json:"quantity"`
	Notes              string       `gorm:"column:notes" json:"notes"`
	CreatedAt          time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
