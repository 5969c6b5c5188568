package user

import (
	"time"

	"resellops/pkg/rbac"

	"github.com/bwmarrin/snowflake"
)

// User is a backend principal: admins and listers.
type User struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Email        string       `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string       `gorm:"column:name;not null" json:"name"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	Role         rbac.Role    `gorm:"column:role;not null" json:"role"`
	Active       bool         `gorm:"column:active;default:true" json:"active"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
