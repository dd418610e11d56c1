package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Warehouse struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Location    string       `json:"location" gorm:"type:text"`
	Address     string       `json:"address" gorm:"type:text"`
	Description string       `json:"description" gorm:"type:text"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Warehouse) TableName() string { return "warehouses" }
