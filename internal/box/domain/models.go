package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type BoxType string

var (
	Standard          BoxType = "STANDARD"
	ClimateControlled BoxType = "CLIMATE_CONTROLLED"
	Secure            BoxType = "SECURE"
	ExtraLarge        BoxType = "EXTRA_LARGE"
	Refrigerated      BoxType = "REFRIGERATED"
	Fragile           BoxType = "FRAGILE"
)

func (t BoxType) Valid() bool {
	switch t {
	case Standard, ClimateControlled, Secure, ExtraLarge, Refrigerated, Fragile:
		return true
	default:
		return false
	}
}

type BoxStatus string

var (
	StatusAvailable   BoxStatus = "AVAILABLE"
	StatusReserved    BoxStatus = "RESERVED"
	StatusOccupied    BoxStatus = "OCCUPIED"
	StatusMaintenance BoxStatus = "MAINTENANCE"
	StatusDamaged     BoxStatus = "DAMAGED"
	StatusInactive    BoxStatus = "INACTIVE"
)

func (s BoxStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied, StatusMaintenance, StatusDamaged, StatusInactive:
		return true
	default:
		return false
	}
}

// Box is a rentable storage unit inside a warehouse. The Occupied flag is a
// denormalized cache; the reservation set is the source of truth for conflicts.
type Box struct {
	ID                  snowflake.ID               `json:"id" gorm:"primaryKey"`
	WarehouseID         snowflake.ID               `json:"warehouse_id" gorm:"column:warehouse_id;not null;index"`
	Name                string                     `json:"name" gorm:"type:text;not null"`
	BoxType             BoxType                    `json:"box_type" gorm:"type:text;not null"`
	Size                float64                    `json:"size" gorm:"type:numeric;not null"`
	PricePerDay         float64                    `json:"price_per_day" gorm:"type:numeric;not null"`
	Occupied            bool                       `json:"occupied" gorm:"not null;default:false"`
	Status              BoxStatus                  `json:"status" gorm:"type:text;not null"`
	Features            datatypes.JSONSlice[string] `json:"features,omitempty" gorm:"type:jsonb"`
	Description         string                     `json:"description,omitempty" gorm:"type:text"`
	LocationDescription string                     `json:"location_description,omitempty" gorm:"type:text"`
	FloorLevel          int                        `json:"floor_level" gorm:"not null;default:0"`
	MaxWeight           float64                    `json:"max_weight" gorm:"type:numeric;default:0"`
	Dimensions          string                     `json:"dimensions,omitempty" gorm:"type:text"`
	CreatedAt           time.Time                  `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time                  `json:"updated_at" gorm:"not null"`
}

func (Box) TableName() string { return "boxes" }
