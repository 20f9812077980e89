package models

import (
	"time"

	"gorm.io/gorm"
)

type MenuItem struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64        `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CategoryID uint           `gorm:"not null;index" json:"category_id"`
	Category   Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// MenuItemView is a menu item joined with its category name.
type MenuItemView struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
}
