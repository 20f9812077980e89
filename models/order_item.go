package models

import "time"

// OrderItem is one line of an order. There is at most one row per
// (order, menu item) and its quantity is always positive.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex:idx_order_items_order_menu" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint      `gorm:"not null;uniqueIndex:idx_order_items_order_menu" json:"menu_item_id"`
	MenuItem   MenuItem  `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PrintedItem records how many of a menu item the kitchen has already been sent for an order.
type PrintedItem struct {
	OrderID    uint  `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	Order      Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint  `gorm:"primaryKey;autoIncrement:false" json:"menu_item_id"`
	Quantity   int   `gorm:"not null" json:"quantity"`
}

// AppliedDelta is the receipt of a keyed quantity change; its presence means
// the change with that request id has already committed.
type AppliedDelta struct {
	RequestID  string    `gorm:"type:varchar(64);primaryKey" json:"request_id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	MenuItemID uint      `gorm:"not null" json:"menu_item_id"`
	Delta      int       `gorm:"not null" json:"delta"`
	CreatedAt  time.Time `json:"created_at"`
}
