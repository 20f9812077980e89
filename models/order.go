package models

import "time"

const (
	OrderStatusOpen = "open"
	OrderStatusPaid = "paid"
)

type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TableName string      `gorm:"type:varchar(100);not null;index:idx_orders_table_status" json:"table_name"`
	Status    string      `gorm:"type:varchar(10);not null;default:'open';index:idx_orders_table_status;index:idx_orders_status_created" json:"status"`
	CreatedAt time.Time   `gorm:"not null;index:idx_orders_status_created" json:"created_at"`
	PaidAt    *time.Time  `json:"paid_at,omitempty"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}
