package services

import (
	"context"
	"time"

	"github.com/ocna/restaurant-pos/models"
	"gorm.io/gorm"
)

const defaultTopSellers = 10

type TopSeller struct {
	MenuItemID   uint    `json:"menu_item_id"`
	Name         string  `json:"name"`
	TotalQty     int     `json:"total_qty"`
	TotalRevenue float64 `json:"total_revenue"`
}

type Summary struct {
	Days       int         `json:"days"`
	Since      time.Time   `json:"since"`
	Revenue    float64     `json:"revenue"`
	PaidOrders int64       `json:"paid_orders"`
	TopSellers []TopSeller `json:"top_sellers"`
}

// Reports aggregates paid orders. Amounts use the current menu prices.
type Reports struct {
	db *gorm.DB

	// Now is the clock the reporting window is measured from.
	Now func() time.Time
}

func NewReports(db *gorm.DB) *Reports {
	return &Reports{db: db, Now: time.Now}
}

// WindowStart returns the start of the local day days-1 days before now, so
// days=1 covers today only.
func (r *Reports) WindowStart(days int) (time.Time, error) {
	if days < 1 {
		return time.Time{}, invalid("days", "days must be at least 1")
	}
	now := r.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, now.Location()), nil
}

func (r *Reports) RevenueSince(ctx context.Context, days int) (float64, error) {
	since, err := r.WindowStart(days)
	if err != nil {
		return 0, err
	}

	var revenue float64
	if err := r.paidLines(ctx, since).
		Select("COALESCE(SUM(mi.price * oi.quantity), 0)").
		Scan(&revenue).Error; err != nil {
		return 0, storageErr("revenue", err)
	}
	return revenue, nil
}

// TopSellers ranks menu items by quantity sold. Ties go to the name, then the id.
func (r *Reports) TopSellers(ctx context.Context, days, limit int) ([]TopSeller, error) {
	since, err := r.WindowStart(days)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopSellers
	}

	sellers := []TopSeller{}
	if err := r.paidLines(ctx, since).
		Select("mi.id AS menu_item_id, mi.name, SUM(oi.quantity) AS total_qty, SUM(mi.price * oi.quantity) AS total_revenue").
		Group("mi.id, mi.name").
		Order("total_qty DESC, mi.name ASC, mi.id ASC").
		Limit(limit).
		Scan(&sellers).Error; err != nil {
		return nil, storageErr("top sellers", err)
	}
	return sellers, nil
}

func (r *Reports) Summary(ctx context.Context, days int) (*Summary, error) {
	since, err := r.WindowStart(days)
	if err != nil {
		return nil, err
	}

	revenue, err := r.RevenueSince(ctx, days)
	if err != nil {
		return nil, err
	}
	top, err := r.TopSellers(ctx, days, defaultTopSellers)
	if err != nil {
		return nil, err
	}

	var paid int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusPaid, since.UTC()).
		Count(&paid).Error; err != nil {
		return nil, storageErr("count paid orders", err)
	}

	return &Summary{
		Days:       days,
		Since:      since,
		Revenue:    revenue,
		PaidOrders: paid,
		TopSellers: top,
	}, nil
}

// paidLines joins order lines of paid orders created since the given time.
// Soft-deleted menu items are included so old sales still count.
func (r *Reports) paidLines(ctx context.Context, since time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_items AS oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN menu_items mi ON mi.id = oi.menu_item_id").
		Where("o.status = ? AND o.created_at >= ?", models.OrderStatusPaid, since.UTC())
}
