package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxRequestIDLen = 64

// MaxLineQuantity bounds one order line; it fits a 32-bit integer column.
const MaxLineQuantity = 1_000_000

// Ledger is the only writer of orders and order items.
//
// Every mutation runs as one transaction while holding mu, so a
// read-then-write on an order line can never interleave with another one.
// Reads go straight to the database and see the latest committed state.
type Ledger struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type BillLine struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

type Bill struct {
	OrderID   uint       `json:"order_id"`
	TableName string     `json:"table_name"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Lines     []BillLine `json:"lines"`
	Total     float64    `json:"total"`
}

func (l *Ledger) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.WithContext(ctx).Transaction(fn)
}

// OpenOrGetOrder returns the open order of a table, creating it if there is none.
func (l *Ledger) OpenOrGetOrder(ctx context.Context, tableName string) (uint, error) {
	name, err := cleanTableName(tableName)
	if err != nil {
		return 0, err
	}

	var orderID uint
	err = l.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		orderID, err = openOrGet(tx, name)
		return err
	})
	if err != nil {
		return 0, storageErr("open order", err)
	}
	return orderID, nil
}

// ApplyQuantityDelta adds delta (which may be negative) to the quantity of a
// menu item on an order. A line that drops to zero or below is removed;
// lowering a line that does not exist is a no-op.
func (l *Ledger) ApplyQuantityDelta(ctx context.Context, orderID, menuItemID uint, delta int) error {
	return l.applyKeyed(ctx, "", orderID, menuItemID, delta)
}

// ApplyQuantityDeltaOnce is ApplyQuantityDelta for retried requests: the
// delta is applied at most once per requestID.
func (l *Ledger) ApplyQuantityDeltaOnce(ctx context.Context, requestID string, orderID, menuItemID uint, delta int) error {
	if err := checkRequestID(requestID, true); err != nil {
		return err
	}
	return l.applyKeyed(ctx, requestID, orderID, menuItemID, delta)
}

func (l *Ledger) applyKeyed(ctx context.Context, requestID string, orderID, menuItemID uint, delta int) error {
	if delta == 0 {
		return nil
	}

	err := l.withTx(ctx, func(tx *gorm.DB) error {
		done, err := alreadyApplied(tx, requestID)
		if err != nil || done {
			return err
		}

		var order models.Order
		if err := tx.Select("id", "status").First(&order, orderID).Error; err != nil {
			if isNotFound(err) {
				return notFound("order", orderID)
			}
			return err
		}
		if !order.IsOpen() {
			return invalid("order_id", fmt.Sprintf("order %d is already paid", orderID))
		}

		if err := applyDelta(tx, orderID, menuItemID, delta); err != nil {
			return err
		}
		return recordApplied(tx, requestID, orderID, menuItemID, delta)
	})
	return storageErr("apply quantity delta", err)
}

// AdjustTable applies a quantity change to whatever order is open on a table.
// A positive delta opens the order first; a non-positive delta on a table
// without an open order does nothing. It returns the open order id, or 0.
func (l *Ledger) AdjustTable(ctx context.Context, tableName string, menuItemID uint, delta int, requestID string) (uint, error) {
	name, err := cleanTableName(tableName)
	if err != nil {
		return 0, err
	}
	if err := checkRequestID(requestID, false); err != nil {
		return 0, err
	}
	if delta == 0 {
		id, _, err := l.OpenOrderID(ctx, name)
		return id, err
	}

	var orderID uint
	err = l.withTx(ctx, func(tx *gorm.DB) error {
		done, err := alreadyApplied(tx, requestID)
		if err != nil {
			return err
		}
		if done {
			orderID, _, err = findOpen(tx, name)
			return err
		}

		if delta > 0 {
			orderID, err = openOrGet(tx, name)
		} else {
			orderID, _, err = findOpen(tx, name)
		}
		if err != nil || orderID == 0 {
			return err
		}

		if err := applyDelta(tx, orderID, menuItemID, delta); err != nil {
			return err
		}
		return recordApplied(tx, requestID, orderID, menuItemID, delta)
	})
	if err != nil {
		return 0, storageErr("adjust table", err)
	}
	return orderID, nil
}

// LoadOpenOrder returns the quantities on the table's open order, keyed by menu item id.
func (l *Ledger) LoadOpenOrder(ctx context.Context, tableName string) (map[uint]int, error) {
	orderID, ok, err := l.OpenOrderID(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[uint]int{}, nil
	}
	return l.OrderQuantities(ctx, orderID)
}

func (l *Ledger) OpenOrderID(ctx context.Context, tableName string) (uint, bool, error) {
	name, err := cleanTableName(tableName)
	if err != nil {
		return 0, false, err
	}
	id, ok, err := findOpen(l.db.WithContext(ctx), name)
	if err != nil {
		return 0, false, storageErr("find open order", err)
	}
	return id, ok, nil
}

func (l *Ledger) OrderQuantities(ctx context.Context, orderID uint) (map[uint]int, error) {
	var lines []models.OrderItem
	if err := l.db.WithContext(ctx).
		Select("menu_item_id", "quantity").
		Where("order_id = ?", orderID).
		Find(&lines).Error; err != nil {
		return nil, storageErr("load order items", err)
	}

	quantities := make(map[uint]int, len(lines))
	for _, line := range lines {
		quantities[line.MenuItemID] += line.Quantity
	}
	return quantities, nil
}

// Bill lists the order's lines priced at the current menu prices.
func (l *Ledger) Bill(ctx context.Context, orderID uint) (*Bill, error) {
	db := l.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("order", orderID)
		}
		return nil, storageErr("load order", err)
	}

	var lines []BillLine
	if err := db.Table("order_items AS oi").
		Select("oi.menu_item_id, mi.name, mi.price AS unit_price, oi.quantity").
		Joins("JOIN menu_items mi ON mi.id = oi.menu_item_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.id").
		Scan(&lines).Error; err != nil {
		return nil, storageErr("load bill lines", err)
	}

	bill := &Bill{
		OrderID:   order.ID,
		TableName: order.TableName,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		PaidAt:    order.PaidAt,
		Lines:     lines,
	}
	for i := range bill.Lines {
		bill.Lines[i].Subtotal = bill.Lines[i].UnitPrice * float64(bill.Lines[i].Quantity)
		bill.Total += bill.Lines[i].Subtotal
	}
	return bill, nil
}

// CloseOrder marks an order paid. Closing a paid order again is a no-op.
func (l *Ledger) CloseOrder(ctx context.Context, orderID uint) error {
	err := l.withTx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if isNotFound(err) {
				return notFound("order", orderID)
			}
			return err
		}
		if !order.IsOpen() {
			return nil
		}

		now := tx.NowFunc()
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":  models.OrderStatusPaid,
			"paid_at": now,
		}).Error; err != nil {
			return err
		}

		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"table":    order.TableName,
		}).Info("order paid")
		return nil
	})
	return storageErr("close order", err)
}

// ListActiveTables returns the distinct, sorted names of tables with an open order.
func (l *Ledger) ListActiveTables(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := l.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", models.OrderStatusOpen).
		Distinct().
		Order("table_name").
		Pluck("table_name", &names).Error; err != nil {
		return nil, storageErr("list active tables", err)
	}
	return names, nil
}

// PrintedQuantities returns what the kitchen has been sent so far for an order.
func (l *Ledger) PrintedQuantities(ctx context.Context, orderID uint) (map[uint]int, error) {
	var printed []models.PrintedItem
	if err := l.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&printed).Error; err != nil {
		return nil, storageErr("load printed items", err)
	}

	quantities := make(map[uint]int, len(printed))
	for _, p := range printed {
		quantities[p.MenuItemID] = p.Quantity
	}
	return quantities, nil
}

// MarkPrinted replaces the order's printed baseline with snapshot.
func (l *Ledger) MarkPrinted(ctx context.Context, orderID uint, snapshot map[uint]int) error {
	err := l.withTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("order", orderID)
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.PrintedItem{}).Error; err != nil {
			return err
		}
		rows := make([]models.PrintedItem, 0, len(snapshot))
		for menuItemID, qty := range snapshot {
			if qty > 0 {
				rows = append(rows, models.PrintedItem{OrderID: orderID, MenuItemID: menuItemID, Quantity: qty})
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return storageErr("mark printed", err)
}

func openOrGet(tx *gorm.DB, name string) (uint, error) {
	id, ok, err := findOpen(tx, name)
	if err != nil || ok {
		return id, err
	}

	order := models.Order{TableName: name, Status: models.OrderStatusOpen}
	if err := tx.Create(&order).Error; err != nil {
		return 0, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table":    name,
	}).Info("order opened")
	return order.ID, nil
}

func findOpen(tx *gorm.DB, name string) (uint, bool, error) {
	var order models.Order
	err := tx.Select("id").
		Where("table_name = ? AND status = ?", name, models.OrderStatusOpen).
		Order("id").
		Take(&order).Error
	if isNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return order.ID, true, nil
}

func applyDelta(tx *gorm.DB, orderID, menuItemID uint, delta int) error {
	var line models.OrderItem
	err := tx.Where("order_id = ? AND menu_item_id = ?", orderID, menuItemID).Take(&line).Error
	if isNotFound(err) {
		if delta <= 0 {
			return nil
		}
		var item models.MenuItem
		if err := tx.Select("id").First(&item, menuItemID).Error; err != nil {
			if isNotFound(err) {
				return notFound("menu item", menuItemID)
			}
			return err
		}
		if delta > MaxLineQuantity {
			return invalid("delta", fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
		}
		return tx.Create(&models.OrderItem{OrderID: orderID, MenuItemID: menuItemID, Quantity: delta}).Error
	}
	if err != nil {
		return err
	}

	if delta > MaxLineQuantity-line.Quantity {
		return invalid("delta", fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}
	newQty := line.Quantity + delta
	if newQty <= 0 {
		return tx.Delete(&line).Error
	}
	return tx.Model(&line).Update("quantity", newQty).Error
}

func alreadyApplied(tx *gorm.DB, requestID string) (bool, error) {
	if requestID == "" {
		return false, nil
	}
	var count int64
	if err := tx.Model(&models.AppliedDelta{}).Where("request_id = ?", requestID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordApplied(tx *gorm.DB, requestID string, orderID, menuItemID uint, delta int) error {
	if requestID == "" {
		return nil
	}
	return tx.Create(&models.AppliedDelta{
		RequestID:  requestID,
		OrderID:    orderID,
		MenuItemID: menuItemID,
		Delta:      delta,
	}).Error
}

func cleanTableName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("table_name", "table name is required")
	}
	return name, nil
}

func checkRequestID(id string, required bool) error {
	if id == "" && required {
		return invalid("request_id", "request id is required")
	}
	if len(id) > maxRequestIDLen {
		return invalid("request_id", fmt.Sprintf("request id longer than %d characters", maxRequestIDLen))
	}
	return nil
}
