package services

import (
	"context"
	"sync"

	"github.com/ocna/restaurant-pos/printer"
	"github.com/ocna/restaurant-pos/utils"
	"github.com/sirupsen/logrus"
)

// Kitchen sends order changes to the kitchen and settles tables.
type Kitchen struct {
	ledger     *Ledger
	dispatcher printer.Dispatcher

	// mu keeps two sends for the same order from printing the same diff twice.
	mu sync.Mutex
}

func NewKitchen(ledger *Ledger, dispatcher printer.Dispatcher) *Kitchen {
	return &Kitchen{ledger: ledger, dispatcher: dispatcher}
}

// SendKitchenTicket prints what was added to the table's order since the last
// ticket. The printed baseline only moves once the ticket has been accepted.
func (k *Kitchen) SendKitchenTicket(ctx context.Context, tableName string) (*printer.Ticket, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	orderID, ok, err := k.ledger.OpenOrderID(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNothingToPrint
	}

	bill, err := k.ledger.Bill(ctx, orderID)
	if err != nil {
		return nil, err
	}
	printed, err := k.ledger.PrintedQuantities(ctx, orderID)
	if err != nil {
		return nil, err
	}

	current := make(map[uint]int, len(bill.Lines))
	for _, l := range bill.Lines {
		current[l.MenuItemID] = l.Quantity
	}
	diff := ComputePrintDiff(current, printed)
	if len(diff) == 0 {
		return nil, ErrNothingToPrint
	}

	lines := make([]printer.Line, 0, len(diff))
	for _, l := range bill.Lines {
		if qty, ok := diff[l.MenuItemID]; ok {
			lines = append(lines, printer.Line{Name: l.Name, Quantity: qty, Amount: l.UnitPrice * float64(qty)})
		}
	}

	ticket := printer.NewKitchenTicket(bill.TableName, lines)
	if err := k.dispatcher.Dispatch(ctx, ticket); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"table":    bill.TableName,
		}).Errorf("kitchen ticket failed: %v", err)
		return nil, &StorageError{Op: "dispatch kitchen ticket", Err: err}
	}

	if err := k.ledger.MarkPrinted(ctx, orderID, current); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Checkout prints the bill for the table's open order and then closes it.
// When printing fails the order stays open.
func (k *Kitchen) Checkout(ctx context.Context, tableName string) (*Bill, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	orderID, ok, err := k.ledger.OpenOrderID(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("open order for table", tableName)
	}

	bill, err := k.ledger.Bill(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]printer.Line, len(bill.Lines))
	for i, l := range bill.Lines {
		lines[i] = printer.Line{Name: l.Name, Quantity: l.Quantity, Amount: l.Subtotal}
	}
	ticket := printer.NewPaymentTicket(bill.TableName, lines, bill.Total)
	if err := k.dispatcher.Dispatch(ctx, ticket); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": orderID,
			"table":    bill.TableName,
		}).Errorf("payment ticket failed: %v", err)
		return nil, &StorageError{Op: "dispatch payment ticket", Err: err}
	}

	if err := k.ledger.CloseOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return k.ledger.Bill(ctx, orderID)
}
