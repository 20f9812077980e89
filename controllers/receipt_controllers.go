package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/printer"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
)

type ReceiptController struct {
	Ledger *services.Ledger
	Width  int
}

func NewReceiptController(ledger *services.Ledger, width int) *ReceiptController {
	return &ReceiptController{Ledger: ledger, Width: width}
}

// GetReceipt renders the payment slip of a paid order again, as plain text.
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	bill, err := rc.Ledger.Bill(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if bill.Status != models.OrderStatusPaid {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order is not paid yet"))
		return
	}

	lines := make([]printer.Line, len(bill.Lines))
	for i, l := range bill.Lines {
		lines[i] = printer.Line{Name: l.Name, Quantity: l.Quantity, Amount: l.Subtotal}
	}
	ticket := printer.NewPaymentTicket(bill.TableName, lines, bill.Total)
	if bill.PaidAt != nil {
		ticket.PrintedAt = bill.PaidAt.Local()
	}

	c.String(http.StatusOK, printer.Render(ticket, rc.Width))
}
