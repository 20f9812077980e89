package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
)

type OrderController struct {
	Ledger  *services.Ledger
	Kitchen *services.Kitchen
}

func NewOrderController(ledger *services.Ledger, kitchen *services.Kitchen) *OrderController {
	return &OrderController{Ledger: ledger, Kitchen: kitchen}
}

// GetTableOrder returns the bill of the table's open order, or an empty
// order when the table is free.
func (oc *OrderController) GetTableOrder(c *gin.Context) {
	ctx := c.Request.Context()
	table := c.Param("name")

	orderID, ok, err := oc.Ledger.OpenOrderID(ctx, table)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !ok {
		utils.RespondJSON(c, http.StatusOK, "No open order", services.Bill{TableName: table, Lines: []services.BillLine{}})
		return
	}

	bill, err := oc.Ledger.Bill(ctx, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open order", bill)
}

// AdjustItem applies one +/- tap on a dish. Clients send a request_id so a
// retried tap is counted once.
func (oc *OrderController) AdjustItem(c *gin.Context) {
	var body struct {
		MenuItemID uint   `json:"menu_item_id" binding:"required"`
		Delta      int    `json:"delta"`
		RequestID  string `json:"request_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	orderID, err := oc.Ledger.AdjustTable(ctx, c.Param("name"), body.MenuItemID, body.Delta, body.RequestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	quantities := map[uint]int{}
	if orderID != 0 {
		if quantities, err = oc.Ledger.OrderQuantities(ctx, orderID); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", gin.H{
		"order_id":   orderID,
		"quantities": quantities,
	})
}

func (oc *OrderController) SendKitchenTicket(c *gin.Context) {
	ticket, err := oc.Kitchen.SendKitchenTicket(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen ticket sent", ticket)
}

func (oc *OrderController) Checkout(c *gin.Context) {
	bill, err := oc.Kitchen.Checkout(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order paid", bill)
}

// CloseOrder marks an order paid without printing a bill.
func (oc *OrderController) CloseOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	if err := oc.Ledger.CloseOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order closed", gin.H{"order_id": id})
}
