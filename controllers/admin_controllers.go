package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
)

// AdminController serves the revenue screens.
type AdminController struct {
	Reports *services.Reports
}

func NewAdminController(reports *services.Reports) *AdminController {
	return &AdminController{Reports: reports}
}

func (ac *AdminController) GetRevenue(c *gin.Context) {
	days, ok := queryInt(c, "days", 1)
	if !ok {
		return
	}
	revenue, err := ac.Reports.RevenueSince(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue", gin.H{
		"days":      days,
		"revenue":   revenue,
		"formatted": utils.FormatVND(revenue),
	})
}

func (ac *AdminController) GetTopSellers(c *gin.Context) {
	days, ok := queryInt(c, "days", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}
	top, err := ac.Reports.TopSellers(c.Request.Context(), days, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Top sellers", top)
}

// GetSalesReport returns everything the report screen shows for one period.
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	days, ok := queryInt(c, "days", 1)
	if !ok {
		return
	}
	summary, err := ac.Reports.Summary(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", summary)
}
