package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
)

type TableController struct {
	Registry *services.TableRegistry
	Ledger   *services.Ledger
	Monitor  *services.ActiveMonitor
}

func NewTableController(registry *services.TableRegistry, ledger *services.Ledger, monitor *services.ActiveMonitor) *TableController {
	return &TableController{Registry: registry, Ledger: ledger, Monitor: monitor}
}

// GetAllTables lists the floor plan with each table's live active flag.
func (tc *TableController) GetAllTables(c *gin.Context) {
	active, err := tc.Ledger.ListActiveTables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All tables", tc.Registry.WithStatus(active))
}

// GetActiveTables returns the tables seen active by the last poll.
func (tc *TableController) GetActiveTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Active tables", tc.Monitor.Snapshot())
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := tc.Registry.Add(c.Request.Context(), body.Name); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", tc.Registry.List())
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	if err := tc.Registry.Remove(c.Request.Context(), c.Param("name")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", tc.Registry.List())
}
