package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/services"
	"github.com/ocna/restaurant-pos/utils"
)

type MenuController struct {
	Catalog *services.Catalog
}

func NewMenuController(catalog *services.Catalog) *MenuController {
	return &MenuController{Catalog: catalog}
}

// menuRequest accepts the price as a number or as typed into the admin form.
type menuRequest struct {
	Name       string      `json:"name"`
	Price      json.Number `json:"price"`
	CategoryID uint        `json:"category_id"`
}

func (r menuRequest) input() (services.MenuItemInput, error) {
	price, err := services.ParsePrice(r.Price.String())
	if err != nil {
		return services.MenuItemInput{}, err
	}
	return services.MenuItemInput{Name: r.Name, Price: price, CategoryID: r.CategoryID}, nil
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Catalog.ListMenuItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu items", items)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	item, err := mc.Catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	item, err := mc.Catalog.CreateMenuItem(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	item, err := mc.Catalog.UpdateMenuItem(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	if err := mc.Catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"menu_id": id})
}
