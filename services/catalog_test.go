package services_test

import (
	"context"
	"testing"

	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	price, err := services.ParsePrice(" 85000 ")
	require.NoError(t, err)
	assert.Equal(t, 85000.0, price)

	for _, text := range []string{"", "abc", "-1"} {
		_, err := services.ParsePrice(text)
		var verr *services.ValidationError
		assert.ErrorAs(t, err, &verr, "input %q", text)
	}
}

func TestCategoryCRUD(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)
	ctx := context.Background()

	cat, err := catalog.CreateCategory(ctx, "  Lẩu ")
	require.NoError(t, err)
	assert.Equal(t, "Lẩu", cat.Name)

	var verr *services.ValidationError
	_, err = catalog.CreateCategory(ctx, "Lẩu")
	assert.ErrorAs(t, err, &verr)
	_, err = catalog.CreateCategory(ctx, "")
	assert.ErrorAs(t, err, &verr)

	renamed, err := catalog.RenameCategory(ctx, cat.ID, "Lẩu hải sản")
	require.NoError(t, err)
	assert.Equal(t, "Lẩu hải sản", renamed.Name)

	var nf *services.NotFoundError
	_, err = catalog.RenameCategory(ctx, 999, "Khác")
	assert.ErrorAs(t, err, &nf)

	categories, err := catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestDeleteCategoryMovesItemsToDefault(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)
	ctx := context.Background()

	var seafood models.Category
	require.NoError(t, db.Where("name = ?", "Hải sản").First(&seafood).Error)

	tom, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Tôm hùm", Price: 500000, CategoryID: seafood.ID})
	require.NoError(t, err)
	cua, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Cua rang me", Price: 300000, CategoryID: seafood.ID})
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteMenuItem(ctx, cua.ID))

	require.NoError(t, catalog.DeleteCategory(ctx, seafood.ID))

	items, err := catalog.ListMenuItems(ctx)
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, seafood.ID, item.CategoryID)
	}

	moved, err := catalog.GetMenuItem(ctx, tom.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryID, moved.CategoryID)

	var hidden models.MenuItem
	require.NoError(t, db.Unscoped().First(&hidden, cua.ID).Error)
	assert.Equal(t, models.DefaultCategoryID, hidden.CategoryID)

	var nf *services.NotFoundError
	assert.ErrorAs(t, catalog.DeleteCategory(ctx, seafood.ID), &nf)
}

func TestDeleteDefaultCategoryIsRejected(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)

	err := catalog.DeleteCategory(context.Background(), models.DefaultCategoryID)
	var verr *services.ValidationError
	assert.ErrorAs(t, err, &verr)

	var count int64
	db.Model(&models.Category{}).Where("id = ?", models.DefaultCategoryID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMenuItemValidation(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)
	ctx := context.Background()

	var verr *services.ValidationError
	_, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: " ", Price: 10})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Ốc", Price: -5})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	var nf *services.NotFoundError
	_, err = catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Ốc", Price: 5, CategoryID: 42})
	assert.ErrorAs(t, err, &nf)

	item, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Ốc mỡ", Price: 55000})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryID, item.CategoryID)
}

func TestMenuItemUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)
	ctx := context.Background()

	item, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: "Ốc mỡ", Price: 55000})
	require.NoError(t, err)

	updated, err := catalog.UpdateMenuItem(ctx, item.ID, services.MenuItemInput{Name: "Ốc mỡ xào bơ", Price: 65000, CategoryID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Ốc mỡ xào bơ", updated.Name)
	assert.Equal(t, 65000.0, updated.Price)
	assert.Equal(t, uint(2), updated.CategoryID)

	require.NoError(t, catalog.DeleteMenuItem(ctx, item.ID))
	var nf *services.NotFoundError
	_, err = catalog.GetMenuItem(ctx, item.ID)
	assert.ErrorAs(t, err, &nf)
	assert.ErrorAs(t, catalog.DeleteMenuItem(ctx, item.ID), &nf)
	_, err = catalog.UpdateMenuItem(ctx, item.ID, services.MenuItemInput{Name: "x", Price: 1})
	assert.ErrorAs(t, err, &nf)
}

func TestListMenuItemsSortsVietnamese(t *testing.T) {
	db := setupTestDB(t)
	catalog := services.NewCatalog(db)
	ctx := context.Background()

	for _, name := range []string{"Ốc hương", "Bia", "Ốc bươu", "Nghêu hấp", "Đậu phộng"} {
		_, err := catalog.CreateMenuItem(ctx, services.MenuItemInput{Name: name, Price: 1})
		require.NoError(t, err)
	}

	items, err := catalog.ListMenuItems(ctx)
	require.NoError(t, err)

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
		assert.Equal(t, "Ốc", item.CategoryName)
	}
	assert.Equal(t, []string{"Bia", "Đậu phộng", "Nghêu hấp", "Ốc bươu", "Ốc hương"}, names)
}
