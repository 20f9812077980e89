package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ocna/restaurant-pos/models"
	"github.com/ocna/restaurant-pos/utils"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var validate = validator.New()

// MenuItemInput is what the admin submits when creating or editing a dish.
// A zero CategoryID means the default category.
type MenuItemInput struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Price      float64 `json:"price" validate:"gte=0"`
	CategoryID uint    `json:"category_id"`
}

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ParsePrice turns the price typed by the admin into a number.
func ParsePrice(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, invalid("price", "price is required")
	}
	p, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, invalid("price", fmt.Sprintf("%q is not a number", text))
	}
	if p < 0 {
		return 0, invalid("price", "price must not be negative")
	}
	return p, nil
}

func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, storageErr("list categories", err)
	}
	sortByName(categories, func(cat models.Category) string { return cat.Name })
	return categories, nil
}

func (c *Catalog) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := c.checkCategoryName(ctx, 0, name)
	if err != nil {
		return nil, err
	}

	category := models.Category{Name: name}
	if err := c.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, storageErr("create category", err)
	}
	utils.InfoLogger.Printf("Category created: %s (id=%d)", category.Name, category.ID)
	return &category, nil
}

func (c *Catalog) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	name, err := c.checkCategoryName(ctx, id, name)
	if err != nil {
		return nil, err
	}

	var category models.Category
	if err := c.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("category", id)
		}
		return nil, storageErr("load category", err)
	}
	category.Name = name
	if err := c.db.WithContext(ctx).Save(&category).Error; err != nil {
		return nil, storageErr("rename category", err)
	}
	return &category, nil
}

// DeleteCategory moves the category's menu items to the default category and
// then removes it. The default category itself cannot be deleted.
func (c *Catalog) DeleteCategory(ctx context.Context, id uint) error {
	if id == models.DefaultCategoryID {
		return invalid("category_id", "the default category cannot be deleted")
	}

	var moved int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("category", id)
			}
			return err
		}

		// Unscoped so that soft-deleted items keep a valid category as well.
		res := tx.Unscoped().Model(&models.MenuItem{}).
			Where("category_id = ?", id).
			Update("category_id", models.DefaultCategoryID)
		if res.Error != nil {
			return res.Error
		}
		moved = res.RowsAffected

		return tx.Delete(&category).Error
	})
	if err != nil {
		return storageErr("delete category", err)
	}
	utils.InfoLogger.Printf("Category %d deleted, %d menu items moved to default category", id, moved)
	return nil
}

// ListMenuItems returns the menu with category names, sorted by name the way a
// Vietnamese reader expects.
func (c *Catalog) ListMenuItems(ctx context.Context) ([]models.MenuItemView, error) {
	var items []models.MenuItemView
	if err := c.db.WithContext(ctx).
		Table("menu_items AS mi").
		Select("mi.id, mi.name, mi.price, mi.category_id, c.name AS category_name").
		Joins("JOIN categories c ON c.id = mi.category_id").
		Where("mi.deleted_at IS NULL").
		Scan(&items).Error; err != nil {
		return nil, storageErr("list menu items", err)
	}
	sortByName(items, func(v models.MenuItemView) string { return v.Name })
	return items, nil
}

func (c *Catalog) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("menu item", id)
		}
		return nil, storageErr("load menu item", err)
	}
	return &item, nil
}

func (c *Catalog) CreateMenuItem(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	in, err := c.checkMenuItem(ctx, in)
	if err != nil {
		return nil, err
	}

	item := models.MenuItem{Name: in.Name, Price: in.Price, CategoryID: in.CategoryID}
	if err := c.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, storageErr("create menu item", err)
	}
	utils.InfoLogger.Printf("Menu item created: %s (id=%d, price=%s)", item.Name, item.ID, utils.FormatVND(item.Price))
	return &item, nil
}

func (c *Catalog) UpdateMenuItem(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	in, err := c.checkMenuItem(ctx, in)
	if err != nil {
		return nil, err
	}

	item, err := c.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Price = in.Price
	item.CategoryID = in.CategoryID
	if err := c.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, storageErr("update menu item", err)
	}
	return item, nil
}

// DeleteMenuItem hides a dish from the menu. Past orders keep referring to it.
func (c *Catalog) DeleteMenuItem(ctx context.Context, id uint) error {
	res := c.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return storageErr("delete menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("menu item", id)
	}
	return nil
}

func (c *Catalog) checkCategoryName(ctx context.Context, id uint, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "category name is required")
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, id).
		Count(&count).Error; err != nil {
		return "", storageErr("check category name", err)
	}
	if count > 0 {
		return "", invalid("name", fmt.Sprintf("category %q already exists", name))
	}
	return name, nil
}

func (c *Catalog) checkMenuItem(ctx context.Context, in MenuItemInput) (MenuItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return in, validationFrom(err)
	}
	if in.CategoryID == 0 {
		in.CategoryID = models.DefaultCategoryID
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&count).Error; err != nil {
		return in, storageErr("check category", err)
	}
	if count == 0 {
		return in, notFound("category", in.CategoryID)
	}
	return in, nil
}

func validationFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", err.Error())
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, field+" is required")
	case "gte":
		return invalid(field, field+" must not be negative")
	case "max":
		return invalid(field, field+" is too long")
	default:
		return invalid(field, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
}

var vietnamese = collate.New(language.Vietnamese)

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return vietnamese.CompareString(name(items[i]), name(items[j])) < 0
	})
}
