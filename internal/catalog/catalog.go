package catalog

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/judyrop/restaurant-backend/models"
)

var (
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidPrice     = errors.New("price must be positive")
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("display_order ASC, name ASC").Find(&categories).Error
	return categories, err
}

// ListAvailableMenuItems returns only items currently marked available,
// grouped by category display order.
func (s *Service) ListAvailableMenuItems() ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.Model(&models.MenuItem{}).
		Select("menu_items.*").
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id").
		Where("menu_items.is_available = ?", true).
		Order("categories.display_order ASC, menu_items.name ASC").
		Find(&items).Error
	return items, err
}

// GetMenuItem looks up a single item by id. Unavailable items are still
// returned here so callers can tell "unavailable" apart from "gone".
func (s *Service) GetMenuItem(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type NewMenuItem struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	ImageURL    string  `json:"image_url"`
	IsAvailable *bool   `json:"is_available"`
}

// AddMenuItem inserts a new item after checking the price and that the
// referenced category exists.
func (s *Service) AddMenuItem(req NewMenuItem) (*models.MenuItem, error) {
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	var category models.Category
	err := s.db.First(&category, req.CategoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	item := models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}

	s.log.Info("menu item added", zap.Uint("item_id", item.ID), zap.String("name", item.Name))
	return &item, nil
}
