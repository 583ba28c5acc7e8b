package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/judyrop/restaurant-backend/models"
)

const maxPerPage = 100

type Line struct {
	MenuItemID      uint   `json:"menu_item_id"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests"`
}

type PlaceRequest struct {
	Items           []Line `json:"items"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

type Page struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

type AdminListParams struct {
	Page      int
	PerPage   int
	Status    string
	UserID    uint
	SortBy    string
	SortOrder string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Place validates the requested lines, reprices them from the catalog and
// writes the order header plus all line items in one transaction. Any price
// a client sends is ignored: the unit price is always the current menu price,
// snapshotted onto the line item.
func (s *Service) Place(user *models.User, req PlaceRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var (
		items []models.OrderItem
		total float64
	)
	for _, line := range req.Items {
		if line.MenuItemID == 0 || line.Quantity <= 0 {
			return nil, ErrInvalidLine
		}

		var menuItem models.MenuItem
		err := s.db.First(&menuItem, line.MenuItemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %d", ErrMenuItemNotFound, line.MenuItemID)
		}
		if err != nil {
			return nil, err
		}
		if !menuItem.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, menuItem.Name)
		}

		subtotal := menuItem.Price * float64(line.Quantity)
		total += subtotal
		items = append(items, models.OrderItem{
			MenuItemID:      menuItem.ID,
			Quantity:        line.Quantity,
			UnitPrice:       menuItem.Price,
			Subtotal:        subtotal,
			SpecialRequests: line.SpecialRequests,
		})
	}

	now := time.Now()
	order := models.Order{
		CustomerName:    user.DisplayName(),
		UserID:          &user.ID,
		TotalAmount:     total,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentUnpaid,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		OrderTime:       now,
		UpdatedAt:       now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Error("order creation failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	order.Items = items
	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", user.ID),
		zap.Float64("total", total))
	return &order, nil
}

// Get returns one order with its items. Only the owning user or an admin may
// read it.
func (s *Service) Get(orderID uint, requester *models.User) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if requester.Role != models.RoleAdmin {
		if order.UserID == nil || *order.UserID != requester.ID {
			return nil, ErrForbidden
		}
	}
	return &order, nil
}

// ListForUser pages through a user's own orders, newest first.
func (s *Service) ListForUser(userID uint, page, perPage int) (*Page, error) {
	page, perPage = clampPaging(page, perPage)

	var total int64
	if err := s.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	var result []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("order_time DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return &Page{Orders: result, Total: total, Page: page, PerPage: perPage}, nil
}

// Sortable columns for the admin listing. Caller input never reaches the SQL
// text except through this table.
var adminSortColumns = map[string]string{
	"id":           "orders.id",
	"order_time":   "orders.order_time",
	"total_amount": "orders.total_amount",
	"status":       "orders.status",
	"username":     "users.username",
}

// ListForAdmin pages through all orders with optional status and user filters.
// Unknown sort fields fall back to order_time, unknown directions to DESC.
func (s *Service) ListForAdmin(params AdminListParams) (*Page, error) {
	page, perPage := clampPaging(params.Page, params.PerPage)

	column, ok := adminSortColumns[params.SortBy]
	if !ok {
		column = "orders.order_time"
	}
	direction := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		direction = "ASC"
	}

	var total int64
	if err := s.adminQuery(params).Count(&total).Error; err != nil {
		return nil, err
	}

	var result []models.Order
	err := s.adminQuery(params).
		Select("orders.*").
		Preload("Items").
		Order(column + " " + direction).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return &Page{Orders: result, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *Service) adminQuery(params AdminListParams) *gorm.DB {
	query := s.db.Model(&models.Order{}).
		Joins("LEFT JOIN users ON users.id = orders.user_id")
	if params.Status != "" {
		query = query.Where("orders.status = ?", params.Status)
	}
	if params.UserID != 0 {
		query = query.Where("orders.user_id = ?", params.UserID)
	}
	return query
}

// UpdateStatus moves an order to newStatus and appends one audit row, both in
// the same transaction. Setting the current status again is a no-op success
// and leaves the history untouched.
func (s *Service) UpdateStatus(orderID uint, newStatus, note string, adminID uint) error {
	if !models.ValidStatus(newStatus) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.Status == newStatus {
			return nil
		}

		previous := order.Status
		updates := map[string]any{
			"status":     newStatus,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}

		history := models.OrderStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			ChangedBy:      adminID,
			Note:           note,
			CreatedAt:      time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		s.log.Info("order status updated",
			zap.Uint("order_id", order.ID),
			zap.String("from", previous),
			zap.String("to", newStatus),
			zap.Uint("admin_id", adminID))
		return nil
	})
}

func clampPaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
