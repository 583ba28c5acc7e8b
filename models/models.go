package models

import "time"

// Order lifecycle statuses. A new order always starts at StatusPending.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusDelivered = "delivered"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const PaymentUnpaid = "unpaid"

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusCompleted, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null;default:customer" json:"role"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// DisplayName is the name stamped onto orders placed by the user.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type MenuItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	CategoryID  uint    `json:"category_id"`
	ImageURL    string  `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          *uint       `json:"user_id"`
	CustomerName    string      `json:"customer_name"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `gorm:"not null;default:pending" json:"status"`
	PaymentStatus   string      `gorm:"not null;default:unpaid" json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	DeliveryAddress string      `json:"delivery_address"`
	Notes           string      `json:"notes"`
	OrderTime       time.Time   `json:"order_time"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

type OrderItem struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OrderID         uint    `gorm:"index;not null" json:"order_id"`
	MenuItemID      uint    `gorm:"not null" json:"menu_item_id"`
	Quantity        int     `gorm:"not null" json:"quantity"`
	UnitPrice       float64 `gorm:"not null" json:"unit_price"`
	Subtotal        float64 `gorm:"not null" json:"subtotal"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

// OrderStatusHistory is append-only: one row per genuine admin status
// transition, never updated or deleted.
type OrderStatusHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"index;not null" json:"order_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedBy      uint      `json:"changed_by"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}
