package orders

import "errors"

var (
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrInvalidLine      = errors.New("each order item needs a menu item id and a positive quantity")
	ErrMenuItemNotFound = errors.New("menu item not found or unavailable")
	ErrOrderNotFound    = errors.New("order not found")
	ErrForbidden        = errors.New("not allowed to access this order")
	ErrInvalidStatus    = errors.New("invalid order status")
)
