package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/restaurant-backend/internal/auth"
	"github.com/judyrop/restaurant-backend/internal/orders"
)

func (s *Server) createOrder(c *gin.Context) {
	defer func() {
		recordOrderOperation("create", c.Writer.Status() < 300)
	}()

	var req orders.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order items are required"})
		return
	}

	order, err := s.orders.Place(auth.CurrentUser(c), req)
	switch {
	case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidLine):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrMenuItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		s.internalError(c, "order creation failed", err)
	default:
		c.JSON(http.StatusCreated, gin.H{
			"message":      "Order created",
			"order_id":     order.ID,
			"total_amount": order.TotalAmount,
		})
	}
}

func (s *Server) listMyOrders(c *gin.Context) {
	defer func() {
		recordOrderOperation("list", c.Writer.Status() < 300)
	}()

	user := auth.CurrentUser(c)
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 10)

	result, err := s.orders.ListForUser(user.ID, page, perPage)
	if err != nil {
		s.internalError(c, "order listing failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getOrder(c *gin.Context) {
	defer func() {
		recordOrderOperation("details", c.Writer.Status() < 300)
	}()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := s.orders.Get(uint(id), auth.CurrentUser(c))
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this order"})
	case err != nil:
		s.internalError(c, "order lookup failed", err)
	default:
		c.JSON(http.StatusOK, order)
	}
}

func (s *Server) adminListOrders(c *gin.Context) {
	defer func() {
		recordOrderOperation("admin_list", c.Writer.Status() < 300)
	}()

	params := orders.AdminListParams{
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "per_page", 10),
		Status:    c.Query("status"),
		UserID:    uint(queryInt(c, "user_id", 0)),
		SortBy:    c.DefaultQuery("sort_by", "order_time"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	result, err := s.orders.ListForAdmin(params)
	if err != nil {
		s.internalError(c, "admin order listing failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	defer func() {
		recordOrderOperation("update_status", c.Writer.Status() < 300)
	}()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	admin := auth.CurrentUser(c)
	err = s.orders.UpdateStatus(uint(id), req.Status, req.Note, admin.ID)
	switch {
	case errors.Is(err, orders.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case err != nil:
		s.internalError(c, "order status update failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": id, "status": req.Status})
	}
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return defaultValue
}
