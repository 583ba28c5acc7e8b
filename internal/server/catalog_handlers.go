package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/judyrop/restaurant-backend/internal/catalog"
)

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		s.internalError(c, "category listing failed", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) listMenu(c *gin.Context) {
	items, err := s.catalog.ListAvailableMenuItems()
	if err != nil {
		s.internalError(c, "menu listing failed", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getMenuItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu item ID"})
		return
	}

	item, err := s.catalog.GetMenuItem(uint(id))
	if errors.Is(err, catalog.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		s.internalError(c, "menu item lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) addMenuItem(c *gin.Context) {
	var req catalog.NewMenuItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, price, category_id"})
		return
	}

	item, err := s.catalog.AddMenuItem(req)
	switch {
	case errors.Is(err, catalog.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a positive number"})
	case errors.Is(err, catalog.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category does not exist"})
	case err != nil:
		s.internalError(c, "menu item creation failed", err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item_id": item.ID})
	}
}
