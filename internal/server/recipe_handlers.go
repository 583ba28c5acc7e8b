package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type suggestionRequest struct {
	CurrentDishes []string `json:"current_dishes"`
	Preferences   string   `json:"preferences"`
}

func (s *Server) recipeSuggestion(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_dishes must be a list of dish names"})
		return
	}

	suggestion := s.suggester.Suggest(req.CurrentDishes, req.Preferences)
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
