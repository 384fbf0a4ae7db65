package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Best returns the rating leaderboard. ?limit= caps the list (default and max 100).
func (h *Handler) Best(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	best, err := h.Accounts.Best(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"best": best})
}
