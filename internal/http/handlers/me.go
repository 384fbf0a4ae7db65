package handlers

import (
	"errors"
	"net/http"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
)

type ChangeRequest struct {
	Login    string `json:"login" binding:"omitempty,max=64"`
	Password string `json:"password" binding:"omitempty,min=4,max=128"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (h *Handler) Me(c *gin.Context) {
	login, ok := getLogin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	account, err := h.Accounts.Get(c.Request.Context(), login)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Change updates the current account. A changed login gets a fresh token.
func (h *Handler) Change(c *gin.Context) {
	login, ok := getLogin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	account, err := h.Accounts.Change(c.Request.Context(), login, req.Login, req.Password, req.Email)
	switch {
	case errors.Is(err, domain.ErrLoginTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "login is already taken"})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		logger.Error("account change failed", "login", login, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update account"})
		return
	}

	resp := gin.H{"user": account}
	if account.Login != login {
		token, err := service.GenerateJWT(account.Login)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		resp["token"] = token
	}
	c.JSON(http.StatusOK, resp)
}
