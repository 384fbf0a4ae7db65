package handlers

import (
	"errors"
	"net/http"

	"drawguess/internal/domain"
	"drawguess/internal/logger"
	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=4,max=128"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	account, err := h.Accounts.Register(c.Request.Context(), req.Login, req.Password, req.Email)
	switch {
	case errors.Is(err, domain.ErrLoginTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "login is already taken"})
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password are required"})
		return
	case err != nil:
		logger.Error("register failed", "login", req.Login, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, account)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	account, err := h.Accounts.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login or password"})
			return
		}
		logger.Error("login failed", "login", req.Login, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.respondWithToken(c, http.StatusOK, account)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, account *domain.Account) {
	token, err := service.GenerateJWT(account.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(status, gin.H{
		"token": token,
		"user":  account,
	})
}
