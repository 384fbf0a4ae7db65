package handlers

import (
	"drawguess/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler serves the account REST API.
type Handler struct {
	Accounts *service.AccountService
}

func NewHandler(accounts *service.AccountService) *Handler {
	return &Handler{Accounts: accounts}
}

// getLogin returns the login put into the context by the JWT middleware.
func getLogin(c *gin.Context) (string, bool) {
	v, ok := c.Get("login")
	if !ok {
		return "", false
	}
	login, ok := v.(string)
	return login, ok && login != ""
}
