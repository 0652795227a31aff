package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/response"
)

type AccountHandler struct {
	accountService *app.AccountService
}

func NewAccountHandler(accountService *app.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) Export(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	export, err := h.accountService.Export(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "export account failed")
		return
	}

	response.OK(c, export)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.accountService.Delete(userID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete account failed")
		return
	}

	response.OK(c, gin.H{"deleted_user_id": userID})
}
