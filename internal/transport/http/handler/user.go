package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/middleware"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
}

type UpdateProfileRequest struct {
	Name                 *string `json:"name" binding:"omitempty,max=128"`
	DefaultPersonaID     *string `json:"default_persona_id" binding:"omitempty,max=32"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	OnboardingCompleted  *bool   `json:"onboarding_completed"`
}

func NewUserHandler(userService *app.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Sync upserts the user record for the verified identity. It is the one
// authenticated route that works before the user row exists.
func (h *UserHandler) Sync(c *gin.Context) {
	claims, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	user, err := h.userService.Sync(c.Request.Context(), claims)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "sync user failed")
		}
		return
	}

	response.OK(c, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.userService.UpdateProfile(userID, app.UpdateProfileInput{
		Name:                 req.Name,
		DefaultPersonaID:     req.DefaultPersonaID,
		NotificationsEnabled: req.NotificationsEnabled,
		OnboardingCompleted:  req.OnboardingCompleted,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update profile failed")
		}
		return
	}

	response.OK(c, user)
}

func getUser(c *gin.Context) (*model.User, bool) {
	return middleware.GetUser(c)
}

func getUserID(c *gin.Context) (uint, bool) {
	return middleware.GetUserID(c)
}
