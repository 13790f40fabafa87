// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Profiles reads and edits the signed-in user
type Profiles interface {
	GetProfile(ctx context.Context, userID uint) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *user.UpdateProfileRequest) (*user.User, error)
}

// UserProfileHandler handles the signed-in user's profile
type UserProfileHandler struct {
	profiles Profiles
	log      logrus.FieldLogger
}

// NewUserProfileHandler creates a new profile handler
func NewUserProfileHandler(profiles Profiles, log logrus.FieldLogger) *UserProfileHandler {
	return &UserProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

// GetProfile handles GET /profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	u, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, u, "")
}

// UpdateProfile handles PUT /profile
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.profiles.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.OK(c, u, "Profile updated successfully")
}
