// internal/interfaces/http/handlers/common.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/middleware"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

// currentUser returns the authenticated user id or answers 401
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, string(apperror.KindUnauthorized), "User not authenticated")
		return 0, false
	}
	return userID, true
}

// pathID parses a positive numeric path parameter or answers 400
func pathID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.Failure{
			Error:   string(apperror.KindValidation),
			Message: "Invalid " + label,
			Details: map[string]string{name: "must be a positive integer"},
		})
		return 0, false
	}
	return uint(id), true
}
