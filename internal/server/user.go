package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfileRequest struct {
	Name        string  `json:"name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (s *Server) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.authsvc.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "password changed", updated)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.authsvc.UpdateProfile(c.Request.Context(), user.ID, authdomain.UpdateProfileRequest{
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, "profile updated", updated)
}
