package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backstage/entity"
)

type putUserRequest struct {
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

type userResponse struct {
	UserID string            `json:"user_id"`
	Email  string            `json:"email"`
	Role   entity.Role       `json:"role"`
	Access entity.UserAccess `json:"access"`
}

func newUserResponse(u entity.User) userResponse {
	return userResponse{UserID: u.UserID, Email: u.Email, Role: u.Role, Access: u.UserAccess}
}

func (s Server) PutUser(c echo.Context) error {
	var request putUserRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	user, err := s.service.UpsertUser(c.Request().Context(), c.Param("user_id"), request.Email, request.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (s Server) GetMyAccess(c echo.Context) error {
	user, err := s.service.GetUser(c.Request().Context(), requesterID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}
