package http

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"backstage/entity"
)

const (
	userIDHeader = "X-User-ID"

	requesterKey = "requester_id"
)

// authenticate trusts the identity asserted by the authentication proxy in front of the service.
func authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := strings.TrimSpace(c.Request().Header.Get(userIDHeader))
		if userID == "" {
			return entity.ErrUnauthenticated.WithMessage("missing %s header", userIDHeader)
		}

		c.Set(requesterKey, userID)
		return next(c)
	}
}

func requesterID(c echo.Context) string {
	id, _ := c.Get(requesterKey).(string)
	return id
}

// authenticateCollaborator only lets through requests carrying the shared collaborator secret as
// a Bearer token.
func authenticateCollaborator(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return entity.ErrUnauthenticated.WithMessage("invalid collaborator credentials")
		},
	})
}
