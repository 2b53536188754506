package http

import (
	"errors"
	"net/http"

	"darkroom/internal/domain/models"
	"darkroom/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var errNoToken = errors.New("no token in context")

// claims pulls the parsed JWT out of the echo context. Routes without
// the jwt middleware simply have no token, which callers treat as an
// anonymous reader.
func claims(c echo.Context) (jwt.MapClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errNoToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errNoToken
	}
	return mc, nil
}

func actorID(c echo.Context) (int64, error) {
	mc, err := claims(c)
	if err != nil {
		return 0, err
	}
	uid, ok := mc["uid"].(float64)
	if !ok {
		return 0, errNoToken
	}
	return int64(uid), nil
}

// actorRole returns the caller's role, RoleUser for anonymous requests.
func actorRole(c echo.Context) models.Role {
	mc, err := claims(c)
	if err != nil {
		return models.RoleUser
	}
	role, ok := mc["role"].(string)
	if !ok {
		return models.RoleUser
	}
	return models.Role(role)
}

// RequireRole guards a route group: the caller's role must be one of
// the allowed ones.
func RequireRole(allowed ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := actorRole(c)
			for _, a := range allowed {
				if role == a {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, response.ErrForbidden)
		}
	}
}
