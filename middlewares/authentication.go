// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"saraha-server/db"
	"saraha-server/models"
	"saraha-server/tokens"

	"github.com/labstack/echo/v4"
)

var tokenService *tokens.TokenService

// Init wires the session-token verifier. Call once at startup, after
// the env is loaded.
func Init() {
	tokenService = tokens.NewTokenService()
}

// VerifyAuthMiddleware authenticates the request with a bearer session
// token, loads the user record it identifies, and injects it into the
// request context for downstream handlers.
func VerifyAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := c.Logger()

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Error("Authorization header missing or invalid.")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Bearer token is required",
			}
		}
		sessionToken := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := tokenService.VerifySessionToken(sessionToken)
		if err != nil {
			logger.Error("Session token verification failed:", err)
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired authentication token, please login again",
			}
		}

		var user models.User
		if err := db.Conn.Where("id = ?", userID).First(&user).Error; err != nil {
			logger.Error("Failed to load authenticated user:", err)
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired authentication token, please login again",
			}
		}

		c.Set("user", user)
		return next(c)
	}
}

func GetAuthenticatedUser(c echo.Context) (*models.User, error) {
	if user, ok := c.Get("user").(models.User); ok {
		return &user, nil
	}
	return nil, errors.New("no authenticated user found")
}
