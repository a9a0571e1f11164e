// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"saraha-server/accounts"
	"saraha-server/tokens"

	"github.com/labstack/echo/v4"
)

// RegisterHandler creates a new user account
//
//	@Summary		Register a new user
//	@Description	Creates an account, hashes the password, encrypts the phone number and emails an activation link.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration details"
//	@Success		201		{object}	RegisterResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/auth/register [post]
func RegisterHandler(c echo.Context) error {
	logger := c.Logger()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind register request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := accountService.Register(c.Request().Context(), accounts.RegisterParams{
		UserName:        req.UserName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrDuplicateEmail):
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "Email is already exist, try new one",
			}
		case errors.Is(err, accounts.ErrPasswordMismatch):
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "Password must match",
			}
		default:
			logger.Error("Failed to register user:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to create user",
			}
		}
	}

	logger.Infof("User registered: %s", user.Email)
	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		User:    newUserDetails(user, ciphertextPhone(user)),
	})
}

// LoginHandler authenticates a user
//
//	@Summary		Login
//	@Description	Verifies credentials and returns a session token with the stored user record.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/auth/login [post]
func LoginHandler(c echo.Context) error {
	logger := c.Logger()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind login request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := accountService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		case errors.Is(err, accounts.ErrInvalidCredentials):
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "Invalid Credentials",
			}
		default:
			logger.Error("Failed to login user:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to login",
			}
		}
	}

	logger.Infof("User logged in: %s", user.Email)
	return c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    newUserDetails(user, ciphertextPhone(user)),
		Status:  http.StatusOK,
	})
}

// ActivateAccountHandler confirms a user's email address
//
//	@Summary		Activate account
//	@Description	Verifies the emailed activation token and marks the account's email as confirmed. Idempotent.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string	true	"Activation token"
//	@Success		200		{object}	GenericResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/auth/activate_account/{token} [get]
func ActivateAccountHandler(c echo.Context) error {
	logger := c.Logger()

	// Activation links embed the token as "token=<jwt>" in the path
	// segment; accept both that form and the bare token.
	activationToken := strings.TrimPrefix(c.Param("token"), "token=")
	if activationToken == "" {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Activation token is required",
		}
	}

	user, err := accountService.Activate(c.Request().Context(), activationToken)
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrInvalidToken):
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired activation token",
			}
		case errors.Is(err, accounts.ErrNotFound):
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		default:
			logger.Error("Failed to activate account:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to activate account",
			}
		}
	}

	logger.Infof("Account activated: %s", user.Email)
	return c.JSON(http.StatusOK, GenericResponse{
		Message: "Account activated successfully",
	})
}
