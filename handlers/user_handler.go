// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"saraha-server/accounts"
	"saraha-server/commons"
	"saraha-server/crypto"
	"saraha-server/middlewares"

	"github.com/labstack/echo/v4"
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"application/pdf": true,
}

// GetAllUsersHandler lists all registered users
//
//	@Summary		List users
//	@Description	Returns every user with phone numbers decrypted for display.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	UserListResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/users [get]
func GetAllUsersHandler(c echo.Context) error {
	logger := c.Logger()

	users, err := accountService.ListUsers(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list users:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list users",
		}
	}

	details := make([]UserDetails, 0, len(users))
	for i := range users {
		details = append(details, newUserDetails(&users[i], accountService.DecryptedPhone(&users[i])))
	}

	return c.JSON(http.StatusOK, UserListResponse{
		Message: "List of users",
		Count:   len(details),
		Users:   details,
	})
}

// GetUserHandler returns the authenticated user's profile
//
//	@Summary		Get profile
//	@Description	Returns the profile of the user identified by the bearer token, phone decrypted.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"User ID (informational, the token decides)"
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id} [get]
func GetUserHandler(c echo.Context) error {
	logger := c.Logger()

	user, err := middlewares.GetAuthenticatedUser(c)
	if err != nil {
		logger.Error("No authenticated user in context:", err)
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: "User not found",
		}
	}

	return c.JSON(http.StatusOK, UserResponse{
		Message: "User retrieved successfully",
		User:    newUserDetails(user, accountService.DecryptedPhone(user)),
	})
}

// ChangePasswordHandler changes a user's password
//
//	@Summary		Change password
//	@Description	Verifies the current password and replaces it with a new hash.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChangePasswordRequest	true	"Password change details"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/users/change-password [patch]
func ChangePasswordHandler(c echo.Context) error {
	logger := c.Logger()

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind change password request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := accountService.ChangePassword(c.Request().Context(), req.Email, req.CurrentPassword, req.NewPassword)
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
				Message: "Current password is incorrect",
			}
		default:
			logger.Error("Failed to change password:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to change password",
			}
		}
	}

	logger.Infof("Password changed for user: %s", user.Email)
	return c.JSON(http.StatusOK, UserResponse{
		Message: "Password changed successfully",
		User:    newUserDetails(user, ciphertextPhone(user)),
	})
}

// UpdateProfileHandler updates a user's email and display name
//
//	@Summary		Update profile
//	@Description	Overwrites email and userName for the user id in the path. Password and phone are untouched.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		UpdateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/users/update/{id} [patch]
func UpdateProfileHandler(c echo.Context) error {
	logger := c.Logger()

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid user ID",
		}
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind update profile request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := accountService.UpdateProfile(c.Request().Context(), uint(userID), req.Email, req.UserName)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrNotFound):
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "User not found",
			}
		case errors.Is(err, accounts.ErrDuplicateEmail):
			return &echo.HTTPError{
				Code:    http.StatusBadRequest,
				Message: "Email is already exist, try new one",
			}
		default:
			logger.Error("Failed to update profile:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to update profile",
			}
		}
	}

	logger.Infof("Profile updated for user: %d", user.ID)
	return c.JSON(http.StatusOK, UserResponse{
		Message: "Profile updated successfully",
		User:    newUserDetails(user, ciphertextPhone(user)),
	})
}

// UploadFileHandler stores a profile attachment on disk
//
//	@Summary		Upload file
//	@Description	Accepts a JPEG image or PDF in the "profile" form field and stores it under the upload directory with a timestamped name.
//	@Tags			Users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			profile	formData	file	true	"JPEG or PDF file"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/users/upload [post]
func UploadFileHandler(c echo.Context) error {
	logger := c.Logger()

	fileHeader, err := c.FormFile("profile")
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "File is required in 'profile' field",
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Only JPEG images and PDF files are allowed",
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		}
	}
	defer src.Close()

	uploadDir := commons.GetEnv("UPLOAD_DIR", "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to store file",
		}
	}

	prefix, err := crypto.GenerateRandomString("", 8, "hex")
	if err != nil {
		logger.Error("Failed to generate upload name:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to store file",
		}
	}
	fileName := prefix + "-" + filepath.Base(fileHeader.Filename)
	filePath := filepath.Join(uploadDir, fileName)

	dst, err := os.Create(filePath)
	if err != nil {
		logger.Error("Failed to create destination file:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to store file",
		}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		logger.Error("Failed to write uploaded file:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to store file",
		}
	}

	logger.Infof("File uploaded: %s", filePath)
	return c.JSON(http.StatusOK, UploadResponse{
		Message:  "File uploaded successfully",
		FilePath: filePath,
	})
}
