// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"time"

	"saraha-server/models"
)

// swagger:model RegisterRequest
type RegisterRequest struct {
	// Display name, 3-20 characters
	// required: true
	UserName string `json:"userName" validate:"required,min=3,max=20" example:"john_doe"`
	// User's email address
	// required: true
	Email string `json:"email" validate:"required,email" example:"john@example.com"`
	// User's password
	// required: true
	Password string `json:"password" validate:"required" example:"SecurePass123!"`
	// Must match password
	// required: true
	ConfirmPassword string `json:"confirmPassword" validate:"required" example:"SecurePass123!"`
	// Optional phone number, 10-15 digits; stored encrypted
	Phone string `json:"Phone" validate:"omitempty,number,min=10,max=15" example:"5551234567"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	// required: true
	Email string `json:"email" validate:"required,email" example:"john@example.com"`
	// User's password
	// required: true
	Password string `json:"password" validate:"required" example:"SecurePass123!"`
}

// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Account email
	// required: true
	Email string `json:"email" validate:"required,email" example:"john@example.com"`
	// Current password
	// required: true
	CurrentPassword string `json:"currentPassword" validate:"required,min=6" example:"SecurePass123!"`
	// New password, must differ from the current one
	// required: true
	NewPassword string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword" example:"EvenMoreSecure456!"`
}

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// New email address
	// required: true
	Email string `json:"email" validate:"required,email" example:"john.new@example.com"`
	// New display name, 3-20 characters
	// required: true
	UserName string `json:"userName" validate:"required,min=3,max=20" example:"john_doe_2"`
}

// swagger:model CreateMessageRequest
type CreateMessageRequest struct {
	// Sender user id (accepted as-is, not validated against the user table)
	// required: true
	Sender uint `json:"sender" validate:"required" example:"1"`
	// Receiver user id (must exist)
	// required: true
	Receiver uint `json:"receiver" validate:"required" example:"2"`
	// Message body, 1-1000 characters
	// required: true
	Content string `json:"content" validate:"required,min=1,max=1000" example:"Hello!"`
}

// ListMessagesRequest binds from query parameters.
type ListMessagesRequest struct {
	Flag     string `query:"flag" validate:"required,oneof=inbox outbox"`
	Sender   uint   `query:"sender"`
	Receiver uint   `query:"receiver"`
}

// UserDetails is the raw stored record. Password carries the hash, never
// plaintext; redacting it before external exposure is the consumer's
// responsibility, matching the documented contract. Phone holds whatever
// representation the endpoint chose: ciphertext on register/login,
// decrypted plaintext on user reads, absent when there is none.
type UserDetails struct {
	ID             uint   `json:"id"`
	UserName       string `json:"userName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"Phone,omitempty"`
	ConfirmedEmail bool   `json:"confirmedEmail"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

func newUserDetails(user *models.User, phone string) UserDetails {
	return UserDetails{
		ID:             user.ID,
		UserName:       user.UserName,
		Email:          user.Email,
		Password:       user.Password,
		Phone:          phone,
		ConfirmedEmail: user.ConfirmedEmail,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      user.UpdatedAt.Format(time.RFC3339),
	}
}

func ciphertextPhone(user *models.User) string {
	if user.Phone == nil {
		return ""
	}
	return *user.Phone
}

// swagger:model MessageDetails
type MessageDetails struct {
	ID        uint   `json:"id"`
	MID       string `json:"mid"`
	Sender    uint   `json:"sender"`
	Receiver  uint   `json:"receiver"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func newMessageDetails(message *models.Message) MessageDetails {
	return MessageDetails{
		ID:        message.ID,
		MID:       message.MID.String(),
		Sender:    message.SenderID,
		Receiver:  message.ReceiverID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
		UpdatedAt: message.UpdatedAt.Format(time.RFC3339),
	}
}

// UserRef is the projection of a message participant: userName and email
// only, identifiers omitted.
type UserRef struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// swagger:model PopulatedMessageDetails
type PopulatedMessageDetails struct {
	ID        uint    `json:"id"`
	MID       string  `json:"mid"`
	Sender    UserRef `json:"sender"`
	Receiver  UserRef `json:"receiver"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// swagger:model RegisterResponse
type RegisterResponse struct {
	Message string      `json:"message" example:"User created successfully"`
	User    UserDetails `json:"user"`
}

// swagger:model LoginResponse
type LoginResponse struct {
	Message string      `json:"message" example:"Login successful"`
	Token   string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    UserDetails `json:"user"`
	Status  int         `json:"status" example:"200"`
}

// swagger:model GenericResponse
type GenericResponse struct {
	// Message indicating the result of the operation
	Message string `json:"message"`
}

// swagger:model UserListResponse
type UserListResponse struct {
	Message string        `json:"message" example:"List of users"`
	Count   int           `json:"count" example:"2"`
	Users   []UserDetails `json:"users"`
}

// swagger:model UserResponse
type UserResponse struct {
	Message string      `json:"message" example:"User retrieved successfully"`
	User    UserDetails `json:"user"`
}

// swagger:model UploadResponse
type UploadResponse struct {
	Message  string `json:"message" example:"File uploaded successfully"`
	FilePath string `json:"filePath" example:"uploads/4f3c2a1b9d8e7f60-avatar.jpg"`
}

// swagger:model MessageResponse
type MessageResponse struct {
	Message string `json:"message" example:"Message created successfully"`
	Data    any    `json:"data"`
}

// swagger:model MessageListResponse
type MessageListResponse struct {
	Message string           `json:"message" example:"Inbox messages for 2"`
	Data    []MessageDetails `json:"data"`
}

// ErrorResponse is the error body every failed request gets, including
// errors raised outside handlers. The capitalized Error key is part of
// the published contract.
type ErrorResponse struct {
	Error  string `json:"Error"`
	Status int    `json:"status"`
}
