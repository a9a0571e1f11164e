// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"gorm.io/gorm"
)

var AllModels []any

// User stores the password as an argon2id hash and the phone number as
// AES-GCM ciphertext; neither field ever holds plaintext at rest. Phone
// is nil when the user registered without one.
type User struct {
	ID             uint    `gorm:"primaryKey"`
	UserName       string  `gorm:"size:20;not null"`
	Email          string  `gorm:"not null;uniqueIndex"`
	Password       string  `gorm:"not null"`
	Phone          *string `gorm:"default:null"`
	ConfirmedEmail bool    `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func init() {
	AllModels = append(AllModels, &User{})
}
