// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a directed note from sender to receiver. The sender is a
// weak reference stored exactly as the client supplied it, so no
// foreign key is emitted for it; only the receiver is backed by a
// constraint, mirroring the application-level existence check.
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	MID        uuid.UUID `gorm:"type:uuid;not null"`
	Content    string    `gorm:"size:1000;not null"`
	SenderID   uint      `gorm:"not null;index"`
	Sender     User      `gorm:"constraint:-"`
	ReceiverID uint      `gorm:"not null;index"`
	Receiver   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (message *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if message.MID == uuid.Nil {
		message.MID = uuid.New()
	}
	return
}

func init() {
	AllModels = append(AllModels, &Message{})
}
