// SPDX-License-Identifier: GPL-3.0-only

package messagestore

import (
	"context"
	"errors"
	"fmt"

	"saraha-server/models"

	"gorm.io/gorm"
)

type ListFlag string

const (
	FlagInbox  ListFlag = "inbox"
	FlagOutbox ListFlag = "outbox"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{DB: conn}
}

// Create persists a sender->receiver message. Only the receiver is
// checked against the user table; the sender is accepted as-is, matching
// the original contract.
func (st *Store) Create(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	var receiver models.User
	if err := st.DB.WithContext(ctx).First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("failed to check receiver: %w", err)
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := st.DB.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &message, nil
}

// List returns the inbox (filter by receiver) or outbox (filter by
// sender) for an id. Unknown flags are rejected by request validation
// before this is reached.
func (st *Store) List(ctx context.Context, flag ListFlag, senderID, receiverID uint) ([]models.Message, error) {
	query := st.DB.WithContext(ctx)
	switch flag {
	case FlagInbox:
		query = query.Where("receiver_id = ?", receiverID)
	case FlagOutbox:
		query = query.Where("sender_id = ?", senderID)
	default:
		return nil, fmt.Errorf("unknown message flag: %q", flag)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Get loads a message with both user records attached so the caller can
// project them down to userName/email.
func (st *Store) Get(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := st.DB.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	return &message, nil
}

// Delete is declared by the API surface but has never been implemented;
// it reports that honestly instead of fabricating success.
func (st *Store) Delete(ctx context.Context, id uint) error {
	return ErrNotImplemented
}
