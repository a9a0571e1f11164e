// SPDX-License-Identifier: GPL-3.0-only

package migrations

import (
	"fmt"
	"saraha-server/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// Messages created before the public mid column existed get
			// one assigned here.
			ID: "001_backfill_message_mids",
			Migrate: func(tx *gorm.DB) error {
				var messages []models.Message
				if err := tx.Where("mid IS NULL OR mid = ?", uuid.Nil).
					Find(&messages).Error; err != nil {
					return fmt.Errorf("failed to fetch messages: %w", err)
				}
				for i := range messages {
					if err := tx.Model(&messages[i]).
						Update("mid", uuid.New()).Error; err != nil {
						return fmt.Errorf("failed to backfill message %d: %w", messages[i].ID, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error { return nil },
		},
	}
}
