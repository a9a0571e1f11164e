// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestMessageBeforeCreateAssignsMID(t *testing.T) {
	message := &Message{Content: "hello", SenderID: 1, ReceiverID: 2}

	if err := message.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if message.MID == uuid.Nil {
		t.Error("BeforeCreate should assign a mid")
	}

	other := &Message{Content: "world", SenderID: 1, ReceiverID: 2}
	if err := other.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if message.MID == other.MID {
		t.Error("Each message should get a unique mid")
	}
}

func TestMessageBeforeCreateKeepsExistingMID(t *testing.T) {
	existing := uuid.New()
	message := &Message{MID: existing, Content: "hello", SenderID: 1, ReceiverID: 2}

	if err := message.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate failed: %v", err)
	}
	if message.MID != existing {
		t.Errorf("Expected mid %s to be preserved, got %s", existing, message.MID)
	}
}

func TestAllModelsRegistry(t *testing.T) {
	if len(AllModels) != 2 {
		t.Fatalf("Expected 2 registered models, got %d", len(AllModels))
	}

	var hasUser, hasMessage bool
	for _, m := range AllModels {
		switch m.(type) {
		case *User:
			hasUser = true
		case *Message:
			hasMessage = true
		}
	}
	if !hasUser || !hasMessage {
		t.Error("User and Message should both be registered")
	}
}
