// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"saraha-server/events"
	"saraha-server/messagestore"

	"github.com/labstack/echo/v4"
)

// CreateMessageHandler stores a new sender->receiver message
//
//	@Summary		Create message
//	@Description	Persists a message after checking the receiver exists, then fans the event out to the broker.
//	@Tags			Messages
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateMessageRequest	true	"Message details"
//	@Success		201		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/messages [post]
func CreateMessageHandler(c echo.Context) error {
	logger := c.Logger()

	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind create message request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	message, err := messageStore.Create(c.Request().Context(), req.Sender, req.Receiver, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, messagestore.ErrReceiverNotFound):
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "Receiver not found",
			}
		default:
			logger.Error("Failed to create message:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to create message",
			}
		}
	}

	// Fan-out must not delay or fail the response; the row is already
	// committed.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := events.Default.PublishMessageCreated(ctx, message); err != nil {
			logger.Warnf("Failed to publish message event: %v", err)
		}
	}()

	logger.Infof("Message created: %s", message.MID)
	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "Message created successfully",
		Data:    newMessageDetails(message),
	})
}

// GetAllMessagesHandler lists a user's inbox or outbox
//
//	@Summary		List messages
//	@Description	Returns the inbox (flag=inbox, filtered by receiver) or outbox (flag=outbox, filtered by sender).
//	@Tags			Messages
//	@Produce		json
//	@Param			flag		query		string	true	"inbox or outbox"
//	@Param			sender		query		int		false	"Sender user id, used with flag=outbox"
//	@Param			receiver	query		int		false	"Receiver user id, used with flag=inbox"
//	@Success		200			{object}	MessageListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/messages/allMessages [get]
func GetAllMessagesHandler(c echo.Context) error {
	logger := c.Logger()

	var req ListMessagesRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind list messages request:", err)
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	messages, err := messageStore.List(c.Request().Context(), messagestore.ListFlag(req.Flag), req.Sender, req.Receiver)
	if err != nil {
		logger.Error("Failed to list messages:", err)
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list messages",
		}
	}

	details := make([]MessageDetails, 0, len(messages))
	for i := range messages {
		details = append(details, newMessageDetails(&messages[i]))
	}

	var label string
	if req.Flag == string(messagestore.FlagInbox) {
		label = "Inbox messages for " + strconv.FormatUint(uint64(req.Receiver), 10)
	} else {
		label = "Outbox messages for " + strconv.FormatUint(uint64(req.Sender), 10)
	}

	return c.JSON(http.StatusOK, MessageListResponse{
		Message: label,
		Data:    details,
	})
}

// GetMessageHandler returns one message with its participants
//
//	@Summary		Get message
//	@Description	Returns a single message with sender and receiver projected to userName and email.
//	@Tags			Messages
//	@Produce		json
//	@Param			messageID	path		int	true	"Message ID"
//	@Success		200			{object}	MessageResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/messages/{messageID} [get]
func GetMessageHandler(c echo.Context) error {
	logger := c.Logger()

	messageID, err := strconv.ParseUint(c.Param("messageID"), 10, 32)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Message ID validation",
		}
	}

	message, err := messageStore.Get(c.Request().Context(), uint(messageID))
	if err != nil {
		switch {
		case errors.Is(err, messagestore.ErrNotFound):
			return &echo.HTTPError{
				Code:    http.StatusNotFound,
				Message: "Message not found",
			}
		default:
			logger.Error("Failed to get message:", err)
			return &echo.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Failed to get message",
			}
		}
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "Get single message",
		Data: PopulatedMessageDetails{
			ID:  message.ID,
			MID: message.MID.String(),
			Sender: UserRef{
				UserName: message.Sender.UserName,
				Email:    message.Sender.Email,
			},
			Receiver: UserRef{
				UserName: message.Receiver.UserName,
				Email:    message.Receiver.Email,
			},
			Content:   message.Content,
			CreatedAt: message.CreatedAt.Format(time.RFC3339),
			UpdatedAt: message.UpdatedAt.Format(time.RFC3339),
		},
	})
}

// DeleteMessageHandler reports the unimplemented delete operation
//
//	@Summary		Delete message
//	@Description	Declared by the API surface but not implemented; always answers 501.
//	@Tags			Messages
//	@Produce		json
//	@Param			messageID	path		int	true	"Message ID"
//	@Failure		501			{object}	ErrorResponse
//	@Router			/messages/{messageID} [delete]
func DeleteMessageHandler(c echo.Context) error {
	messageID, err := strconv.ParseUint(c.Param("messageID"), 10, 32)
	if err != nil {
		return &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Message ID validation",
		}
	}

	if err := messageStore.Delete(c.Request().Context(), uint(messageID)); err != nil {
		if errors.Is(err, messagestore.ErrNotImplemented) {
			return &echo.HTTPError{
				Code:    http.StatusNotImplemented,
				Message: "Message deletion is not implemented",
			}
		}
		return &echo.HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to delete message",
		}
	}
	return c.NoContent(http.StatusNoContent)
}
