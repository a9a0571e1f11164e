// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"fmt"
	"time"

	"saraha-server/commons"
)

const maxDeliveryAttempts = 3

func DispatchNotification(_type NotificationTypes, provider NotificationProviders, data NotificationData) error {
	commons.Logger.Debugf("Dispatching notification:\n- type=%s\n- provider=%s", _type, provider)

	var err error
	switch _type {
	case Email:
		mockEmail := commons.GetEnv("MOCK_EMAIL_NOTIFICATIONS")
		if mockEmail == "true" {
			commons.Logger.Debug("Mock email notifications enabled, using mock provider")
			provider = Mock
		}
		err = dispatchEmail(provider, data)
	default:
		err = fmt.Errorf("unsupported notification type: %s", _type)
	}

	if err != nil {
		commons.Logger.Errorf("Failed to dispatch notification:\n%v", err)
		return err
	}

	commons.Logger.Infof("Notification dispatched successfully:\n- type=%s\n- provider=%s", _type, provider)
	return nil
}

// dispatchEmail retries transient SMTP failures a bounded number of
// times. Callers dispatch from a goroutine, so a dead mail server never
// blocks or rolls back the operation that triggered the email.
func dispatchEmail(provider NotificationProviders, data NotificationData) error {
	var err error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		switch provider {
		case SMTP:
			err = SMTPClient(data)
		case Mock:
			return MockEmailClient(data)
		default:
			return fmt.Errorf("unsupported email provider: %s", provider)
		}
		if err == nil {
			return nil
		}
		commons.Logger.Warnf("Email delivery attempt %d/%d failed: %v", attempt, maxDeliveryAttempts, err)
		if attempt < maxDeliveryAttempts {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return err
}
