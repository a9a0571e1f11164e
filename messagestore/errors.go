// SPDX-License-Identifier: GPL-3.0-only

package messagestore

import "errors"

var (
	ErrNotFound         = errors.New("message not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrNotImplemented   = errors.New("message deletion is not implemented")
)
