// SPDX-License-Identifier: GPL-3.0-only

package accounts

import "errors"

// Sentinel errors returned by the account lifecycle. Handlers map them
// to transport status codes at the boundary; nothing below the handler
// layer knows about HTTP.
var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)
