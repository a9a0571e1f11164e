// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error, handler-raised or framework-raised,
// as the {Error, status} body clients depend on.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	} else {
		c.Logger().Error("Unhandled error:", err)
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			c.Logger().Error("Failed to write error response:", err)
		}
		return
	}

	if err := c.JSON(code, ErrorResponse{Error: message, Status: code}); err != nil {
		c.Logger().Error("Failed to write error response:", err)
	}
}

// NotFoundHandler answers every route that nothing else matched.
func NotFoundHandler(c echo.Context) error {
	return &echo.HTTPError{
		Code:    http.StatusNotFound,
		Message: "Route not found",
	}
}
