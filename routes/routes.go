// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"saraha-server/handlers"
	"saraha-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	auth := e.Group("/auth")
	auth.POST("/register", handlers.RegisterHandler)
	auth.POST("/login", handlers.LoginHandler)
	auth.GET("/activate_account/:token", handlers.ActivateAccountHandler)

	users := e.Group("/users")
	users.GET("", handlers.GetAllUsersHandler)
	users.PATCH("/change-password", handlers.ChangePasswordHandler)
	users.PATCH("/update/:id", handlers.UpdateProfileHandler)
	users.POST("/upload", handlers.UploadFileHandler)
	users.GET("/:id", handlers.GetUserHandler, middlewares.VerifyAuthMiddleware)

	messages := e.Group("/messages")
	messages.POST("", handlers.CreateMessageHandler)
	messages.GET("/allMessages", handlers.GetAllMessagesHandler)
	messages.GET("/:messageID", handlers.GetMessageHandler)
	messages.DELETE("/:messageID", handlers.DeleteMessageHandler)

	e.RouteNotFound("/*", handlers.NotFoundHandler)
}
