// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"saraha-server/accounts"
	"saraha-server/crypto"
	"saraha-server/db"
	"saraha-server/messagestore"
	"saraha-server/middlewares"
	"saraha-server/tokens"
)

var (
	accountService *accounts.Service
	messageStore   *messagestore.Store
)

// InitServices builds the shared service instances. Key material and
// hashing parameters are read from the environment here, once, and the
// handlers hold the resulting structs for the life of the process. Call
// after the env file is loaded and the database connection exists.
func InitServices() {
	accountService = accounts.NewService(db.Conn, crypto.NewCrypto(), tokens.NewTokenService())
	messageStore = messagestore.NewStore(db.Conn)
	middlewares.Init()
}
