package service

import (
	"os"

	"quill/database"
	"quill/logger"

	"github.com/op/go-logging"
)

func setup() {
	logger.InitLogger(logging.ERROR)
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}
