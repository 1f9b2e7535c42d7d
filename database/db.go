// Package database manages the sqlite database: connection setup, schema
// migration, and first-start seeding of roles and the default admin account.
package database

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path"
	"strings"

	"quill/config"
	"quill/database/model"
	"quill/util/crypto"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Role{},
		&model.Post{},
		&model.Comment{},
		&model.Setting{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// seedRoles inserts the built-in role catalog once. Existing rows are left
// untouched so operator edits to flags survive restarts.
func seedRoles() error {
	roles := []model.Role{
		{
			Name:             model.RoleAdministrator,
			Description:      "Full control over posts and comments",
			CanCreatePost:    true,
			CanEditPost:      true,
			CanDeletePost:    true,
			CanViewComment:   true,
			CanPostComment:   true,
			CanDeleteComment: true,
		},
		{
			Name:           model.RoleEditor,
			Description:    "Writes and maintains posts",
			CanCreatePost:  true,
			CanEditPost:    true,
			CanDeletePost:  true,
			CanViewComment: true,
			CanPostComment: true,
		},
		{
			Name:           model.RoleStandardUser,
			Description:    "Reads posts and comments",
			CanViewComment: true,
			CanPostComment: true,
		},
	}
	for _, role := range roles {
		var count int64
		if err := db.Model(model.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedAdminUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}

	hash, err := crypto.HashPasswordAsBcrypt(defaultAdminPassword)
	if err != nil {
		return err
	}
	user := &model.User{
		Email:        defaultAdminEmail,
		Username:     defaultAdminUsername,
		PasswordHash: hash,
		Role:         model.RoleAdministrator,
	}
	log.Printf("seeding default administrator %q, change its password after first login", defaultAdminEmail)
	return db.Create(user).Error
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	_, err = sqlDB.Exec("PRAGMA cache_size = -64000;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA temp_store = MEMORY;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := seedRoles(); err != nil {
		return err
	}
	if err := seedAdminUser(); err != nil {
		return err
	}

	return nil
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err came from a unique-index conflict.
// The sqlite driver does not always translate to gorm.ErrDuplicatedKey, so
// the raw constraint message is checked as well.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
