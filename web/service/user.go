package service

import (
	"quill/database"
	"quill/database/model"
	"quill/logger"
	"quill/util/crypto"

	"github.com/xlzd/gotp"
)

// UserService implements registration and credential checks against the
// user table.
type UserService struct {
	settingService SettingService
}

// Register creates a new account with the default role and returns it. The
// existence pre-check only shapes the error message; the unique indexes on
// email and username are the source of truth, so a concurrent duplicate
// insert still comes back as ErrDuplicateIdentity.
func (s *UserService) Register(email, username, password string) (*model.User, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).
		Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateIdentity
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleStandardUser,
	}
	if err := db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}
	return user, nil
}

// Authenticate looks the account up by email and verifies the password.
// Every failure path returns ErrInvalidCredentials so callers cannot tell
// an unknown email from a wrong password.
func (s *UserService) Authenticate(email, password, twoFactorCode string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if database.IsNotFound(err) {
		// Burn a comparison anyway so the miss costs as much as a mismatch.
		crypto.CheckPasswordHash(dummyHash, password)
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, ErrInvalidCredentials
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		logger.Warning("check two factor err:", err)
		return nil, ErrInvalidCredentials
	}
	if twoFactorEnable {
		twoFactorToken, err := s.settingService.GetTwoFactorToken()
		if err != nil {
			logger.Warning("check two factor token err:", err)
			return nil, ErrInvalidCredentials
		}
		if gotp.NewDefaultTOTP(twoFactorToken).Now() != twoFactorCode {
			return nil, ErrInvalidCredentials
		}
	}

	return user, nil
}

// dummyHash keeps the unknown-email path as slow as a real comparison.
var dummyHash = func() string {
	h, _ := crypto.HashPasswordAsBcrypt("quill-timing-pad")
	return h
}()

// GetUser returns the user with the given id.
func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, matched exactly.
func (s *UserService) GetUserByEmail(email string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("email = ?", email).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// AllUsers lists every account, ordered by id.
func (s *UserService) AllUsers() ([]model.User, error) {
	db := database.GetDB()

	users := make([]model.User, 0)
	err := db.Model(model.User{}).Order("id").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole reassigns the account's role. The target role must exist.
func (s *UserService) SetRole(email, roleName string) error {
	db := database.GetDB()

	var count int64
	err := db.Model(model.Role{}).Where("name = ?", roleName).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUnknownRole
	}

	result := db.Model(model.User{}).
		Where("email = ?", email).
		Update("role", roleName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword rehashes and stores a new password for the account.
func (s *UserService) UpdatePassword(id int, password string) error {
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	return db.Model(model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).
		Error
}

// CountUsers returns the total number of accounts.
func (s *UserService) CountUsers() (int64, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Count(&count).Error
	return count, err
}
