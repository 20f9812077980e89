package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ocna/restaurant-pos/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Authenticator struct {
	db *gorm.DB
}

func NewAuthenticator(db *gorm.DB) *Authenticator {
	return &Authenticator{db: db}
}

// Authenticate checks a username and password. ok is false for an unknown
// user or a wrong password; err is only set when the lookup itself fails.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, nil
	}

	var user models.User
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, storageErr("load user", err)
	}

	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("compare password", err)
	}
	return &user, true, nil
}
