// Package auth checks the credentials of the district administrator configured in core.AuthConfig.
package auth

import (
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kipimo/core"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("no admin password configured")
)

type Admin struct {
	Email        string
	PasswordHash []byte
}

// AdminFrom returns the administrator configured in `conf`.
func AdminFrom(conf *core.Config) Admin {
	return Admin{
		Email:        conf.Auth.AdminEmail,
		PasswordHash: []byte(conf.Auth.AdminPasswordHash),
	}
}

// HashPassword returns the bcrypt hash to store in AUTH_ADMINPASSWORDHASH.
func HashPassword(pwd string) (string, error) {
	if pwd == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

func (a Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Authenticate checks `email` and `pwd` against the configured administrator.
func Authenticate(conf *core.Config, email, pwd string) (Admin, error) {
	admin := AdminFrom(conf)
	if len(admin.PasswordHash) == 0 {
		return Admin{}, ErrNotConfigured
	}
	email = core.CleanString(email, true /* lower */)
	if subtle.ConstantTimeCompare([]byte(email), []byte(admin.Email)) != 1 {
		return Admin{}, ErrInvalidCredentials
	}
	if err := admin.CheckPassword(pwd); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}
