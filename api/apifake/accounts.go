package apifake

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-taskmaster/tasks"
)

type account struct {
	master       tasks.Master
	passwordHash string
	tasks        map[int64]*tasks.Task
}

func (a *account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
}

func (a *account) setPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	a.passwordHash = string(hash)
	return nil
}

// passwordProblem mirrors the service's rules: at least 8 characters
// with upper case, lower case and a digit. It returns "" for an acceptable password.
func passwordProblem(password string) string {
	if len(password) < 8 {
		return "This password is too short. It must contain at least 8 characters."
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	switch {
	case !hasUpper:
		return "The password must contain at least one uppercase letter."
	case !hasLower:
		return "The password must contain at least one lowercase letter."
	case !hasNumber:
		return "The password must contain at least one number."
	}
	return ""
}
