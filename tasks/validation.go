package tasks

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

func (f FieldErrors) Unwrap() error {
	return errors.ErrInvalidInput
}

// First returns a message for display when only one can be shown.
func (f FieldErrors) First() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return f[keys[0]]
}

func (f FieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func ValidateNewTask(t NewTask) error {
	fields := FieldErrors{}
	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = "Title is required"
	}
	if !t.Priority.Valid() {
		fields["priority"] = fmt.Sprintf("Unknown priority %q", t.Priority)
	}
	if !t.Status.Valid() {
		fields["status"] = fmt.Sprintf("Unknown status %q", t.Status)
	}
	return fields.err()
}

func ValidateCredentials(email, password string) error {
	fields := FieldErrors{}
	validateEmail(fields, email)
	if password == "" {
		fields["password"] = "Password is required"
	}
	return fields.err()
}

func ValidateRegistration(email, password, confirm string) error {
	fields := FieldErrors{}
	validateEmail(fields, email)
	if password == "" {
		fields["password"] = "Password is required"
	} else if password != confirm {
		fields["password_confirm"] = "Passwords do not match"
	}
	return fields.err()
}

func ValidateEmail(email string) error {
	fields := FieldErrors{}
	validateEmail(fields, email)
	return fields.err()
}

func ValidatePasswordReset(uid, token, password, confirm string) error {
	fields := FieldErrors{}
	if uid == "" || token == "" {
		fields["link"] = "Invalid reset link"
	}
	if password == "" {
		fields["new_password"] = "Password is required"
	} else if password != confirm {
		fields["new_password_confirm"] = "Passwords do not match"
	}
	return fields.err()
}

func validateEmail(fields FieldErrors, email string) {
	if strings.TrimSpace(email) == "" {
		fields["email"] = "Email is required"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Enter a valid email address"
	}
}
