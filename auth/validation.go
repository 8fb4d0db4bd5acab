package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-dashboard/users"
)

// Validator holds the input rules shared by the sign-in and sign-up forms
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	// Basic email format validation
	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") || strings.ContainsAny(email, " \t\r\n") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateSignUp checks a registration request before anything is stored
func (v *Validator) ValidateSignUp(in SignUpInput) error {
	if err := v.ValidateEmail(in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if in.Password != in.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	return users.ValidatePasswordStrength(in.Password)
}

// SafeCallbackURL returns callback when it is a same-site relative path and
// fallback otherwise. Absolute and protocol-relative URLs are never followed.
func SafeCallbackURL(callback, fallback string) string {
	callback = strings.TrimSpace(callback)
	if callback == "" || !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") || strings.Contains(callback, "\\") {
		return fallback
	}
	u, err := url.Parse(callback)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return callback
}
