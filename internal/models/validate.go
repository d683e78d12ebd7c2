package models

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Lohit-Behera/canva/internal/apperr"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 50
	MinNameLen     = 3
	MaxNameLen     = 30
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const msgRequired = "Please provide all required fields."

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// Registration is a validated sign-up request.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// NewRegistration checks the sign-up fields in the order the API reports
// them: presence, password length, confirmation, name length, email format.
func NewRegistration(name, email, password, confirm string) (Registration, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" || confirm == "" {
		return Registration{}, apperr.Validation(msgRequired)
	}
	pn := utf8.RuneCountInString(password)
	if pn < MinPasswordLen {
		return Registration{}, apperr.Validation("Password must be at least 8 characters long.")
	}
	if pn > MaxPasswordLen {
		return Registration{}, apperr.Validation("Password must be at most 50 characters long.")
	}
	if password != confirm {
		return Registration{}, apperr.Validation("Passwords do not match.")
	}
	n := utf8.RuneCountInString(name)
	if n < MinNameLen {
		return Registration{}, apperr.Validation("Name must be at least 3 characters long.")
	}
	if n > MaxNameLen {
		return Registration{}, apperr.Validation("Name must be at most 30 characters long.")
	}
	if !ValidEmail(email) {
		return Registration{}, apperr.Validation("Please provide a valid email address.")
	}
	return Registration{Name: name, Email: email, Password: password}, nil
}

// Credentials is a validated login request.
type Credentials struct {
	Email    string
	Password string
}

func NewCredentials(email, password string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Credentials{}, apperr.Validation(msgRequired)
	}
	return Credentials{Email: email, Password: password}, nil
}

// FormInput is a validated form submission (without the thumbnail).
type FormInput struct {
	FirstName string
	LastName  string
}

func NewFormInput(firstName, lastName string) (FormInput, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return FormInput{}, apperr.Validation(msgRequired)
	}
	return FormInput{FirstName: firstName, LastName: lastName}, nil
}
