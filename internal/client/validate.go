package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/models"
)

const (
	MaxImageBytes  = 3 << 20
	MinFormNameLen = 2
	MaxFormNameLen = 20
)

// ValidateImage checks that path is a jpeg or png of at most 3 MiB.
func ValidateImage(path string) error {
	if path == "" {
		return apperr.Validation("Please select an image.")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return apperr.Validation("Only .jpg, .jpeg and .png files are allowed.")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return apperr.Validation(fmt.Sprintf("Cannot read %s.", filepath.Base(path)))
	}
	if fi.Size() > MaxImageBytes {
		return apperr.Validation("Max image size is 3MB.")
	}
	return nil
}

// ValidateRegister runs the same checks as the server plus the avatar
// file checks.
func ValidateRegister(in RegisterInput) error {
	if _, err := models.NewRegistration(in.Name, in.Email, in.Password, in.ConfirmPassword); err != nil {
		return err
	}
	return ValidateImage(in.AvatarPath)
}

// ValidateForm enforces 2..20 character names and the thumbnail checks.
func ValidateForm(in FormInput) error {
	for _, f := range []struct{ label, v string }{
		{"First name", in.FirstName},
		{"Last name", in.LastName},
	} {
		n := utf8.RuneCountInString(strings.TrimSpace(f.v))
		if n < MinFormNameLen {
			return apperr.Validation(fmt.Sprintf("%s must be at least %d characters.", f.label, MinFormNameLen))
		}
		if n > MaxFormNameLen {
			return apperr.Validation(fmt.Sprintf("%s must be at most %d characters.", f.label, MaxFormNameLen))
		}
	}
	return ValidateImage(in.ThumbnailPath)
}
