package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Lohit-Behera/canva/internal/models"
)

// DefaultSessionPath returns ~/.canva/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".canva", "session.json"), nil
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sessionFile struct {
	Profile *models.Profile `json:"profile,omitempty"`
	Cookies []savedCookie   `json:"cookies,omitempty"`
}

// Session is the signed-in identity persisted between runs. A loaded
// session is treated as logged in until the server says otherwise.
type Session struct {
	path    string
	profile *models.Profile
	cookies []*http.Cookie
}

// LoadSession reads the session at path. A missing file is an empty
// session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	s.profile = f.Profile
	for _, c := range f.Cookies {
		s.cookies = append(s.cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return s, nil
}

func (s *Session) LoggedIn() bool { return s.profile != nil }

func (s *Session) Profile() *models.Profile { return s.profile }

func (s *Session) Cookies() []*http.Cookie { return s.cookies }

// Update replaces the profile (when non-nil) and cookies and writes the
// session to disk.
func (s *Session) Update(profile *models.Profile, cookies []*http.Cookie) error {
	if profile != nil {
		s.profile = profile
	}
	s.cookies = cookies
	return s.save()
}

// Clear forgets the session and removes the file.
func (s *Session) Clear() error {
	s.profile, s.cookies = nil, nil
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Session) save() error {
	f := sessionFile{Profile: s.profile}
	for _, c := range s.cookies {
		f.Cookies = append(f.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}
