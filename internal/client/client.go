// Package client is the state layer of the command-line front end: a typed
// API client, per-operation state and the persisted session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Lohit-Behera/canva/internal/models"
)

// APIError carries the server's status and message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// Client calls the REST API. Auth cookies are kept in its jar.
type Client struct {
	base *url.URL
	hc   *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api/v1".
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: u, hc: &http.Client{Jar: jar, Timeout: 2 * time.Minute}}, nil
}

// Cookies returns the auth cookies currently held for the API.
func (c *Client) Cookies() []*http.Cookie {
	return c.hc.Jar.Cookies(c.base)
}

// SetCookies restores previously saved cookies. They are scoped to "/"
// like the ones the server sets.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	scoped := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		cp := *ck
		if cp.Path == "" {
			cp.Path = "/"
		}
		scoped = append(scoped, &cp)
	}
	c.hc.Jar.SetCookies(c.base, scoped)
}

// RegisterInput is a sign-up request with the path of the avatar image.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AvatarPath      string
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	body, ctype, err := multipartBody(map[string]string{
		"name":            in.Name,
		"email":           in.Email,
		"password":        in.Password,
		"confirmPassword": in.ConfirmPassword,
	}, "avatar", in.AvatarPath)
	if err != nil {
		return "", err
	}
	return c.do(ctx, http.MethodPost, "/users/register", body, ctype, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.Profile, string, error) {
	var p models.Profile
	msg, err := c.doJSON(ctx, http.MethodPost, "/users/login", models.LoginRequest{Email: email, Password: password}, &p)
	if err != nil {
		return nil, "", err
	}
	return &p, msg, nil
}

// GoogleAuth signs in with an authorization code from Google's consent
// screen.
func (c *Client) GoogleAuth(ctx context.Context, code string) (*models.Profile, string, error) {
	var p models.Profile
	msg, err := c.doJSON(ctx, http.MethodPost, "/users/auth/google", models.GoogleAuthRequest{Token: code}, &p)
	if err != nil {
		return nil, "", err
	}
	return &p, msg, nil
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/users/logout", nil, "", nil)
}

func (c *Client) Details(ctx context.Context) (*models.UserDetails, error) {
	var d models.UserDetails
	if _, err := c.do(ctx, http.MethodGet, "/users/details", nil, "", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Activity(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	path := "/users/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	events := []models.AuthEvent{}
	if _, err := c.do(ctx, http.MethodGet, path, nil, "", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FormInput is a form submission with the path of the thumbnail image.
type FormInput struct {
	FirstName     string
	LastName      string
	ThumbnailPath string
}

// CreateForm returns the id of the new form.
func (c *Client) CreateForm(ctx context.Context, in FormInput) (string, error) {
	body, ctype, err := multipartBody(map[string]string{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
	}, "thumbnail", in.ThumbnailPath)
	if err != nil {
		return "", err
	}
	var id string
	if _, err := c.do(ctx, http.MethodPost, "/forms/create", body, ctype, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) GetForm(ctx context.Context, id string) (*models.FormView, error) {
	var v models.FormView
	if _, err := c.do(ctx, http.MethodGet, "/forms/get/"+url.PathEscape(id), nil, "", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ListForms(ctx context.Context) ([]models.FormView, error) {
	views := []models.FormView{}
	if _, err := c.do(ctx, http.MethodGet, "/forms/all", nil, "", &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) DeleteForm(ctx context.Context, id string) (string, error) {
	return c.do(ctx, http.MethodDelete, "/forms/delete/"+url.PathEscape(id), nil, "", nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out)
}

// do sends a request and unwraps the response envelope into out. It
// returns the server's message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return "", &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return "", fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return env.Message, nil
}

func multipartBody(fields map[string]string, fileField, path string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", fileField, err)
		}
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filepath.Base(path)))
		hdr.Set("Content-Type", imageType(path))
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
