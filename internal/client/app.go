package client

import (
	"context"
	"errors"

	"github.com/Lohit-Behera/canva/internal/models"
)

// MsgRefreshExpired is the server message that means the session is gone.
const MsgRefreshExpired = "Refresh token expired"

// ErrReauthRequired is returned after the session was dropped because the
// server refused the refresh token. The user has to sign in again.
var ErrReauthRequired = errors.New("session expired, please sign in again")

// App ties the API client to the persisted session and tracks each
// operation separately.
type App struct {
	client  *Client
	session *Session

	RegisterOp   Op[string]
	LoginOp      Op[models.Profile]
	GoogleOp     Op[models.Profile]
	LogoutOp     Op[string]
	DetailsOp    Op[models.UserDetails]
	ActivityOp   Op[[]models.AuthEvent]
	CreateFormOp Op[string]
	GetFormOp    Op[models.FormView]
	ListFormsOp  Op[[]models.FormView]
	DeleteFormOp Op[string]
}

// NewApp restores the session's cookies into the client.
func NewApp(c *Client, s *Session) *App {
	c.SetCookies(s.Cookies())
	return &App{client: c, session: s}
}

func (a *App) Session() *Session { return a.session }

func (a *App) Register(ctx context.Context, in RegisterInput) (string, error) {
	return a.RegisterOp.Run(func() (string, error) {
		if err := ValidateRegister(in); err != nil {
			return "", err
		}
		return a.client.Register(ctx, in)
	})
}

func (a *App) Login(ctx context.Context, email, password string) (models.Profile, error) {
	return a.LoginOp.Run(func() (models.Profile, error) {
		creds, err := models.NewCredentials(email, password)
		if err != nil {
			return models.Profile{}, err
		}
		p, _, err := a.client.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			return models.Profile{}, err
		}
		return *p, a.session.Update(p, a.client.Cookies())
	})
}

// GoogleAuth returns the server message, which tells sign-up from sign-in.
func (a *App) GoogleAuth(ctx context.Context, code string) (models.Profile, string, error) {
	var msg string
	p, err := a.GoogleOp.Run(func() (models.Profile, error) {
		p, m, err := a.client.GoogleAuth(ctx, code)
		if err != nil {
			return models.Profile{}, err
		}
		msg = m
		return *p, a.session.Update(p, a.client.Cookies())
	})
	return p, msg, err
}

// Logout clears the local session once the server confirms.
func (a *App) Logout(ctx context.Context) (string, error) {
	return a.LogoutOp.Run(func() (string, error) {
		msg, err := a.client.Logout(ctx)
		if err != nil {
			return "", a.checkAuth(err)
		}
		return msg, a.session.Clear()
	})
}

// Details fetches the profile. A refused refresh token forces re-sign-in.
func (a *App) Details(ctx context.Context) (models.UserDetails, error) {
	return a.DetailsOp.Run(func() (models.UserDetails, error) {
		d, err := a.client.Details(ctx)
		if err != nil {
			return models.UserDetails{}, a.checkAuth(err)
		}
		return *d, a.saveCookies()
	})
}

func (a *App) Activity(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	return a.ActivityOp.Run(func() ([]models.AuthEvent, error) {
		events, err := a.client.Activity(ctx, limit)
		if err != nil {
			return nil, a.checkAuth(err)
		}
		return events, a.saveCookies()
	})
}

func (a *App) CreateForm(ctx context.Context, in FormInput) (string, error) {
	return a.CreateFormOp.Run(func() (string, error) {
		if err := ValidateForm(in); err != nil {
			return "", err
		}
		id, err := a.client.CreateForm(ctx, in)
		if err != nil {
			return "", a.checkAuth(err)
		}
		return id, a.saveCookies()
	})
}

func (a *App) GetForm(ctx context.Context, id string) (models.FormView, error) {
	return a.GetFormOp.Run(func() (models.FormView, error) {
		v, err := a.client.GetForm(ctx, id)
		if err != nil {
			return models.FormView{}, a.checkAuth(err)
		}
		return *v, a.saveCookies()
	})
}

func (a *App) ListForms(ctx context.Context) ([]models.FormView, error) {
	return a.ListFormsOp.Run(func() ([]models.FormView, error) {
		views, err := a.client.ListForms(ctx)
		if err != nil {
			return nil, a.checkAuth(err)
		}
		return views, a.saveCookies()
	})
}

func (a *App) DeleteForm(ctx context.Context, id string) (string, error) {
	return a.DeleteFormOp.Run(func() (string, error) {
		msg, err := a.client.DeleteForm(ctx, id)
		if err != nil {
			return "", a.checkAuth(err)
		}
		return msg, a.saveCookies()
	})
}

// ReSignIn drops the local session. The server has already expired the
// cookies in the jar.
func (a *App) ReSignIn() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	return ErrReauthRequired
}

func (a *App) checkAuth(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == 401 && apiErr.Message == MsgRefreshExpired {
		return a.ReSignIn()
	}
	return err
}

// saveCookies persists tokens the server may have rotated.
func (a *App) saveCookies() error {
	if !a.session.LoggedIn() {
		return nil
	}
	return a.session.Update(nil, a.client.Cookies())
}
