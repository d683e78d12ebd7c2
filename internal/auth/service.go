package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/metrics"
	"github.com/Lohit-Behera/canva/internal/models"
	"github.com/Lohit-Behera/canva/internal/store"
)

// MsgRefreshExpired is returned when neither token can authenticate the
// request. Clients treat it as "sign in again".
const MsgRefreshExpired = "Refresh token expired"

const msgUnauthorized = "Unauthorized request"

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
}

// AuditLog records authentication events.
type AuditLog interface {
	RecordEvent(ctx context.Context, ev models.AuthEvent) error
	ListEvents(ctx context.Context, userID string, limit int) ([]models.AuthEvent, error)
}

// NopAudit is used when no audit database is configured.
type NopAudit struct{}

func (NopAudit) RecordEvent(context.Context, models.AuthEvent) error { return nil }
func (NopAudit) ListEvents(context.Context, string, int) ([]models.AuthEvent, error) {
	return []models.AuthEvent{}, nil
}

// Session is the outcome of a successful sign-in.
type Session struct {
	Profile models.Profile
	Tokens  *TokenPair
	Message string
}

// Service implements registration, sign-in and token handling.
type Service struct {
	users   UserStore
	media   media.Uploader
	tokens  *TokenIssuer
	revoker Revoker
	google  GoogleExchanger
	audit   AuditLog
	log     zerolog.Logger
}

func NewService(users UserStore, uploader media.Uploader, tokens *TokenIssuer, revoker Revoker, google GoogleExchanger, audit AuditLog) *Service {
	if audit == nil {
		audit = NopAudit{}
	}
	return &Service{
		users:   users,
		media:   uploader,
		tokens:  tokens,
		revoker: revoker,
		google:  google,
		audit:   audit,
		log:     logging.NewPackageLogger("auth"),
	}
}

// Register creates an account with an uploaded avatar.
func (s *Service) Register(ctx context.Context, reg models.Registration, avatar *media.File) error {
	_, err := s.users.GetUserByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return apperr.Conflict("User already exists.")
	case !errors.Is(err, store.ErrNotFound):
		return apperr.Internal("Something went wrong while creating user.", err)
	}

	if avatar == nil {
		return apperr.Validation("Please provide an avatar.")
	}
	hashed, err := HashPassword(reg.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return apperr.Validation("Password is too long.")
	}
	if err != nil {
		return apperr.Internal("Something went wrong while creating user.", err)
	}

	avatarURL, avatarKey := s.media.UploadFile(ctx, avatar)
	if avatarURL == "" {
		return apperr.Upstream("Avatar upload failed.", nil)
	}

	u := &models.User{Name: reg.Name, Email: reg.Email, Password: hashed, Avatar: avatarURL}
	if err := s.users.CreateUser(ctx, u); err != nil {
		s.media.DeleteFile(ctx, avatarKey)
		if errors.Is(err, store.ErrDuplicateEmail) {
			return apperr.Conflict("User already exists.")
		}
		return apperr.Internal("Something went wrong while creating user.", err)
	}

	s.record(ctx, u.ID.Hex(), u.Email, models.EventRegister)
	return nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, creds.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.record(ctx, "", creds.Email, models.EventLoginFailed)
		return nil, apperr.NotFound("Invalid credentials.")
	}
	if err != nil {
		return nil, apperr.Internal("Something went wrong while logging in.", err)
	}
	if !CheckPassword(u.Password, creds.Password) {
		s.record(ctx, u.ID.Hex(), u.Email, models.EventLoginFailed)
		return nil, apperr.Auth("Invalid credentials.")
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.record(ctx, u.ID.Hex(), u.Email, models.EventLogin)
	return &Session{Profile: u.Profile(), Tokens: pair, Message: "Login successful."}, nil
}

// Logout clears the stored refresh token and revokes the access token.
func (s *Service) Logout(ctx context.Context, id *Identity) error {
	if err := s.users.SetRefreshToken(ctx, id.UserID, nil); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Internal("Something went wrong while logging out.", err)
	}
	if id.Claims != nil && id.Claims.ExpiresAt != nil {
		if err := s.revoker.Revoke(ctx, id.Claims.ID, id.Claims.ExpiresAt.Time); err != nil {
			s.log.Warn().Err(err).Str(logging.USER_ID, id.UserID).Msg("revoke access token")
		}
	}
	s.record(ctx, id.UserID, "", models.EventLogout)
	return nil
}

// GoogleAuth signs in (or up) with a Google authorization code.
func (s *Service) GoogleAuth(ctx context.Context, code string) (*Session, error) {
	code = strings.TrimSpace(code)
	if code == "" || code == "undefined" {
		return nil, apperr.Validation("Token is required and must be a string")
	}

	p, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Upstream("Something went wrong while generating access token", err)
	}
	if p.Email == "" || p.Name == "" || p.Picture == "" {
		return nil, apperr.NotFound("Email, name, picture are not found")
	}
	email := strings.ToLower(p.Email)

	u, err := s.users.GetUserByEmail(ctx, email)
	var msg, kind string
	switch {
	case errors.Is(err, store.ErrNotFound):
		hashed, herr := HashPassword(randomPassword())
		if herr != nil {
			return nil, apperr.Internal("Something went wrong", herr)
		}
		u = &models.User{Name: p.Name, Email: email, Password: hashed, Avatar: p.Picture}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return nil, apperr.Internal("Something went wrong", err)
		}
		msg, kind = "Sign up successful with google", models.EventGoogleSignUp
	case err != nil:
		return nil, apperr.Internal("Something went wrong", err)
	default:
		if err := s.users.UpdateAvatar(ctx, u.ID.Hex(), p.Picture); err != nil {
			return nil, apperr.Internal("Something went wrong", err)
		}
		u.Avatar = p.Picture
		msg, kind = "Sign in successful with google", models.EventGoogleSignIn
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.record(ctx, u.ID.Hex(), u.Email, kind)
	return &Session{Profile: u.Profile(), Tokens: pair, Message: msg}, nil
}

// Details returns the user's own profile.
func (s *Service) Details(ctx context.Context, userID string) (*models.UserDetails, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, apperr.Internal("Something went wrong.", err)
	}
	d := u.Details()
	return &d, nil
}

// Activity lists the user's recent authentication events.
func (s *Service) Activity(ctx context.Context, userID string, limit int) ([]models.AuthEvent, error) {
	events, err := s.audit.ListEvents(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("Something went wrong.", err)
	}
	return events, nil
}

// Authenticate resolves the caller from the access token, or rotates the
// pair when only a valid refresh token matching the stored one is
// presented. The rotated pair is returned so the caller can set cookies.
func (s *Service) Authenticate(ctx context.Context, accessToken, refreshToken string) (*Identity, *TokenPair, error) {
	if accessToken != "" {
		if c, err := s.tokens.ParseAccess(accessToken); err == nil {
			revoked, rerr := s.revoker.IsRevoked(ctx, c.ID)
			if rerr != nil {
				// fail open on cache errors; the token is still signed and unexpired
				s.log.Warn().Err(rerr).Msg("revocation lookup")
			}
			if !revoked {
				return &Identity{UserID: c.UserID, Claims: c}, nil, nil
			}
		}
	}

	if refreshToken == "" {
		return nil, nil, apperr.Auth(msgUnauthorized)
	}
	rc, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, nil, apperr.Auth(MsgRefreshExpired)
	}
	u, err := s.users.GetUserByID(ctx, rc.UserID)
	if err != nil {
		return nil, nil, apperr.Auth(MsgRefreshExpired)
	}
	if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return nil, nil, apperr.Auth(MsgRefreshExpired)
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.tokens.ParseAccess(pair.Access)
	if err != nil {
		return nil, nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	s.record(ctx, u.ID.Hex(), u.Email, models.EventTokenRefresh)
	return &Identity{UserID: c.UserID, Claims: c}, pair, nil
}

func (s *Service) issue(ctx context.Context, u *models.User) (*TokenPair, error) {
	pair, err := s.tokens.Issue(u.ID.Hex(), u.Name)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID.Hex(), &pair.Refresh); err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	return pair, nil
}

func (s *Service) record(ctx context.Context, userID, email, kind string) {
	metrics.RecordAuth(kind)
	info := ClientInfoFrom(ctx)
	err := s.audit.RecordEvent(ctx, models.AuthEvent{
		UserID:    userID,
		Email:     email,
		Kind:      kind,
		IP:        info.IP,
		UserAgent: info.UserAgent,
	})
	if err != nil {
		s.log.Warn().Err(err).Str(logging.EVENT, kind).Msg("audit event dropped")
	}
}
