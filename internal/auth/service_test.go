package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/models"
)

var ctx = context.Background()

func registration(t *testing.T, email string) models.Registration {
	t.Helper()
	reg, err := models.NewRegistration("Ann Lee", email, "password123", "password123")
	require.NoError(t, err)
	return reg
}

func registerAndLogin(t *testing.T, h *harness) *Session {
	t.Helper()
	require.NoError(t, h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile()))
	sess, err := h.svc.Login(ctx, models.Credentials{Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)
	return sess
}

func TestRegister(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile()))

	u, err := h.users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.Name)
	assert.Equal(t, "http://media.test/bucket/me.png", u.Avatar)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, CheckPassword(u.Password, "password123"))
	assert.Equal(t, []string{models.EventRegister}, h.audit.kinds())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile()))

	err := h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Equal(t, 1, h.users.count())
	assert.Equal(t, 1, h.media.uploads)
}

func TestRegister_MissingAvatar(t *testing.T) {
	h := newHarness()

	err := h.svc.Register(ctx, registration(t, "ann@example.com"), nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Equal(t, "Please provide an avatar.", apperr.From(err).Message)
	assert.Zero(t, h.users.count())
}

func TestRegister_UploadFailure(t *testing.T) {
	h := newHarness()
	h.media.fail = true

	err := h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile())
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Zero(t, h.users.count())
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	h := newHarness()
	pw := strings.Repeat("é", 40)
	reg, err := models.NewRegistration("Ann Lee", "ann@example.com", pw, pw)
	require.NoError(t, err)

	err = h.svc.Register(ctx, reg, avatarFile())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, h.media.uploads)
	assert.Zero(t, h.users.count())
}

func TestLogin(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	assert.Equal(t, "Ann Lee", sess.Profile.Name)
	assert.Equal(t, "ann@example.com", sess.Profile.Email)
	require.NotNil(t, sess.Tokens)

	u, err := h.users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.RefreshToken)
	assert.Equal(t, sess.Tokens.Refresh, *u.RefreshToken)
	assert.Equal(t, u.ID.Hex(), sess.Profile.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.svc.Register(ctx, registration(t, "ann@example.com"), avatarFile()))

	_, err := h.svc.Login(ctx, models.Credentials{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, 404, apperr.HTTPStatus(err))

	_, err = h.svc.Login(ctx, models.Credentials{Email: "ann@example.com", Password: "wrong-password"})
	assert.Equal(t, 401, apperr.HTTPStatus(err))
	assert.Equal(t, "Invalid credentials.", apperr.From(err).Message)

	assert.Equal(t, []string{models.EventRegister, models.EventLoginFailed, models.EventLoginFailed}, h.audit.kinds())
}

func TestAuthenticate_AccessToken(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	id, rotated, err := h.svc.Authenticate(ctx, sess.Tokens.Access, "")
	require.NoError(t, err)
	assert.Nil(t, rotated)
	assert.Equal(t, sess.Profile.ID, id.UserID)
}

func TestAuthenticate_RotatesWithRefreshToken(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	id, rotated, err := h.svc.Authenticate(ctx, "expired-or-missing", sess.Tokens.Refresh)
	require.NoError(t, err)
	require.NotNil(t, rotated)
	assert.Equal(t, sess.Profile.ID, id.UserID)
	assert.NotEqual(t, sess.Tokens.Refresh, rotated.Refresh)

	u, err := h.users.GetUserByID(ctx, sess.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, rotated.Refresh, *u.RefreshToken)

	// the old refresh token is spent
	_, _, err = h.svc.Authenticate(ctx, "", sess.Tokens.Refresh)
	assert.Equal(t, MsgRefreshExpired, apperr.From(err).Message)
}

func TestAuthenticate_Failures(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	_, _, err := h.svc.Authenticate(ctx, "", "")
	assert.Equal(t, 401, apperr.HTTPStatus(err))
	assert.Equal(t, "Unauthorized request", apperr.From(err).Message)

	_, _, err = h.svc.Authenticate(ctx, "", "garbage")
	assert.Equal(t, MsgRefreshExpired, apperr.From(err).Message)

	// an access token is not accepted as a refresh token
	_, _, err = h.svc.Authenticate(ctx, "", sess.Tokens.Access)
	assert.Equal(t, MsgRefreshExpired, apperr.From(err).Message)
}

func TestAuthenticate_ExpiredAccessToken(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	h.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err := h.svc.Authenticate(ctx, sess.Tokens.Access, "")
	assert.Equal(t, 401, apperr.HTTPStatus(err))
}

func TestLogout(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	id, _, err := h.svc.Authenticate(ctx, sess.Tokens.Access, sess.Tokens.Refresh)
	require.NoError(t, err)
	require.NoError(t, h.svc.Logout(ctx, id))

	u, err := h.users.GetUserByID(ctx, sess.Profile.ID)
	require.NoError(t, err)
	assert.Nil(t, u.RefreshToken)
	assert.Contains(t, h.revoker.revoked, id.Claims.ID)

	_, _, err = h.svc.Authenticate(ctx, sess.Tokens.Access, sess.Tokens.Refresh)
	assert.Equal(t, MsgRefreshExpired, apperr.From(err).Message)
}

func TestGoogleAuth_SignUpThenSignIn(t *testing.T) {
	h := newHarness()
	h.google.profile = &GoogleProfile{Email: "Ann@Example.com", Name: "Ann Lee", Picture: "http://pic/1"}

	sess, err := h.svc.GoogleAuth(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "Sign up successful with google", sess.Message)
	assert.Equal(t, "ann@example.com", sess.Profile.Email)
	assert.Equal(t, 1, h.users.count())

	h.google.profile = &GoogleProfile{Email: "ann@example.com", Name: "Ann Lee", Picture: "http://pic/2"}
	sess, err = h.svc.GoogleAuth(ctx, "code-2")
	require.NoError(t, err)
	assert.Equal(t, "Sign in successful with google", sess.Message)
	assert.Equal(t, 1, h.users.count())

	u, err := h.users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://pic/2", u.Avatar)
	assert.Equal(t, sess.Tokens.Refresh, *u.RefreshToken)
	assert.Equal(t, []string{"code-1", "code-2"}, h.google.codes)
}

func TestGoogleAuth_Errors(t *testing.T) {
	h := newHarness()

	_, err := h.svc.GoogleAuth(ctx, "")
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	_, err = h.svc.GoogleAuth(ctx, "undefined")
	assert.Equal(t, 400, apperr.HTTPStatus(err))

	h.google.err = errors.New("invalid_grant")
	_, err = h.svc.GoogleAuth(ctx, "code")
	assert.True(t, apperr.Is(err, apperr.KindUpstream))

	h.google.err = nil
	h.google.profile = &GoogleProfile{Email: "ann@example.com"}
	_, err = h.svc.GoogleAuth(ctx, "code")
	assert.Equal(t, 404, apperr.HTTPStatus(err))
	assert.Zero(t, h.users.count())
}

func TestDetailsAndActivity(t *testing.T) {
	h := newHarness()
	sess := registerAndLogin(t, h)

	d, err := h.svc.Details(ctx, sess.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", d.Name)
	assert.Equal(t, "http://media.test/bucket/me.png", d.Avatar)

	_, err = h.svc.Details(ctx, "000000000000000000000000")
	assert.Equal(t, 404, apperr.HTTPStatus(err))

	events, err := h.svc.Activity(ctx, sess.Profile.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventLogin, events[0].Kind)
	assert.Equal(t, models.EventRegister, events[1].Kind)
}

func TestNopAudit(t *testing.T) {
	events, err := NopAudit{}.ListEvents(ctx, "x", 5)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
