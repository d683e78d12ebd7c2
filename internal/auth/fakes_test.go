package auth

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/models"
	"github.com/Lohit-Behera/canva/internal/store"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.byID[u.ID.Hex()] = &cp
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id string, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	t := *token
	u.RefreshToken = &t
	return nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, id, avatar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Avatar = avatar
	return nil
}

func (f *fakeUsers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeMedia struct {
	fail    bool
	uploads int
	deleted []string
}

func (m *fakeMedia) UploadFile(_ context.Context, f *media.File) (string, string) {
	defer f.Release()
	m.uploads++
	if m.fail {
		return "", ""
	}
	return "http://media.test/bucket/" + f.Filename, f.Filename
}

func (m *fakeMedia) DeleteFile(_ context.Context, key string) {
	m.deleted = append(m.deleted, key)
}

type fakeRevoker struct {
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Time{}}
}

func (r *fakeRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	r.revoked[id] = until
	return nil
}

func (r *fakeRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := r.revoked[id]
	return ok, nil
}

type fakeGoogle struct {
	profile *GoogleProfile
	err     error
	codes   []string
}

func (g *fakeGoogle) Exchange(_ context.Context, code string) (*GoogleProfile, error) {
	g.codes = append(g.codes, code)
	return g.profile, g.err
}

type fakeAudit struct {
	mu     sync.Mutex
	events []models.AuthEvent
}

func (a *fakeAudit) RecordEvent(_ context.Context, ev models.AuthEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return nil
}

func (a *fakeAudit) ListEvents(_ context.Context, userID string, limit int) ([]models.AuthEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.AuthEvent{}
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		if a.events[i].UserID == userID {
			out = append(out, a.events[i])
		}
	}
	return out, nil
}

func (a *fakeAudit) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, ev := range a.events {
		out = append(out, ev.Kind)
	}
	return out
}

type harness struct {
	svc     *Service
	users   *fakeUsers
	media   *fakeMedia
	tokens  *TokenIssuer
	revoker *fakeRevoker
	google  *fakeGoogle
	audit   *fakeAudit
}

func newHarness() *harness {
	h := &harness{
		users:   newFakeUsers(),
		media:   &fakeMedia{},
		tokens:  NewTokenIssuer("access-secret", time.Hour, "refresh-secret", 24*time.Hour),
		revoker: newFakeRevoker(),
		google:  &fakeGoogle{},
		audit:   &fakeAudit{},
	}
	h.svc = NewService(h.users, h.media, h.tokens, h.revoker, h.google, h.audit)
	return h
}

func avatarFile() *media.File {
	return &media.File{Field: "avatar", Filename: "me.png", ContentType: "image/png", Buffer: []byte("png")}
}
