package forms

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/models"
	"github.com/Lohit-Behera/canva/internal/store"
)

var ctx = context.Background()

// memStore keeps users and forms in memory and performs the owner join the
// way the aggregation pipeline does.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	forms     map[string]*models.Form
	failRead  bool
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, forms: map[string]*models.Form{}}
}

func (m *memStore) addUser(name, email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: primitive.NewObjectID(), Name: name, Email: email, Avatar: "http://avatar/" + name}
	m.users[u.ID.Hex()] = u
	return u.ID.Hex()
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *memStore) InsertForm(_ context.Context, f *models.Form) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now().Add(time.Duration(len(m.forms)) * time.Second)
	f.UpdatedAt = f.CreatedAt
	cp := *f
	m.forms[f.ID.Hex()] = &cp
	return f.ID.Hex(), nil
}

func (m *memStore) GetForm(_ context.Context, id string) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errors.New("read failed")
	}
	f, ok := m.forms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memStore) view(f *models.Form) (models.FormView, bool) {
	u, ok := m.users[f.User.Hex()]
	if !ok {
		return models.FormView{}, false
	}
	return models.FormView{
		ID: f.ID, FirstName: f.FirstName, LastName: f.LastName, Thumbnail: f.Thumbnail, User: f.User,
		UserName: u.Name, UserEmail: u.Email, UserAvatar: u.Avatar,
		CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt,
	}, true
}

func (m *memStore) GetFormView(_ context.Context, id string) (*models.FormView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v, ok := m.view(f)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func (m *memStore) ListFormViews(_ context.Context, userID string) ([]models.FormView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FormView{}
	for _, f := range m.forms {
		if f.User.Hex() != userID {
			continue
		}
		if v, ok := m.view(f); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteForm(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forms[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.forms, id)
	return nil
}

type fakeMedia struct {
	fail    bool
	deleted []string
}

func (m *fakeMedia) UploadFile(_ context.Context, f *media.File) (string, string) {
	defer f.Release()
	if m.fail {
		return "", ""
	}
	key := "2024/01/01/" + f.Filename
	return "http://media.test/bucket/" + key, key
}

func (m *fakeMedia) DeleteFile(_ context.Context, key string) {
	m.deleted = append(m.deleted, key)
}

func thumb() *media.File {
	return &media.File{Field: "thumbnail", Filename: "t.png", ContentType: "image/png", Buffer: []byte("png")}
}

func newTestService() (*Service, *memStore, *fakeMedia) {
	st := newMemStore()
	fm := &fakeMedia{}
	return NewService(st, st, fm), st, fm
}

func TestCreateThenGet(t *testing.T) {
	svc, st, _ := newTestService()
	owner := st.addUser("Ann Lee", "ann@example.com")

	id, err := svc.Create(ctx, owner, models.FormInput{FirstName: "Ann", LastName: "Lee"}, thumb())
	require.NoError(t, err)

	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", v.FirstName)
	assert.Equal(t, "Lee", v.LastName)
	assert.Equal(t, "Ann Lee", v.UserName)
	assert.Equal(t, "ann@example.com", v.UserEmail)
	assert.Equal(t, "http://media.test/bucket/2024/01/01/t.png", v.Thumbnail)
}

func TestCreate_Errors(t *testing.T) {
	svc, st, fm := newTestService()
	owner := st.addUser("Ann Lee", "ann@example.com")
	in := models.FormInput{FirstName: "Ann", LastName: "Lee"}

	_, err := svc.Create(ctx, primitive.NewObjectID().Hex(), in, thumb())
	assert.Equal(t, 404, apperr.HTTPStatus(err))

	_, err = svc.Create(ctx, owner, in, nil)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Equal(t, "Please provide a thumbnail.", apperr.From(err).Message)

	fm.fail = true
	_, err = svc.Create(ctx, owner, in, thumb())
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	fm.fail = false

	st.insertErr = errors.New("write failed")
	_, err = svc.Create(ctx, owner, in, thumb())
	assert.Equal(t, 500, apperr.HTTPStatus(err))
	assert.Equal(t, []string{"2024/01/01/t.png"}, fm.deleted, "orphaned thumbnail removed")
	st.insertErr = nil

	st.failRead = true
	_, err = svc.Create(ctx, owner, in, thumb())
	assert.Equal(t, 500, apperr.HTTPStatus(err))
	assert.Equal(t, "Something went wrong while creating form.", apperr.From(err).Message)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Get(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, 404, apperr.HTTPStatus(err))
	assert.Equal(t, "Form not found.", apperr.From(err).Message)
}

func TestList(t *testing.T) {
	svc, st, _ := newTestService()
	ann := st.addUser("Ann Lee", "ann@example.com")
	bob := st.addUser("Bob Ray", "bob@example.com")

	views, err := svc.List(ctx, ann)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)

	first, err := svc.Create(ctx, ann, models.FormInput{FirstName: "A", LastName: "One"}, thumb())
	require.NoError(t, err)
	second, err := svc.Create(ctx, ann, models.FormInput{FirstName: "A", LastName: "Two"}, thumb())
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, models.FormInput{FirstName: "B", LastName: "One"}, thumb())
	require.NoError(t, err)

	views, err = svc.List(ctx, ann)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].ID.Hex())
	assert.Equal(t, first, views[1].ID.Hex())
}

func TestDelete(t *testing.T) {
	svc, st, fm := newTestService()
	ann := st.addUser("Ann Lee", "ann@example.com")
	bob := st.addUser("Bob Ray", "bob@example.com")
	id, err := svc.Create(ctx, ann, models.FormInput{FirstName: "Ann", LastName: "Lee"}, thumb())
	require.NoError(t, err)

	err = svc.Delete(ctx, id, bob)
	assert.Equal(t, 403, apperr.HTTPStatus(err))
	assert.Equal(t, "You are not authorized to delete this form.", apperr.From(err).Message)
	_, err = svc.Get(ctx, id)
	require.NoError(t, err, "record left intact")
	assert.Empty(t, fm.deleted)

	require.NoError(t, svc.Delete(ctx, id, ann))
	assert.Equal(t, []string{"2024/01/01/t.png"}, fm.deleted)

	err = svc.Delete(ctx, id, ann)
	assert.Equal(t, 404, apperr.HTTPStatus(err))
}
