// Package forms implements the form resource: create, fetch, list and
// delete, with thumbnails kept on the media host.
package forms

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Lohit-Behera/canva/internal/apperr"
	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/models"
	"github.com/Lohit-Behera/canva/internal/store"
)

const msgNotFound = "Form not found."

// FormStore defines the interface for form persistence.
type FormStore interface {
	InsertForm(ctx context.Context, f *models.Form) (string, error)
	GetForm(ctx context.Context, id string) (*models.Form, error)
	GetFormView(ctx context.Context, id string) (*models.FormView, error)
	ListFormViews(ctx context.Context, userID string) ([]models.FormView, error)
	DeleteForm(ctx context.Context, id string) error
}

// UserLookup confirms the owner still exists.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type Service struct {
	forms FormStore
	users UserLookup
	media media.Uploader
	log   zerolog.Logger
}

func NewService(forms FormStore, users UserLookup, uploader media.Uploader) *Service {
	return &Service{
		forms: forms,
		users: users,
		media: uploader,
		log:   logging.NewPackageLogger("forms"),
	}
}

// Create uploads the thumbnail and stores a form owned by userID. It
// returns the new form's id.
func (s *Service) Create(ctx context.Context, userID string, in models.FormInput, thumb *media.File) (string, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.NotFound("User not found.")
	}
	if err != nil {
		return "", apperr.Internal("Something went wrong while creating form.", err)
	}
	if thumb == nil {
		return "", apperr.Validation("Please provide a thumbnail.")
	}

	url, key := s.media.UploadFile(ctx, thumb)
	if url == "" {
		return "", apperr.Upstream("Thumbnail upload failed.", nil)
	}

	f := &models.Form{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Thumbnail:    url,
		ThumbnailKey: key,
		User:         u.ID,
	}
	id, err := s.forms.InsertForm(ctx, f)
	if err != nil {
		s.media.DeleteFile(ctx, key)
		return "", apperr.Internal("Something went wrong while creating form.", err)
	}

	if _, err := s.forms.GetForm(ctx, id); err != nil {
		return "", apperr.Internal("Something went wrong while creating form.", err)
	}
	s.log.Info().Str(logging.FORM_ID, id).Str(logging.USER_ID, userID).Msg("form created")
	return id, nil
}

// Get returns a form joined with its owner's public fields.
func (s *Service) Get(ctx context.Context, id string) (*models.FormView, error) {
	v, err := s.forms.GetFormView(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching form.", err)
	}
	return v, nil
}

// List returns the caller's forms, newest first. Never nil.
func (s *Service) List(ctx context.Context, userID string) ([]models.FormView, error) {
	views, err := s.forms.ListFormViews(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching forms.", err)
	}
	if views == nil {
		views = []models.FormView{}
	}
	return views, nil
}

// Delete removes a form owned by userID along with its thumbnail. The
// thumbnail delete is best-effort.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	f, err := s.forms.GetForm(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return apperr.Internal("Something went wrong while deleting form.", err)
	}

	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil || f.User != owner {
		return apperr.Forbidden("You are not authorized to delete this form.")
	}

	s.media.DeleteFile(ctx, f.ThumbnailKey)

	if err := s.forms.DeleteForm(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return apperr.Internal("Something went wrong while deleting form.", err)
	}
	s.log.Info().Str(logging.FORM_ID, id).Str(logging.USER_ID, userID).Msg("form deleted")
	return nil
}
