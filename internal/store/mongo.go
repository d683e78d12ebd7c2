package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lohit-Behera/canva/internal/models"
)

var (
	// ErrNotFound is returned when no document matches, including
	// malformed ids.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateEmail is returned when the unique email index rejects a write.
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// MongoStore handles user and form documents in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	forms *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection("users"),
		forms: db.Collection("forms"),
	}
}

// EnsureIndexes creates the unique email index and the owner index on forms.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	_, err = s.forms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("forms user index: %w", err)
	}
	return nil
}

// ── Users ────────────────────────────────────────────────

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// SetRefreshToken stores the current refresh token; nil unsets it.
func (s *MongoStore) SetRefreshToken(ctx context.Context, id string, token *string) error {
	update := bson.M{"$unset": bson.M{"refreshToken": ""}}
	if token != nil {
		update = bson.M{"$set": bson.M{"refreshToken": *token}}
	}
	return s.updateUser(ctx, id, update)
}

func (s *MongoStore) UpdateAvatar(ctx context.Context, id, avatar string) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": time.Now().UTC()}})
}

func (s *MongoStore) updateUser(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.users.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Forms ────────────────────────────────────────────────

func (s *MongoStore) InsertForm(ctx context.Context, f *models.Form) (string, error) {
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now
	res, err := s.forms.InsertOne(ctx, f)
	if err != nil {
		return "", fmt.Errorf("insert form: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	f.ID = oid
	return oid.Hex(), nil
}

// GetForm returns the raw form document, used for ownership checks.
func (s *MongoStore) GetForm(ctx context.Context, id string) (*models.Form, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var f models.Form
	err = s.forms.FindOne(ctx, bson.M{"_id": oid}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}
	return &f, nil
}

// GetFormView returns a form joined with its owner's public fields.
func (s *MongoStore) GetFormView(ctx context.Context, id string) (*models.FormView, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	views, err := s.aggregateViews(ctx, FormViewPipeline(bson.M{"_id": oid}))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// ListFormViews returns the owner's forms, newest first. Never nil.
func (s *MongoStore) ListFormViews(ctx context.Context, userID string) ([]models.FormView, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.FormView{}, nil
	}
	return s.aggregateViews(ctx, FormViewPipeline(bson.M{"user": oid}))
}

func (s *MongoStore) aggregateViews(ctx context.Context, pipeline mongo.Pipeline) ([]models.FormView, error) {
	cur, err := s.forms.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate forms: %w", err)
	}
	defer cur.Close(ctx)

	views := []models.FormView{}
	if err := cur.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	return views, nil
}

func (s *MongoStore) DeleteForm(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.forms.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FormViewPipeline matches forms and joins the owner's name, email and
// avatar in a single aggregation. Forms whose owner no longer exists are
// dropped by the $unwind.
func FormViewPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "firstName", Value: 1},
			{Key: "lastName", Value: 1},
			{Key: "thumbnail", Value: 1},
			{Key: "user", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "updatedAt", Value: 1},
			{Key: "userName", Value: "$owner.name"},
			{Key: "userEmail", Value: "$owner.email"},
			{Key: "userAvatar", Value: "$owner.avatar"},
		}}},
	}
}
