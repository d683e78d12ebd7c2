package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form is a submitted name pair with a thumbnail, stored in MongoDB.
type Form struct {
	ID           primitive.ObjectID `json:"_id"          bson:"_id,omitempty"`
	FirstName    string             `json:"firstName"    bson:"firstName"`
	LastName     string             `json:"lastName"     bson:"lastName"`
	Thumbnail    string             `json:"thumbnail"    bson:"thumbnail"`
	ThumbnailKey string             `json:"-"            bson:"thumbnailKey,omitempty"`
	User         primitive.ObjectID `json:"user"         bson:"user"`
	CreatedAt    time.Time          `json:"createdAt"    bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"    bson:"updatedAt"`
}

// FormView is a form joined with its owner's public profile fields.
type FormView struct {
	ID         primitive.ObjectID `json:"_id"        bson:"_id"`
	FirstName  string             `json:"firstName"  bson:"firstName"`
	LastName   string             `json:"lastName"   bson:"lastName"`
	Thumbnail  string             `json:"thumbnail"  bson:"thumbnail"`
	User       primitive.ObjectID `json:"user"       bson:"user"`
	UserName   string             `json:"userName"   bson:"userName"`
	UserEmail  string             `json:"userEmail"  bson:"userEmail"`
	UserAvatar string             `json:"userAvatar" bson:"userAvatar"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"  bson:"updatedAt"`
}
