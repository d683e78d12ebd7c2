package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in the MongoDB users collection.
type User struct {
	ID           primitive.ObjectID `json:"_id"       bson:"_id,omitempty"`
	Name         string             `json:"name"      bson:"name"`
	Email        string             `json:"email"     bson:"email"`
	Password     string             `json:"-"         bson:"password"` // bcrypt hash, never serialize
	Avatar       string             `json:"avatar"    bson:"avatar"`
	RefreshToken *string            `json:"-"         bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Profile is what login returns: no password, avatar, token or timestamps.
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserDetails is the body of GET /users/details.
type UserDetails struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}

func (u *User) Details() UserDetails {
	return UserDetails{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoginRequest is the JSON body for POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleAuthRequest is the JSON body for POST /users/auth/google. Token is
// the authorization code returned by the Google consent screen.
type GoogleAuthRequest struct {
	Token string `json:"token"`
}
