// internal/domain/models/refreshtoken.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken lets a client obtain a new access token after expiry
// without re-sending credentials. One document per issued token.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string             `bson:"token" json:"token"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Expires   time.Time          `bson:"expires" json:"expires"`
}

// Expired reports whether the refresh token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool { return now.After(t.Expires) }
