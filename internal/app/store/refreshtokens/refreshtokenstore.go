// internal/app/store/refreshtokens/refreshtokenstore.go
package refreshtokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shelterhub/shelterhub/internal/app/system/normalize"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the refresh_tokens collection.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// ErrInvalid covers a missing, mismatched, or expired refresh token.
var ErrInvalid = errors.New("invalid refresh token")

// New creates a refresh token store.
func New(db *mongo.Database, expiry time.Duration) *Store {
	return &Store{c: db.Collection("refresh_tokens"), expiry: expiry}
}

// Generate issues and stores a refresh token for the user. Any previous
// token for the same user is replaced.
func (s *Store) Generate(ctx context.Context, userID primitive.ObjectID, email string) (models.RefreshToken, error) {
	token := models.RefreshToken{
		ID:        primitive.NewObjectID(),
		Token:     fmt.Sprintf("%s.%s", userID.Hex(), uuid.NewString()),
		UserID:    userID,
		UserEmail: normalize.Email(email),
		Expires:   time.Now().UTC().Add(s.expiry),
	}

	if _, err := s.c.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return models.RefreshToken{}, err
	}
	if _, err := s.c.InsertOne(ctx, token); err != nil {
		return models.RefreshToken{}, err
	}
	return token, nil
}

// Consume validates and deletes a refresh token presented for the given
// email, returning ErrInvalid when it does not exist, belongs to a
// different account, or is expired.
func (s *Store) Consume(ctx context.Context, email, token string) (models.RefreshToken, error) {
	filter := bson.M{"token": token, "userEmail": normalize.Email(email)}

	var rt models.RefreshToken
	err := s.c.FindOneAndDelete(ctx, filter).Decode(&rt)
	if err == mongo.ErrNoDocuments {
		return models.RefreshToken{}, ErrInvalid
	}
	if err != nil {
		return models.RefreshToken{}, err
	}
	if rt.Expired(time.Now().UTC()) {
		return models.RefreshToken{}, ErrInvalid
	}
	return rt, nil
}
