// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/shelterhub/shelterhub/internal/app/system/normalize"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the invitations collection.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// Sentinel errors.
var (
	ErrNotFound       = errors.New("invitation token does not exist")
	ErrExpired        = errors.New("invitation token has expired")
	ErrDuplicateEmail = errors.New("an invitation for this email already exists")
)

// tokenBytes is the raw token width; tokens are hex-encoded.
const tokenBytes = 60

// New creates an invitation store. expiry is applied to every
// generated invitation.
func New(db *mongo.Database, expiry time.Duration) *Store {
	return &Store{c: db.Collection("invitations"), expiry: expiry}
}

// Generate creates and stores a single-use invitation binding email to
// the inviting user and organization.
func (s *Store) Generate(ctx context.Context, inviterID, orgID primitive.ObjectID, email string) (models.Invitation, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return models.Invitation{}, err
	}

	inv := models.Invitation{
		ID:             primitive.NewObjectID(),
		Token:          hex.EncodeToString(buf),
		UserID:         inviterID,
		OrganizationID: orgID,
		Email:          normalize.Email(email),
		Expires:        time.Now().UTC().Add(s.expiry),
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Invitation{}, ErrDuplicateEmail
		}
		return models.Invitation{}, err
	}
	return inv, nil
}

// Redeem consumes the invitation matching token and email: the document
// is removed before the expiry check, so a token can be presented only
// once whether or not it is still valid.
func (s *Store) Redeem(ctx context.Context, token, email string) (models.Invitation, error) {
	filter := bson.M{"token": token, "email": normalize.Email(email)}

	var inv models.Invitation
	err := s.c.FindOneAndDelete(ctx, filter).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.Invitation{}, ErrNotFound
	}
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Expired(time.Now().UTC()) {
		return models.Invitation{}, ErrExpired
	}
	return inv, nil
}
