// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/app/system/timeouts"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so the bearer middleware loads
// fresh user data on each request.
type Fetcher struct {
	s *Store
}

// NewFetcher creates a UserFetcher backed by the users collection.
func NewFetcher(s *Store) *Fetcher {
	return &Fetcher{s: s}
}

// FetchUser retrieves a user by id and returns nil if the id is
// malformed, the user is absent, or any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.BearerUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"email":        1,
		"firstName":    1,
		"lastName":     1,
		"role":         1,
		"organization": 1,
	})
	if err := f.s.c.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	bu := &auth.BearerUser{
		ID:    oid.Hex(),
		Email: u.Email,
		Name:  u.FullName(),
		Role:  u.Role,
	}
	if u.Organization != nil {
		bu.OrganizationID = u.Organization.ID.Hex()
	}
	return bu
}
