// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the organizations collection.
type Store struct {
	c        *mongo.Collection
	sanitize *bluemonday.Policy
}

// Sentinel errors.
var (
	ErrDuplicateTitle = errors.New("an organization with this title already exists")
	ErrTaskRefMissing = errors.New("organization has no entry for this task")
)

// New creates an organization store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("organizations"),
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Create inserts a new organization with zeroed task counters.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.Description = s.sanitize.Sanitize(org.Description)
	if org.Type == "" {
		org.Type = models.DefaultOrgType
	}
	if org.Tasks == nil {
		org.Tasks = []models.TaskRef{}
	}
	org.TaskStats = models.OrgTaskStats{}
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateTitle
		}
		return models.Organization{}, err
	}
	return org, nil
}

// GetByID loads an organization. Returns mongo.ErrNoDocuments when
// absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// List returns organizations ordered by creation time descending.
func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.Organization, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Replace overwrites the profile fields of an organization while
// preserving its task bookkeeping.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, org models.Organization) (models.Organization, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, err
	}
	org.ID = id
	org.Description = s.sanitize.Sanitize(org.Description)
	if org.Type == "" {
		org.Type = models.DefaultOrgType
	}
	org.Tasks = existing.Tasks
	org.TaskStats = existing.TaskStats
	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = time.Now().UTC()
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateTitle
		}
		return models.Organization{}, err
	}
	return org, nil
}

// Update applies a partial $set and refreshes UpdatedAt, returning the
// updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Organization, error) {
	if desc, ok := set["description"].(string); ok {
		set["description"] = s.sanitize.Sanitize(desc)
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var org models.Organization
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateTitle
		}
		return models.Organization{}, err
	}
	return org, nil
}

// Delete removes an organization. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RecordTaskCreated appends the task reference and moves all/active up
// by one in a single atomic update.
func (s *Store) RecordTaskCreated(ctx context.Context, orgID primitive.ObjectID, ref models.TaskRef) error {
	_, err := s.c.UpdateByID(ctx, orgID, bson.M{
		"$push": bson.M{"tasks": ref},
		"$inc":  bson.M{"taskStats.all": 1, "taskStats.active": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RecordTaskFinished marks the embedded task reference done and moves
// one count from active to done. Returns ErrTaskRefMissing when the
// organization has no undone entry for the task.
func (s *Store) RecordTaskFinished(ctx context.Context, orgID, taskID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": orgID, "tasks": bson.M{"$elemMatch": bson.M{
			"taskId": taskID,
			"status": bson.M{"$ne": models.TaskStatusDone},
		}}},
		bson.M{
			"$set": bson.M{
				"tasks.$.status": models.TaskStatusDone,
				"updatedAt":      time.Now().UTC(),
			},
			"$inc": bson.M{"taskStats.active": -1, "taskStats.done": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskRefMissing
	}
	return nil
}
