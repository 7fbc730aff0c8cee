// internal/app/store/doorlogs/doorlogstore.go
package doorlogstore

import (
	"context"
	"errors"
	"time"

	"github.com/shelterhub/shelterhub/internal/app/system/normalize"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides append-only access to the door_logs collection.
type Store struct {
	c *mongo.Collection
}

// New creates a door log store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("door_logs")}
}

// ErrUnknownState rejects sensor states outside models.DoorStates.
var ErrUnknownState = errors.New("unknown door state")

// Append records a new sensor event. State is stored uppercased and
// must be a known door state.
func (s *Store) Append(ctx context.Context, state string) (models.DoorLog, error) {
	st := normalize.DoorState(state)
	if !models.ValidDoorState(st) {
		return models.DoorLog{}, ErrUnknownState
	}
	log := models.DoorLog{
		ID:        primitive.NewObjectID(),
		State:     st,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, log); err != nil {
		return models.DoorLog{}, err
	}
	return log, nil
}

// List returns events newest first, optionally filtered by state.
func (s *Store) List(ctx context.Context, state string, skip, limit int64) ([]models.DoorLog, error) {
	filter := bson.M{}
	if state != "" {
		filter["state"] = normalize.DoorState(state)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var logs []models.DoorLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
