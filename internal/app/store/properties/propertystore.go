// internal/app/store/properties/propertystore.go
package propertystore

import (
	"context"

	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides atomic get/set access to the properties collection,
// the named global configuration rows (at most one document per name).
type Store struct {
	c *mongo.Collection
}

// New creates a property store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("properties")}
}

// Get returns the property and whether it exists.
func (s *Store) Get(ctx context.Context, name string) (models.Property, bool, error) {
	var p models.Property
	err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Property{}, false, nil
	}
	if err != nil {
		return models.Property{}, false, err
	}
	return p, true, nil
}

// Set upserts the value for a name in one atomic update, creating the
// row lazily on first write.
func (s *Store) Set(ctx context.Context, name, value string) (models.Property, error) {
	update := bson.M{
		"$set":         bson.M{"value": value},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "name": name},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p models.Property
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&p); err != nil {
		return models.Property{}, err
	}
	return p, nil
}

// Bool reads a property interpreted as a flag; a missing property is
// false.
func (s *Store) Bool(ctx context.Context, name string) (bool, error) {
	p, ok, err := s.Get(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return p.Bool(), nil
}

// List returns every property row.
func (s *Store) List(ctx context.Context) ([]models.Property, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var props []models.Property
	if err := cur.All(ctx, &props); err != nil {
		return nil, err
	}
	return props, nil
}
