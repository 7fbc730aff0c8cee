// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the tasks collection.
type Store struct {
	c        *mongo.Collection
	sanitize *bluemonday.Policy
}

// ErrNotAvailable is returned by TakeIfAvailable when the task is not in
// the available state.
var ErrNotAvailable = errors.New("task is not available")

// New creates a task store. User-supplied free text is stripped of
// markup before it is stored.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("tasks"),
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Create inserts a new task, applying defaults and timestamps.
func (s *Store) Create(ctx context.Context, task models.Task) (models.Task, error) {
	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.Title = s.sanitize.Sanitize(task.Title)
	task.Description = s.sanitize.Sanitize(task.Description)
	if task.Status == "" {
		task.Status = models.DefaultTaskStatus
	}
	if task.Priority == "" {
		task.Priority = models.DefaultTaskPriority
	}
	if task.Type == "" {
		task.Type = models.DefaultTaskType
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetByID loads a single task. Returns mongo.ErrNoDocuments when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var task models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ListFilter narrows List results. The slice fields are any-of
// filters.
type ListFilter struct {
	Title      string // full-text search over the title index
	Priorities []string
	Types      []string
	Statuses   []string
}

// List returns tasks ordered by creation time descending, excluding
// hidden and deleted documents for any filter combination.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.Task, error) {
	filters := []bson.M{
		{"status": bson.M{"$nin": models.HiddenTaskStatuses}},
	}
	if f.Title != "" {
		filters = append(filters, bson.M{"$text": bson.M{"$search": f.Title}})
	}
	if len(f.Priorities) > 0 {
		filters = append(filters, bson.M{"priority": bson.M{"$in": f.Priorities}})
	}
	if len(f.Types) > 0 {
		filters = append(filters, bson.M{"type": bson.M{"$in": f.Types}})
	}
	if len(f.Statuses) > 0 {
		filters = append(filters, bson.M{"status": bson.M{"$in": f.Statuses}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"$and": filters}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Replace overwrites the whole task document, keeping the id, the
// creator, and the creation time.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, task models.Task) (models.Task, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	task.ID = id
	task.OwnerID = existing.OwnerID
	task.Organization = existing.Organization
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	task.Title = s.sanitize.Sanitize(task.Title)
	task.Description = s.sanitize.Sanitize(task.Description)
	if task.Status == "" {
		task.Status = models.DefaultTaskStatus
	}
	if task.Priority == "" {
		task.Priority = models.DefaultTaskPriority
	}
	if task.Type == "" {
		task.Type = models.DefaultTaskType
	}
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update applies a partial $set and refreshes UpdatedAt, returning the
// updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Task, error) {
	if title, ok := set["title"].(string); ok {
		set["title"] = s.sanitize.Sanitize(title)
	}
	if desc, ok := set["description"].(string); ok {
		set["description"] = s.sanitize.Sanitize(desc)
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task models.Task
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&task)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// SetStatus moves the task-level status unconditionally. Lifecycle
// preconditions are checked by the caller beforehand.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// TakeIfAvailable conditionally moves an available task to assigned.
// The status guard lives in the update filter, so two concurrent takes
// of the same single-assignee task cannot both succeed.
func (s *Store) TakeIfAvailable(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	filter := bson.M{"_id": id, "status": models.TaskStatusAvailable}
	update := bson.M{"$set": bson.M{
		"status":    models.TaskStatusAssigned,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return models.Task{}, ErrNotAvailable
	}
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Delete removes a task document. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of tasks matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
