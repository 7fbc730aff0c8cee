// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/shelterhub/shelterhub/internal/app/system/normalize"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the users collection.
type Store struct {
	c *mongo.Collection
}

// Sentinel errors.
var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrTaskRefMissing = errors.New("user has no entry for this task")
)

// New creates a user store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user. The password must already be hashed.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	if u.Role == "" {
		u.Role = models.DefaultRole
	}
	if u.Tasks == nil {
		u.Tasks = []models.TaskRef{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user. Returns mongo.ErrNoDocuments when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail loads a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByTelegramID loads the user linked to a Telegram account.
func (s *Store) GetByTelegramID(ctx context.Context, telegramID string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"telegramId": telegramID}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByServiceOrEmail finds the account an OAuth login maps onto:
// either the provider id is already attached, or the email matches an
// existing account.
func (s *Store) GetByServiceOrEmail(ctx context.Context, service, externalID, email string) (models.User, error) {
	var u models.User
	filter := bson.M{"$or": []bson.M{
		{"services." + service: externalID},
		{"email": normalize.Email(email)},
	}}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Email          string
	Role           string
	OrganizationID *primitive.ObjectID
}

// List returns users ordered by creation time descending.
func (s *Store) List(ctx context.Context, f ListFilter, skip, limit int64) ([]models.User, error) {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = normalize.Email(f.Email)
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.OrganizationID != nil {
		filter["organization.id"] = *f.OrganizationID
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

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByOrganization returns the members whose organization snapshot
// references the given org.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization.id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListTelegramRecipients returns every user who opted into Telegram
// notifications and has a linked Telegram account.
func (s *Store) ListTelegramRecipients(ctx context.Context) ([]models.User, error) {
	filter := bson.M{
		"notifications.telegram": true,
		"telegramId":             bson.M{"$nin": bson.A{nil, ""}},
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies a partial $set and refreshes UpdatedAt, returning the
// updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (models.User, error) {
	if email, ok := set["email"].(string); ok {
		set["email"] = normalize.Email(email)
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// AttachService links an OAuth provider id (and backfills empty name
// fields) on an existing account.
func (s *Store) AttachService(ctx context.Context, id primitive.ObjectID, service, externalID, firstName, lastName string) error {
	set := bson.M{
		"services." + service: externalID,
		"updatedAt":           time.Now().UTC(),
	}
	if firstName != "" {
		set["firstName"] = firstName
	}
	if lastName != "" {
		set["lastName"] = lastName
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// Delete removes a user document. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PushTaskRef appends a task reference and moves the counter cache in
// the same atomic update: one more task taken, one more undone.
func (s *Store) PushTaskRef(ctx context.Context, userID primitive.ObjectID, ref models.TaskRef) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"tasks": ref},
		"$inc":  bson.M{"taskStats.all": 1, "taskStats.undone": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// PullTaskRef removes the task reference by identity and rolls the
// counters back. Returns ErrTaskRefMissing when the user never took the
// task.
func (s *Store) PullTaskRef(ctx context.Context, userID, taskID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks.taskId": taskID},
		bson.M{
			"$pull": bson.M{"tasks": bson.M{"taskId": taskID}},
			"$inc":  bson.M{"taskStats.all": -1, "taskStats.undone": -1},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskRefMissing
	}
	return nil
}

// FinishTaskRef marks the embedded task reference done and moves one
// count from undone to done. Returns ErrTaskRefMissing when the user
// has no undone entry for the task, so a double finish cannot move the
// counters twice.
func (s *Store) FinishTaskRef(ctx context.Context, userID, taskID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "tasks": bson.M{"$elemMatch": bson.M{
			"taskId": taskID,
			"status": bson.M{"$ne": models.TaskStatusDone},
		}}},
		bson.M{
			"$set": bson.M{
				"tasks.$.status": models.TaskStatusDone,
				"updatedAt":      time.Now().UTC(),
			},
			"$inc": bson.M{"taskStats.undone": -1, "taskStats.done": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskRefMissing
	}
	return nil
}
