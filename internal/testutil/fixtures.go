package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam attaches a chi route parameter to the request so
// handlers using chi.URLParam can be tested without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores, so a
// test can arrange any document shape it needs.
type Fixtures struct {
	t  *testing.T
	db *mongo.Database
}

// NewFixtures creates a fixture builder bound to the test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization inserts an organization with zeroed task counters.
func (f *Fixtures) CreateOrganization(ctx context.Context, title string) models.Organization {
	f.t.Helper()
	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Type:      models.OrgTypeShelter,
		Tasks:     []models.TaskRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("insert organization fixture: %v", err)
	}
	return org
}

// CreateUser inserts a user with the given role, optionally attached to
// an organization.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string, org *models.Organization) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  "$2a$10$fixture.hash.not.a.real.credential.000000000000000000",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Tasks:     []models.TaskRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if org != nil {
		u.Organization = org.Snapshot()
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert user fixture: %v", err)
	}
	return u
}

// CreateVolunteer inserts a plain volunteer account.
func (f *Fixtures) CreateVolunteer(ctx context.Context, email string) models.User {
	return f.CreateUser(ctx, email, models.RoleUser, nil)
}

// CreateTask inserts a task owned by the given user.
func (f *Fixtures) CreateTask(ctx context.Context, title string, owner models.User, status string) models.Task {
	f.t.Helper()
	now := time.Now().UTC()
	task := models.Task{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Status:       status,
		Priority:     models.DefaultTaskPriority,
		Type:         models.DefaultTaskType,
		OwnerID:      owner.ID,
		Organization: owner.Organization,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("insert task fixture: %v", err)
	}
	return task
}
