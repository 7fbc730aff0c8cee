package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents the bearer identity for testing HTTP handlers.
type TestUser struct {
	ID             string
	Name           string
	Email          string
	Role           string
	OrganizationID string
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.RoleAdmin,
	}
}

// VolunteerUser returns a TestUser with the plain user role.
func VolunteerUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Volunteer",
		Email: "volunteer@test.com",
		Role:  models.RoleUser,
	}
}

// OrgUser returns a TestUser with the organization role.
func OrgUser(orgID primitive.ObjectID) TestUser {
	return TestUser{
		ID:             primitive.NewObjectID().Hex(),
		Name:           "Test Organization",
		Email:          "org@test.com",
		Role:           models.RoleOrganization,
		OrganizationID: orgID.Hex(),
	}
}

// FromUser builds the TestUser matching a user document, so handler
// tests can act as a fixture-created account.
func FromUser(u models.User) TestUser {
	tu := TestUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Organization != nil {
		tu.OrganizationID = u.Organization.ID.Hex()
	}
	return tu
}

// WithUser adds a user to the request context, bypassing the bearer
// middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.BearerUser{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in
// context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewJSONRequest creates a request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
}
