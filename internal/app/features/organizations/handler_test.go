package organizations_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/features/organizations"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/indexes"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*organizations.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	h := organizations.NewHandler(organizationstore.New(db), userstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestCreateOrganization(t *testing.T) {
	h, _ := setup(t)

	req := testutil.NewJSONRequest(t, "POST", "/v1/organizations", map[string]any{
		"title": "Happy Paws",
		"type":  "shelter",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var org models.Organization
	testutil.DecodeJSON(t, rec, &org)
	require.Equal(t, "Happy Paws", org.Title)
	require.Zero(t, org.TaskStats.All)
}

func TestDuplicateTitleIs409(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, indexes.EnsureAll(ctx, fx.DB(), zap.NewNop()))
	fx.CreateOrganization(ctx, "Happy Paws")

	req := testutil.NewJSONRequest(t, "POST", "/v1/organizations", map[string]any{
		"title": "Happy Paws",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "title")
}

func TestGetUnknownOrganizationIs404(t *testing.T) {
	h, _ := setup(t)

	req := testutil.NewAuthenticatedRequest("GET", "/v1/organizations/x", testutil.VolunteerUser())
	req = testutil.WithChiURLParam(req, "orgID", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Organization does not exist")
}

func TestUpdatePreservesCounters(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Happy Paws")
	os := organizationstore.New(fx.DB())
	require.NoError(t, os.RecordTaskCreated(ctx, org.ID, models.TaskRef{
		TaskID: primitive.NewObjectID(),
		Title:  "Feed cats",
		Status: models.TaskStatusInProgress,
	}))

	req := testutil.NewJSONRequest(t, "PATCH", "/v1/organizations/"+org.ID.Hex(), map[string]any{
		"description": "A no-kill shelter",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "orgID", org.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Organization
	testutil.DecodeJSON(t, rec, &updated)
	require.Equal(t, "A no-kill shelter", updated.Description)
	require.Equal(t, 1, updated.TaskStats.All)
	require.Equal(t, 1, updated.TaskStats.Active)
}

func TestServeMembers(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Happy Paws")
	fx.CreateUser(ctx, "a@paws.org", models.RoleOrganization, &org)
	fx.CreateUser(ctx, "b@paws.org", models.RoleUser, &org)
	fx.CreateVolunteer(ctx, "outsider@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/v1/organizations/"+org.ID.Hex()+"/members", testutil.VolunteerUser())
	req = testutil.WithChiURLParam(req, "orgID", org.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeMembers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var members []models.User
	testutil.DecodeJSON(t, rec, &members)
	require.Len(t, members, 2)
}

func TestDeleteOrganization(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Happy Paws")

	req := testutil.NewAuthenticatedRequest("DELETE", "/v1/organizations/"+org.ID.Hex(), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "orgID", org.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	os := organizationstore.New(fx.DB())
	_, err := os.GetByID(ctx, org.ID)
	require.Error(t, err)
}
