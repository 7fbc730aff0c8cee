package tasks_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/features/tasks"
	"github.com/shelterhub/shelterhub/internal/app/lifecycle"
	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	taskstore "github.com/shelterhub/shelterhub/internal/app/store/tasks"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*tasks.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	ts := taskstore.New(db)
	us := userstore.New(db)
	os := organizationstore.New(db)
	lc := lifecycle.New(ts, us, os, zap.NewNop())
	h := tasks.NewHandler(ts, us, lc, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestCreateStampsOwner(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Paws")
	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, &org)

	req := testutil.NewJSONRequest(t, "POST", "/v1/tasks", map[string]any{
		"title":    "Walk the dogs",
		"priority": "high",
	})
	req = testutil.WithUser(req, testutil.FromUser(owner))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Task
	testutil.DecodeJSON(t, rec, &created)
	require.Equal(t, "Walk the dogs", created.Title)
	require.Equal(t, owner.ID, created.OwnerID)
	require.Equal(t, models.TaskStatusAvailable, created.Status)
	require.NotNil(t, created.Organization)
	require.Equal(t, org.ID, created.Organization.ID)
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)

	req := testutil.NewJSONRequest(t, "POST", "/v1/tasks", map[string]any{"priority": "high"})
	req = testutil.WithUser(req, testutil.FromUser(owner))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestGetUnknownTaskIs404(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := fx.CreateVolunteer(ctx, "v@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/v1/tasks/x", testutil.FromUser(user))
	req = testutil.WithChiURLParam(req, "taskID", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Task does not exist")
}

func TestReplaceRequiresOwner(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	other := fx.CreateUser(ctx, "other@paws.org", models.RoleOrganization, nil)
	task := fx.CreateTask(ctx, "Clean kennels", owner, models.TaskStatusAvailable)

	req := testutil.NewJSONRequest(t, "PUT", "/v1/tasks/"+task.ID.Hex(), map[string]any{
		"title": "Clean all kennels",
	})
	req = testutil.WithUser(req, testutil.FromUser(other))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleReplace(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestAdminBypassesOwnerCheck(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	task := fx.CreateTask(ctx, "Clean kennels", owner, models.TaskStatusAvailable)

	req := testutil.NewJSONRequest(t, "PATCH", "/v1/tasks/"+task.ID.Hex(), map[string]any{
		"priority": "hot",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Task
	testutil.DecodeJSON(t, rec, &updated)
	require.Equal(t, "hot", updated.Priority)
	require.Equal(t, "Clean kennels", updated.Title)
}

func TestDeleteRemovesTask(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	task := fx.CreateTask(ctx, "Old task", owner, models.TaskStatusAvailable)

	req := testutil.NewAuthenticatedRequest("DELETE", "/v1/tasks/"+task.ID.Hex(), testutil.FromUser(owner))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	ts := taskstore.New(fx.DB())
	_, err := ts.GetByID(ctx, task.ID)
	require.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestTakeHappyPath(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Paws")
	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, &org)
	volunteer := fx.CreateVolunteer(ctx, "v@test.com")
	task := fx.CreateTask(ctx, "Feed cats", owner, models.TaskStatusAvailable)

	req := testutil.NewAuthenticatedRequest("POST", "/v1/tasks/"+task.ID.Hex()+"/take", testutil.FromUser(volunteer))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleTake(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var taken models.Task
	testutil.DecodeJSON(t, rec, &taken)
	require.Equal(t, models.TaskStatusAssigned, taken.Status)
}

func TestTakeTakenTaskIs400(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	volunteer := fx.CreateVolunteer(ctx, "v@test.com")
	task := fx.CreateTask(ctx, "Feed cats", owner, models.TaskStatusInProgress)

	req := testutil.NewAuthenticatedRequest("POST", "/v1/tasks/"+task.ID.Hex()+"/take", testutil.FromUser(volunteer))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleTake(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "task is not available")
}

func TestReleaseWithoutHoldingIs400(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	volunteer := fx.CreateVolunteer(ctx, "v@test.com")
	task := fx.CreateTask(ctx, "Feed cats", owner, models.TaskStatusAvailable)

	req := testutil.NewAuthenticatedRequest("POST", "/v1/tasks/"+task.ID.Hex()+"/release", testutil.FromUser(volunteer))
	req = testutil.WithChiURLParam(req, "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleRelease(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "task is not assigned")
}

func TestListFiltersTypesDroppingUnknowns(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	ts := taskstore.New(fx.DB())
	for _, typ := range []string{models.TaskTypeAnimals, models.TaskTypeRemote} {
		_, err := ts.Create(ctx, models.Task{Title: "Task " + typ, Type: typ, OwnerID: owner.ID})
		require.NoError(t, err)
	}

	// Unknown type values are dropped rather than matched.
	req := httptest.NewRequest("GET", "/v1/tasks?type=animals,bogus", nil)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []models.Task
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	require.Equal(t, models.TaskTypeAnimals, list[0].Type)
}

func TestListFiltersPriorities(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	ts := taskstore.New(fx.DB())
	for _, p := range []string{"low", "high", "hot"} {
		_, err := ts.Create(ctx, models.Task{Title: "Task " + p, Priority: p, OwnerID: owner.ID})
		require.NoError(t, err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/v1/tasks?priority=high,hot", testutil.FromUser(owner))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []models.Task
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 2)
	for _, task := range list {
		require.Contains(t, []string{"high", "hot"}, task.Priority)
	}
}
