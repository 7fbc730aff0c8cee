package users_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/features/users"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/app/system/auth"
	"github.com/shelterhub/shelterhub/internal/app/system/indexes"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*users.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	h := users.NewHandler(userstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestCreateHashesPassword(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewJSONRequest(t, "POST", "/v1/users", map[string]any{
		"email":     "new@test.com",
		"password":  "hunter22",
		"firstName": "Jane",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.User
	testutil.DecodeJSON(t, rec, &created)
	require.Equal(t, "new@test.com", created.Email)
	require.Equal(t, models.RoleUser, created.Role)

	stored, err := userstore.New(fx.DB()).GetByEmail(ctx, "new@test.com")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", stored.Password)
	require.True(t, auth.PasswordMatches(stored.Password, "hunter22"))
}

func TestCreateDuplicateEmailIs409(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, indexes.EnsureAll(ctx, fx.DB(), zap.NewNop()))
	fx.CreateVolunteer(ctx, "taken@test.com")

	req := testutil.NewJSONRequest(t, "POST", "/v1/users", map[string]any{
		"email":    "taken@test.com",
		"password": "hunter22",
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"email" already exists`)
}

func TestProfileReturnsCaller(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVolunteer(ctx, "me@test.com")
	req := testutil.NewAuthenticatedRequest("GET", "/v1/users/profile", testutil.FromUser(u))
	rec := httptest.NewRecorder()
	h.ServeProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	require.Equal(t, u.ID, got.ID)
}

func TestGetOtherUserIsForbidden(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	target := fx.CreateVolunteer(ctx, "target@test.com")
	caller := fx.CreateVolunteer(ctx, "caller@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/v1/users/"+target.ID.Hex(), testutil.FromUser(caller))
	req = testutil.WithChiURLParam(req, "userID", target.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleChangeIsAdminOnly(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVolunteer(ctx, "me@test.com")
	req := testutil.NewJSONRequest(t, "PATCH", "/v1/users/"+u.ID.Hex(), map[string]any{
		"role": "admin",
	})
	req = testutil.WithUser(req, testutil.FromUser(u))
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "only admins may change roles")
}

func TestUpdateTelegramNotifications(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVolunteer(ctx, "me@test.com")
	req := testutil.NewJSONRequest(t, "PATCH", "/v1/users/"+u.ID.Hex(), map[string]any{
		"telegramNotifications": true,
		"firstName":             "Renamed",
	})
	req = testutil.WithUser(req, testutil.FromUser(u))
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.User
	testutil.DecodeJSON(t, rec, &updated)
	require.True(t, updated.Notifications.Telegram)
	require.Equal(t, "Renamed", updated.FirstName)
	require.Equal(t, "me@test.com", updated.Email)
}

func TestListFiltersByRole(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateVolunteer(ctx, "a@test.com")
	fx.CreateVolunteer(ctx, "b@test.com")
	fx.CreateUser(ctx, "admin@test.com", models.RoleAdmin, nil)

	req := testutil.NewAuthenticatedRequest("GET", "/v1/users?role=user", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []models.User
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 2)
}

func TestListRejectsBadOrganizationID(t *testing.T) {
	h, _ := setup(t)

	req := testutil.NewAuthenticatedRequest("GET", "/v1/users?organizationId=nope", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "organizationId")
}

func TestDeleteSelf(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateVolunteer(ctx, "me@test.com")
	req := testutil.NewAuthenticatedRequest("DELETE", "/v1/users/"+u.ID.Hex(), testutil.FromUser(u))
	req = testutil.WithChiURLParam(req, "userID", u.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err := userstore.New(fx.DB()).GetByID(ctx, u.ID)
	require.Error(t, err)
}
