package tasks_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/features/tasks"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestRoutesAccessRules(t *testing.T) {
	h, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "owner@paws.org", models.RoleOrganization, nil)
	task := fx.CreateTask(ctx, "Feed cats", owner, models.TaskStatusAvailable)

	router := tasks.Routes(h)

	// Reads are open to anonymous callers.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/"+task.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Mutation is not.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", map[string]any{"title": "New"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/"+task.ID.Hex()+"/take", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/"+task.ID.Hex(), nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Role gates still apply to signed-in callers.
	req := testutil.NewJSONRequest(t, "POST", "/", map[string]any{"title": "New"})
	req = testutil.WithUser(req, testutil.VolunteerUser())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
