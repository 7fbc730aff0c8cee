package doorlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/features/doorlog"
	"github.com/shelterhub/shelterhub/internal/app/notify"
	doorlogstore "github.com/shelterhub/shelterhub/internal/app/store/doorlogs"
	propertystore "github.com/shelterhub/shelterhub/internal/app/store/properties"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*doorlog.Handler, *doorlogstore.Store) {
	db := testutil.SetupTestDB(t)
	store := doorlogstore.New(db)
	// nil sender keeps fan-out a no-op.
	notifier := notify.New(propertystore.New(db), userstore.New(db), nil, zap.NewNop())
	return doorlog.NewHandler(store, notifier, zap.NewNop()), store
}

func TestAppendStoresUppercaseState(t *testing.T) {
	h, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewJSONRequest(t, "POST", "/v1/doorLog", map[string]any{"state": "open"})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleAppend(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var event models.DoorLog
	testutil.DecodeJSON(t, rec, &event)
	require.Equal(t, "OPEN", event.State)
	require.False(t, event.CreatedAt.IsZero())

	logs, err := store.List(ctx, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestAppendRejectsUnknownState(t *testing.T) {
	h, _ := setup(t)

	req := testutil.NewJSONRequest(t, "POST", "/v1/doorLog", map[string]any{"state": "ajar"})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleAppend(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiltersByState(t *testing.T) {
	h, store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, s := range []string{"OPEN", "CLOSE", "OPEN"} {
		_, err := store.Append(ctx, s)
		require.NoError(t, err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/v1/doorLog?state=OPEN", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var logs []models.DoorLog
	testutil.DecodeJSON(t, rec, &logs)
	require.Len(t, logs, 2)
	for _, l := range logs {
		require.Equal(t, "OPEN", l.State)
	}
}
