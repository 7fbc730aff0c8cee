package taskstore_test

import (
	"testing"

	taskstore "github.com/shelterhub/shelterhub/internal/app/store/tasks"
	"github.com/shelterhub/shelterhub/internal/app/system/indexes"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestCreateAppliesDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.Task{Title: "Walk dogs"})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusAvailable, created.Status)
	require.Equal(t, models.TaskPriorityMedium, created.Priority)
	require.Equal(t, models.TaskTypeOther, created.Type)
	require.False(t, created.CreatedAt.IsZero())
}

func TestCreateStripsMarkup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.Task{
		Title:       `Feed <script>alert("x")</script>cats`,
		Description: `<b>bold</b> text`,
	})
	require.NoError(t, err)
	require.Equal(t, "Feed cats", created.Title)
	require.Equal(t, "bold text", created.Description)
}

func TestListExcludesHiddenAndDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateVolunteer(ctx, "owner@test.com")
	fx.CreateTask(ctx, "visible available", owner, models.TaskStatusAvailable)
	fx.CreateTask(ctx, "visible assigned", owner, models.TaskStatusAssigned)
	fx.CreateTask(ctx, "visible done", owner, models.TaskStatusDone)
	fx.CreateTask(ctx, "hidden", owner, models.TaskStatusHidden)
	fx.CreateTask(ctx, "deleted", owner, models.TaskStatusDeleted)

	list, err := s.List(ctx, taskstore.ListFilter{}, 0, 30)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, task := range list {
		require.NotContains(t, []string{models.TaskStatusHidden, models.TaskStatusDeleted}, task.Status)
	}
}

func TestListFiltersByPriority(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, p := range []string{
		models.TaskPriorityLow,
		models.TaskPriorityHigh,
		models.TaskPriorityHot,
	} {
		_, err := s.Create(ctx, models.Task{Title: "prio " + p, Priority: p})
		require.NoError(t, err)
	}

	list, err := s.List(ctx, taskstore.ListFilter{
		Priorities: []string{models.TaskPriorityHigh, models.TaskPriorityHot},
	}, 0, 30)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, task := range list {
		require.Contains(t, []string{models.TaskPriorityHigh, models.TaskPriorityHot}, task.Priority)
	}
}

func TestListFiltersByTypeAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.Task{
		{Title: "walk dogs", Type: models.TaskTypeAnimals, Status: models.TaskStatusAvailable},
		{Title: "website copy", Type: models.TaskTypeRemote, Status: models.TaskStatusDone},
		{Title: "drive supplies", Type: models.TaskTypeAuto, Status: models.TaskStatusAvailable},
	}
	for _, task := range seed {
		_, err := s.Create(ctx, task)
		require.NoError(t, err)
	}

	byType, err := s.List(ctx, taskstore.ListFilter{
		Types: []string{models.TaskTypeAnimals, models.TaskTypeAuto},
	}, 0, 30)
	require.NoError(t, err)
	require.Len(t, byType, 2)
	for _, task := range byType {
		require.Contains(t, []string{models.TaskTypeAnimals, models.TaskTypeAuto}, task.Type)
	}

	done, err := s.List(ctx, taskstore.ListFilter{
		Statuses: []string{models.TaskStatusDone},
	}, 0, 30)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, "website copy", done[0].Title)
}

func TestListSearchesTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Text search needs the title index.
	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()))

	_, err := s.Create(ctx, models.Task{Title: "Walk the shelter dogs"})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.Task{Title: "Clean the cattery"})
	require.NoError(t, err)

	list, err := s.List(ctx, taskstore.ListFilter{Title: "dogs"}, 0, 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Contains(t, list[0].Title, "dogs")
}

func TestTakeIfAvailableIsConditional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.Task{Title: "One slot"})
	require.NoError(t, err)

	first, err := s.TakeIfAvailable(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusAssigned, first.Status)

	// The second take loses: the status guard is in the filter.
	_, err = s.TakeIfAvailable(ctx, created.ID)
	require.ErrorIs(t, err, taskstore.ErrNotAvailable)
}

func TestReplacePreservesOwnershipAndCreation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateVolunteer(ctx, "owner@test.com")
	task := fx.CreateTask(ctx, "Original", owner, models.TaskStatusAvailable)

	replaced, err := s.Replace(ctx, task.ID, models.Task{Title: "Rewritten"})
	require.NoError(t, err)
	require.Equal(t, "Rewritten", replaced.Title)
	require.Equal(t, owner.ID, replaced.OwnerID)
	require.Equal(t, task.CreatedAt.Unix(), replaced.CreatedAt.Unix())
}

func TestUpdateSetsOnlyGivenFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.Task{Title: "Before", Priority: models.TaskPriorityLow})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, bson.M{"priority": models.TaskPriorityHot})
	require.NoError(t, err)
	require.Equal(t, "Before", updated.Title)
	require.Equal(t, models.TaskPriorityHot, updated.Priority)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}
