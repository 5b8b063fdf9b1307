package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"checkyourtime/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// activityTestSetup seeds a user with one category and one active session.
func activityTestSetup(t *testing.T, database *sql.DB) (userID, sessionID, categoryID int64) {
	t.Helper()
	ctx := context.Background()

	userID = seedUser(t, database)
	require.NoError(t, NewSQLiteCategoryRepo(database).CreateBatch(ctx, userID, []string{"Work"}))

	categories, err := NewSQLiteCategoryRepo(database).ListByUser(ctx, userID)
	require.NoError(t, err)
	categoryID = categories[0].ID

	sessionID, err = NewSQLiteSessionRepo(database).Create(ctx, userID, time.Now().UTC())
	require.NoError(t, err)
	return userID, sessionID, categoryID
}

func TestActivityRepo_CreateAndGetOpen(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	_, sessionID, _ := activityTestSetup(t, database)

	a := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, a))

	fetched, err := repo.GetOpen(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, fetched.ID)
	assert.Equal(t, sessionID, fetched.SessionID)
	assert.True(t, fetched.Open())
	assert.WithinDuration(t, a.Start, fetched.Start, time.Second)
	assert.WithinDuration(t, a.Finish, fetched.Finish, time.Second)
}

func TestActivityRepo_GetOpen_NotFound(t *testing.T) {
	repo := NewSQLiteActivityRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.GetOpen(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityRepo_Close(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	_, sessionID, categoryID := activityTestSetup(t, database)

	a := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Close(ctx, a.ID, categoryID))

	// Once closed it is no longer open.
	_, err := repo.GetOpen(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityRepo_Close_Twice(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	_, sessionID, categoryID := activityTestSetup(t, database)

	a := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Close(ctx, a.ID, categoryID))

	err := repo.Close(ctx, a.ID, categoryID)
	assert.ErrorIs(t, err, ErrNotFound, "second close must lose")
}

func TestActivityRepo_ListUnfilledByUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	userID, sessionID, categoryID := activityTestSetup(t, database)

	filled := testutil.NewTestActivity(sessionID, 900)
	open := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, filled))
	require.NoError(t, repo.Create(ctx, open))
	require.NoError(t, repo.Close(ctx, filled.ID, categoryID))

	list, err := repo.ListUnfilledByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
}

func TestActivityRepo_ListUnfilledByUser_AllFilled(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	userID, sessionID, categoryID := activityTestSetup(t, database)

	a := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Close(ctx, a.ID, categoryID))

	_, err := repo.ListUnfilledByUser(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityRepo_ListLabeledBySessions(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteActivityRepo(database)
	ctx := context.Background()

	_, sessionID, categoryID := activityTestSetup(t, database)

	later := testutil.NewTestActivity(sessionID, 900)
	earlier := testutil.NewTestActivity(sessionID, 900, testutil.WithSpan(
		later.Start.Add(-time.Hour), later.Start))
	open := testutil.NewTestActivity(sessionID, 900)
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, earlier))
	require.NoError(t, repo.Create(ctx, open))
	require.NoError(t, repo.Close(ctx, later.ID, categoryID))
	require.NoError(t, repo.Close(ctx, earlier.ID, categoryID))

	list, err := repo.ListLabeledBySessions(ctx, []int64{sessionID})
	require.NoError(t, err)
	require.Len(t, list, 2, "open activities are excluded")
	// Ordered by start.
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
	assert.Equal(t, "Work", list[0].CategoryName)
}

func TestActivityRepo_ListLabeledBySessions_Empty(t *testing.T) {
	repo := NewSQLiteActivityRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.ListLabeledBySessions(ctx, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
