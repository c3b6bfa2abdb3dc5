//go:build integration_test || all_tests

package plans

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workouttracker/internal/db"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "workout_tracker_db",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func deleteAll(ctx context.Context, t *testing.T, repo *Repo) {
	t.Helper()
	_, err := repo.db.Exec(ctx, `DELETE FROM workout_plan_stations`)
	require.NoError(t, err)
	_, err = repo.db.Exec(ctx, `DELETE FROM workout_plans`)
	require.NoError(t, err)
}

func TestRepo_SaveUpsert(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleteAll(ctx, t, repo)

	id, err := repo.Save(ctx, SavePlanRequest{
		PlanDate: "2025-06-07",
		Theme:    "Strength (UB)",
		Branch:   "Mitte",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	plan, err := repo.Get(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, id, plan.ID)
	assert.Equal(t, "Strength (UB)", plan.Theme)
	require.NotNil(t, plan.Branch)
	assert.Equal(t, "Mitte", *plan.Branch)
	assert.Nil(t, plan.WorkoutType)
	assert.Equal(t, 0, plan.NoShow)

	// saving the same date again updates in place, id is stable
	id2, err := repo.Save(ctx, SavePlanRequest{
		PlanDate: "2025-06-07",
		Theme:    "Pump (UB)",
		NoShow:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	plan, err = repo.Get(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, "Pump (UB)", plan.Theme)
	assert.Equal(t, 1, plan.NoShow)
	// emptied optional fields reset to NULL
	assert.Nil(t, plan.Branch)
}

func TestRepo_GetNotFound(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleteAll(ctx, t, repo)

	_, err := repo.Get(ctx, "1999-01-01")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestRepo_ListRecent(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleteAll(ctx, t, repo)

	for _, date := range []string{"2025-06-01", "2025-06-03", "2025-06-05", "2025-06-07"} {
		_, err := repo.Save(ctx, SavePlanRequest{PlanDate: date, Theme: "Power"})
		require.NoError(t, err)
	}

	recent, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// newest plan date first
	assert.Equal(t, "2025-06-07", recent[0].PlanDate)
	assert.Equal(t, "2025-06-05", recent[1].PlanDate)
	assert.Equal(t, "2025-06-03", recent[2].PlanDate)

	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRepo_SaveStationsReplaces(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleteAll(ctx, t, repo)

	planID, err := repo.Save(ctx, SavePlanRequest{PlanDate: "2025-06-07", Theme: "Power"})
	require.NoError(t, err)

	err = repo.SaveStations(ctx, planID, []StationRequest{
		{StationNumber: 1, ExerciseName: "Squat", SetArrangement: "5x5"},
		{StationNumber: 2, ExerciseName: "   "},
		{StationNumber: 3, ExerciseName: "Leg Press", StationTime: "10min"},
	})
	require.NoError(t, err)

	stations, err := repo.Stations(ctx, planID)
	require.NoError(t, err)
	// blank exercise names are skipped
	require.Len(t, stations, 2)
	assert.Equal(t, "Squat", stations[0].ExerciseName)
	assert.Equal(t, "5x5", stations[0].SetArrangement)
	assert.Equal(t, "Leg Press", stations[1].ExerciseName)
	assert.Equal(t, "10min", stations[1].StationTime)

	// saving again fully replaces the previous set
	err = repo.SaveStations(ctx, planID, []StationRequest{
		{StationNumber: 1, ExerciseName: "Deadlift"},
	})
	require.NoError(t, err)

	stations, err = repo.Stations(ctx, planID)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Deadlift", stations[0].ExerciseName)
}

func TestRepo_DeleteCascadesToStations(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()
	deleteAll(ctx, t, repo)

	planID, err := repo.Save(ctx, SavePlanRequest{PlanDate: "2025-06-07", Theme: "Power"})
	require.NoError(t, err)
	err = repo.SaveStations(ctx, planID, []StationRequest{
		{StationNumber: 1, ExerciseName: "Squat"},
	})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.Get(ctx, "2025-06-07")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	stations, err := repo.Stations(ctx, planID)
	require.NoError(t, err)
	assert.Empty(t, stations)

	deleted, err = repo.Delete(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.False(t, deleted)
}
