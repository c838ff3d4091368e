package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func ptr(v float64) *float64 { return &v }

func sampleTrace() []types.Record {
	return []types.Record{
		types.BisectionRecord{Iteration: 1, A: 0, B: 2, C: 1, FC: -1},
		types.BisectionRecord{Iteration: 2, A: 1, B: 2, C: 1.5, FC: 0.25},
		types.BisectionRecord{Iteration: 3, A: 1, B: 1.5, C: 1.25, FC: -0.4375},
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestClose(t *testing.T) {
	storage := setupTestDB(t)
	err := storage.Close()
	assert.NoError(t, err)
}

func TestCreateRun(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{
		Method:        types.MethodBisection,
		Expression:    "x^2 - 2",
		Params:        map[string]float64{"a": 0, "b": 2},
		Tolerance:     1e-6,
		MaxIterations: 50,
		Status:        types.StatusConverged,
		Root:          ptr(1.4142135),
		Iterations:    21,
		Duration:      1500 * time.Microsecond,
	}

	err := storage.CreateRun(ctx, run)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID, "an ID is generated when empty")
	assert.False(t, run.CreatedAt.IsZero())
}

func TestGetRun(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{
		ID:            "run-1",
		Method:        types.MethodSecant,
		Expression:    "x^2 - 2",
		Params:        map[string]float64{"x0": 1, "x1": 2},
		Tolerance:     1e-9,
		MaxIterations: 50,
		Status:        types.StatusExhausted,
		Root:          ptr(1.41),
		Iterations:    50,
		Duration:      2 * time.Millisecond,
	}
	require.NoError(t, storage.CreateRun(ctx, run))

	got, err := storage.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, types.MethodSecant, got.Method)
	assert.Equal(t, "x^2 - 2", got.Expression)
	assert.Equal(t, map[string]float64{"x0": 1, "x1": 2}, got.Params)
	assert.Equal(t, 1e-9, got.Tolerance)
	assert.Equal(t, 50, got.MaxIterations)
	assert.Equal(t, types.StatusExhausted, got.Status)
	require.NotNil(t, got.Root)
	assert.Equal(t, 1.41, *got.Root)
	assert.Equal(t, 2*time.Millisecond, got.Duration)
	assert.Empty(t, got.ErrorKind)
}

func TestGetRun_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRun_Duplicate(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{ID: "dup", Method: types.MethodBisection, Expression: "x", Tolerance: 1, MaxIterations: 1, Status: types.StatusConverged}
	require.NoError(t, storage.CreateRun(ctx, run))

	again := *run
	err := storage.CreateRun(ctx, &again)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFailedRun(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{
		Method:        types.MethodNewtonRaphson,
		Expression:    "1",
		Params:        map[string]float64{"x0": 0},
		Tolerance:     1e-6,
		MaxIterations: 50,
		Status:        types.StatusFailed,
		ErrorKind:     "stationary_derivative",
		ErrorMessage:  "newton_raphson failed at iteration 1: derivative is too close to zero",
	}
	require.NoError(t, storage.CreateRun(ctx, run))

	got, err := storage.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Root)
	assert.Equal(t, "stationary_derivative", got.ErrorKind)
	assert.Equal(t, run.ErrorMessage, got.ErrorMessage)

	records, err := storage.ListIterations(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRuns(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	fixtures := []struct {
		method types.Method
		status types.Status
		expr   string
	}{
		{types.MethodBisection, types.StatusConverged, "x^2 - 2"},
		{types.MethodNewtonRaphson, types.StatusConverged, "x^2 - 2"},
		{types.MethodNewtonRaphson, types.StatusFailed, "1"},
		{types.MethodSecant, types.StatusExhausted, "cos(x) - x"},
	}
	var ids []string
	for _, f := range fixtures {
		run := &Run{Method: f.method, Expression: f.expr, Tolerance: 1e-6, MaxIterations: 50, Status: f.status}
		require.NoError(t, storage.CreateRun(ctx, run))
		ids = append(ids, run.ID)
	}

	all, err := storage.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[3].ID)

	newton, err := storage.ListRuns(ctx, RunFilter{Method: types.MethodNewtonRaphson})
	require.NoError(t, err)
	assert.Len(t, newton, 2)

	converged, err := storage.ListRuns(ctx, RunFilter{Method: types.MethodNewtonRaphson, Status: types.StatusConverged})
	require.NoError(t, err)
	require.Len(t, converged, 1)
	assert.Equal(t, ids[1], converged[0].ID)

	byExpr, err := storage.ListRuns(ctx, RunFilter{Expression: "x^2 - 2"})
	require.NoError(t, err)
	assert.Len(t, byExpr, 2)

	limited, err := storage.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := storage.ListRuns(ctx, RunFilter{Status: types.StatusExhausted, Method: types.MethodBisection})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIterationsRoundTrip(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{Method: types.MethodBisection, Expression: "x^2 - 2", Tolerance: 1e-6, MaxIterations: 50, Status: types.StatusExhausted, Iterations: 3}
	require.NoError(t, storage.CreateRun(ctx, run))

	trace := sampleTrace()
	require.NoError(t, storage.InsertIterations(ctx, run.ID, trace))

	got, err := storage.ListIterations(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, trace, got)
}

func TestInsertIterations_Errors(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	err := storage.InsertIterations(ctx, "missing", sampleTrace())
	assert.ErrorIs(t, err, ErrNotFound)

	run := &Run{Method: types.MethodBisection, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: types.StatusConverged}
	require.NoError(t, storage.CreateRun(ctx, run))
	require.NoError(t, storage.InsertIterations(ctx, run.ID, sampleTrace()[:1]))

	err = storage.InsertIterations(ctx, run.ID, sampleTrace()[:1])
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = storage.ListIterations(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRun(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	run := &Run{Method: types.MethodBisection, Expression: "x^2 - 2", Tolerance: 1e-6, MaxIterations: 50, Status: types.StatusExhausted}
	require.NoError(t, storage.CreateRun(ctx, run))
	require.NoError(t, storage.InsertIterations(ctx, run.ID, sampleTrace()))

	require.NoError(t, storage.DeleteRun(ctx, run.ID))

	_, err := storage.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.IterationsCount, "iterations are removed with their run")

	assert.ErrorIs(t, storage.DeleteRun(ctx, run.ID), ErrNotFound)
}

func TestGetStats(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RunsCount)
	assert.True(t, stats.LastRunAt.IsZero())
	assert.True(t, stats.Health.DatabaseAccessible)
	assert.Equal(t, CurrentSchemaVersion, stats.Health.SchemaVersion)

	for _, status := range []types.Status{types.StatusConverged, types.StatusConverged, types.StatusFailed} {
		run := &Run{Method: types.MethodBisection, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: status}
		require.NoError(t, storage.CreateRun(ctx, run))
	}
	run := &Run{Method: types.MethodSecant, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: types.StatusExhausted}
	require.NoError(t, storage.CreateRun(ctx, run))
	require.NoError(t, storage.InsertIterations(ctx, run.ID, []types.Record{
		types.SecantRecord{Iteration: 1, X0: 1, X1: 2, FX0: -1, FX1: 2, XNew: 1.33},
	}))

	stats, err = storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.RunsCount)
	assert.Equal(t, 1, stats.IterationsCount)
	assert.Equal(t, 2, stats.ByStatus[types.StatusConverged])
	assert.Equal(t, 1, stats.ByStatus[types.StatusFailed])
	assert.Equal(t, 3, stats.ByMethod[types.MethodBisection])
	assert.Equal(t, 1, stats.ByMethod[types.MethodSecant])
	assert.False(t, stats.LastRunAt.IsZero())
}

func TestBeginTx_CommitRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		tx, err := storage.BeginTx(ctx)
		require.NoError(t, err)

		run := &Run{ID: "committed", Method: types.MethodBisection, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: types.StatusExhausted}
		require.NoError(t, tx.CreateRun(ctx, run))
		require.NoError(t, tx.InsertIterations(ctx, run.ID, sampleTrace()))

		// reads inside the transaction see its writes
		got, err := tx.ListIterations(ctx, run.ID)
		require.NoError(t, err)
		assert.Len(t, got, 3)

		require.NoError(t, tx.Commit())

		_, err = storage.GetRun(ctx, "committed")
		assert.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		tx, err := storage.BeginTx(ctx)
		require.NoError(t, err)

		run := &Run{ID: "rolled-back", Method: types.MethodBisection, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: types.StatusExhausted}
		require.NoError(t, tx.CreateRun(ctx, run))
		require.NoError(t, tx.Rollback())

		_, err = storage.GetRun(ctx, "rolled-back")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("nested transactions are rejected", func(t *testing.T) {
		tx, err := storage.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.BeginTx(ctx)
		assert.Error(t, err)
		assert.NoError(t, tx.Close())
	})
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	run := &Run{ID: "persisted", Method: types.MethodSecant, Expression: "x", Tolerance: 1, MaxIterations: 3, Status: types.StatusConverged}
	require.NoError(t, storage.CreateRun(ctx, run))
	require.NoError(t, storage.Close())

	// Reopening applies no migrations twice and keeps the data
	storage, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer storage.Close()

	got, err := storage.GetRun(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, types.MethodSecant, got.Method)
}

func TestMigrations(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	v, err := currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())

	// Applying again is a no-op
	require.NoError(t, ApplyMigrations(ctx, storage.db))

	require.NoError(t, RollbackMigration(ctx, storage.db))
	v, err = currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.String())

	require.NoError(t, RollbackMigration(ctx, storage.db))
	v, err = currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", v.String())

	err = RollbackMigration(ctx, storage.db)
	assert.Error(t, err)

	require.NoError(t, ApplyMigrations(ctx, storage.db))
	v, err = currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestBuildMode(t *testing.T) {
	assert.Contains(t, []string{"cgo", "purego"}, BuildMode)
	assert.NotEmpty(t, DriverName)
}
