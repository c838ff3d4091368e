// Package storage provides SQLite-based persistence for solve runs.
//
// The storage layer manages:
//   - Runs: one row per solve call, including failed ones
//   - Iterations: the trace of each run, one row per record
//   - Schema versions
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations (semver)
//   - runs: method, expression, parameters, status, root, error and timing
//   - iterations: (run_id, iteration) with estimate, residual and the JSON record
//
// Deleting a run cascades to its iterations.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.rootfinder/history.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	run := &storage.Run{Method: types.MethodSecant, Expression: "x^2 - 2", Status: types.StatusConverged}
//	if err := store.CreateRun(ctx, run); err != nil {
//	    return err
//	}
//
// # Transactions
//
// A run and its trace are written atomically:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.CreateRun(ctx, run); err != nil {
//	    return err
//	}
//	if err := tx.InsertIterations(ctx, run.ID, result.Trace); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// The pool holds a single connection, so while a transaction is open every call
// must go through the Tx rather than the parent storage.
//
// # Build Modes
//
// The pure Go driver (modernc.org/sqlite) is the default. Build with
// -tags sqlite_cgo to use github.com/mattn/go-sqlite3 instead. DriverName and
// BuildMode report which one was compiled in.
package storage
