package storage

import (
	"context"
	"time"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// Storage defines the interface for persisting solve runs and their traces
type Storage interface {
	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Iteration operations
	InsertIterations(ctx context.Context, runID string, records []types.Record) error
	ListIterations(ctx context.Context, runID string) ([]types.Record, error)

	// Status operations
	GetStats(ctx context.Context) (*Stats, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Run is one persisted solve call. Root is nil when the solve failed.
type Run struct {
	ID            string
	Method        types.Method
	Expression    string
	Params        map[string]float64
	Tolerance     float64
	MaxIterations int
	Status        types.Status
	Root          *float64
	Iterations    int
	ErrorKind     string // Empty unless Status is failed
	ErrorMessage  string
	Duration      time.Duration
	CreatedAt     time.Time
}

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	Method     types.Method
	Status     types.Status
	Expression string
	Limit      int
}

// DefaultListLimit is used when RunFilter.Limit is not positive
const DefaultListLimit = 50

// Stats contains aggregate statistics about the run history
type Stats struct {
	RunsCount       int
	IterationsCount int
	ByStatus        map[types.Status]int
	ByMethod        map[types.Method]int
	LastRunAt       time.Time
	DatabaseSizeMB  float64
	Health          HealthStatus
}

// HealthStatus represents the health of the database
type HealthStatus struct {
	DatabaseAccessible bool
	SchemaVersion      string
}
