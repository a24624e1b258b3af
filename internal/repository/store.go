// Package repository implements PostgreSQL persistence for DefectDesk with
// hand-written SQL over a shared pgx pool. Defect mutations commit field
// writes and their audit rows in one transaction; no caller ever observes a
// half-applied update.
package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "defectdesk.io/desk/internal/pkg/errors"
)

// MigrationsFS holds the embedded SQL migrations (schema + seed data).
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// Store provides access to all DefectDesk tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store on the shared connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// storageErr classifies a database failure as STORAGE_UNAVAILABLE, the only
// error class a caller may retry. Not-found conditions are mapped before this.
func storageErr(op string, err error) error {
	return apperrors.ErrStorageUnavailable(fmt.Errorf("%s: %w", op, err))
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
