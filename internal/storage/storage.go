// Package storage is the persistence layer shared by every module: users,
// donors, hospitals, donation schedules and records, and blood requests.
//
// Memory keeps everything in process and is the default when no database is
// configured. Postgres stores the same data in PostgreSQL. Both satisfy the
// store interfaces declared by the services and both run multi-step
// workflows through RunInTx.
package storage

import (
	"errors"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// counterCeiling bounds the lives-saved counters to the INTEGER columns that
// hold them.
const counterCeiling = math.MaxInt32

// exceedsCeiling reports whether current+n would pass counterCeiling.
func exceedsCeiling(current, n int) bool {
	return n > counterCeiling-current
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
