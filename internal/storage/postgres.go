package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lifeline/internal/platform/postgres"
	txcontext "lifeline/pkg/platform/tx"
)

// Postgres stores every table in PostgreSQL. Methods run on the transaction
// carried by ctx when there is one.
type Postgres struct {
	db *sql.DB
	tx *postgres.TxRunner
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, tx: postgres.NewTxRunner(db)}
}

func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.tx.RunInTx(ctx, fn)
}

func (p *Postgres) exec(ctx context.Context) txcontext.Executor {
	return txcontext.Pick(ctx, p.db)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUUID[T ~[16]byte](v *T) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*v), Valid: true}
}

func fromNullUUID[T ~[16]byte](v uuid.NullUUID) *T {
	if !v.Valid {
		return nil
	}
	out := T(v.UUID)
	return &out
}

func requireOneRow(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
