package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTxIgnoresNil(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestPickFallsBackToDB(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, Pick(context.Background(), db))

	tx := &sql.Tx{}
	assert.Same(t, tx, Pick(WithTx(context.Background(), tx), db))
}
