package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commitErr  error
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error   { return t.commitErr }
func (t *fakeTx) Rollback(ctx context.Context) error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	txs   []*fakeTx
	begun int
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	tx := b.txs[b.begun]
	b.begun++
	return tx, nil
}

func serializationErr() error {
	return &pgconn.PgError{Code: serializationFailure, Message: "could not serialize access"}
}

func TestWithTxRetriesSerializationFailureOnce(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{}, {}}}

	calls := 0
	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error {
		calls++
		if calls == 1 {
			return serializationErr()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 2, beginner.begun)
}

func TestWithTxRetriesSerializationFailureAtCommit(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{commitErr: serializationErr()}, {}}}

	calls := 0
	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestWithTxGivesUpAfterSecondSerializationFailure(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{}, {}}}

	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error {
		return serializationErr()
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, serializationFailure, pgErr.Code)
	require.Equal(t, 2, beginner.begun)
}

func TestWithTxDoesNotRetryOtherErrors(t *testing.T) {
	beginner := &fakeBeginner{txs: []*fakeTx{{}, {}}}

	boom := errors.New("stock short")
	calls := 0
	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
	require.True(t, beginner.txs[0].rolledBack)
}
