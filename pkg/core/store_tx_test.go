package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/docmirror/pkg/model"
)

func TestRunInTransactionCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		if err := tx.Add(ctx, doc(t, "rooms/a", "a")); err != nil {
			return err
		}
		return tx.Add(ctx, doc(t, "rooms/b", "b"))
	})
	require.NoError(t, err)

	got, err := store.GetAll(ctx, []model.DocumentKey{key(t, "rooms/a"), key(t, "rooms/b")})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		if err := tx.Add(ctx, doc(t, "rooms/a", "a")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, key(t, "rooms/a"))
	require.NoError(t, err)
	assert.Nil(t, got, "write inside a failed transaction must not persist")
}

func TestTransactionReadsSeeOwnWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		if err := tx.Add(ctx, doc(t, "rooms/a", "a")); err != nil {
			return err
		}

		got, err := tx.Get(ctx, key(t, "rooms/a"))
		if err != nil {
			return err
		}
		require.NotNil(t, got, "transaction must read its own uncommitted write")

		if err := tx.Remove(ctx, key(t, "rooms/a")); err != nil {
			return err
		}

		rooms, err := model.ParsePath("rooms")
		if err != nil {
			return err
		}
		docs, err := tx.GetAllMatchingQuery(ctx, model.NewQuery(rooms))
		if err != nil {
			return err
		}
		assert.Zero(t, docs.Len())
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionGetAllEmptyInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		got, err := tx.GetAll(ctx, nil)
		if err != nil {
			return err
		}
		assert.Empty(t, got)
		return nil
	})
	require.NoError(t, err)
}
