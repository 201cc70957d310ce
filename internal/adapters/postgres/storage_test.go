package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vista-ui/internal/ports"
	"github.com/target/vista-ui/internal/testutil"
)

func TestStorage_RoundTrip(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	ctx := context.Background()
	p := NewStorageProvider(db)
	s := p.For("client-a")

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "token", "t1"))
	require.NoError(t, s.Set(ctx, "token", "t2"))
	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t2", v)

	require.NoError(t, s.Remove(ctx, "token"))
	_, ok, err = s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_BatchAndAdmin(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	ctx := context.Background()
	p := NewStorageProvider(db)

	a, ok := p.For("client-a").(ports.BatchStorage)
	require.True(t, ok)
	require.NoError(t, a.SetMany(ctx, map[string]string{"token": "t", "user": `{"id":1}`}))
	require.NoError(t, p.For("client-b").Set(ctx, "token", "other"))

	dump, err := p.Dump(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "t", "user": `{"id":1}`}, dump)

	require.NoError(t, a.RemoveMany(ctx, "token", "user"))
	dump, err = p.Dump(ctx, "client-a")
	require.NoError(t, err)
	assert.Empty(t, dump)

	require.NoError(t, p.Purge(ctx, "client-b"))
	dump, err = p.Dump(ctx, "client-b")
	require.NoError(t, err)
	assert.Empty(t, dump)
}

func TestAdmin_RequiresClientID(t *testing.T) {
	p := NewStorageProvider(nil)
	_, err := p.Dump(context.Background(), "")
	require.ErrorIs(t, err, ErrClientIDRequired)
	require.ErrorIs(t, p.Purge(context.Background(), ""), ErrClientIDRequired)
}

func TestMapErr_UndefinedTable(t *testing.T) {
	err := mapErr("get", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.UndefinedTable}))
	assert.ErrorIs(t, err, ErrSchemaMissing)

	other := errors.New("boom")
	err = mapErr("get", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrSchemaMissing)
}
