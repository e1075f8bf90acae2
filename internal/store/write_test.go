package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jcodec/internal/codec"
	"github.com/roach88/jcodec/internal/schema"
	"github.com/roach88/jcodec/internal/value"
)

func TestPut_SchemaMismatch(t *testing.T) {
	st := createTestStore(t, schema.LongSchema)
	ctx := context.Background()
	run, err := st.NewRun(ctx)
	require.NoError(t, err)

	err = st.Put(ctx, run, value.String("nope"), nil)
	require.Error(t, err)
	assert.True(t, codec.IsMismatch(err))

	n, err := st.Count(ctx, run)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPut_UnknownRun(t *testing.T) {
	st := createTestStore(t, schema.LongSchema)
	err := st.Put(context.Background(), "no-such-run", value.Long(1), nil)
	assert.Error(t, err)
}

func TestPutEncoded(t *testing.T) {
	st := createTestStore(t, schema.StringSchema)
	ctx := context.Background()
	run, err := st.NewRun(ctx)
	require.NoError(t, err)

	c, err := codec.New(schema.StringSchema)
	require.NoError(t, err)
	enc, err := c.Encode(value.String("hi"))
	require.NoError(t, err)

	require.NoError(t, st.PutEncoded(ctx, run, enc, []byte("p")))
	err = st.PutEncoded(ctx, run, []byte{0x09}, nil)
	require.Error(t, err)
	assert.True(t, codec.IsMalformed(err))

	assert.Equal(t, []value.Value{value.String("hi")}, scanKeys(t, st, run))
}

func TestPutBatch(t *testing.T) {
	st := createTestStore(t, schema.LongSchema)
	ctx := context.Background()
	run, err := st.NewRun(ctx)
	require.NoError(t, err)

	err = st.PutBatch(ctx, run, []Entry{
		{Key: value.Long(3), Payload: []byte("c")},
		{Key: value.Long(1), Payload: []byte("a")},
		{Key: value.Long(2), Payload: []byte("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Long(1), value.Long(2), value.Long(3)}, scanKeys(t, st, run))
}

func TestPutBatch_AllOrNothing(t *testing.T) {
	st := createTestStore(t, schema.LongSchema)
	ctx := context.Background()
	run, err := st.NewRun(ctx)
	require.NoError(t, err)

	err = st.PutBatch(ctx, run, []Entry{
		{Key: value.Long(1)},
		{Key: value.Bool(true)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")

	err = st.PutBatch(ctx, "no-such-run", []Entry{{Key: value.Long(1)}})
	require.Error(t, err)

	n, err := st.Count(ctx, run)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPut_CompressedPayload(t *testing.T) {
	st, err := Open(":memory:", schema.LongSchema, Options{Compress: true})
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	big := bytes.Repeat([]byte("payload "), 512)
	run := createTestRun(t, st)
	require.NoError(t, st.Put(ctx, run, value.Long(1), big))
	require.NoError(t, st.Put(ctx, run, value.Long(2), []byte("tiny")))

	var stored int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT length(payload) FROM entries WHERE run = ? ORDER BY id LIMIT 1`, run).Scan(&stored))
	assert.Less(t, stored, len(big)/4)

	entries, err := st.Entries(ctx, run)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, big, entries[0].Payload)
	assert.Equal(t, []byte("tiny"), entries[1].Payload)
}
