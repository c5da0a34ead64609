package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tidepool/internal/hostval"
)

func TestBatch_InsertThenFindReturnsID(t *testing.T) {
	d := openTestDB(t)

	err := d.Batch([]Operation{{
		CacheBehavior: CacheBehaviorAdd,
		Table:         "t",
		SQL:           "insert into t values(?, ?)",
		ArgsBatches:   []hostval.Array{{hostval.String("a"), hostval.String("x")}},
	}})
	require.NoError(t, err)

	// The batch marked the record cached, so find sends the id alone.
	found, err := d.Find("t", "a")
	require.NoError(t, err)
	assert.Equal(t, hostval.String("a"), found)

	raw, err := d.UnsafeQueryRaw("select v from t", nil)
	require.NoError(t, err)
	assert.Equal(t, hostval.Array{hostval.Object{"v": hostval.String("x")}}, raw)
}

func TestBatch_MultipleArgsBatches(t *testing.T) {
	d := openTestDB(t)

	err := d.Batch([]Operation{{
		CacheBehavior: CacheBehaviorAdd,
		Table:         "t",
		SQL:           "insert into t values(?, ?)",
		ArgsBatches: []hostval.Array{
			{hostval.String("a"), hostval.String("x")},
			{hostval.String("b"), hostval.String("y")},
			{hostval.String("c"), hostval.String("z")},
		},
	}})
	require.NoError(t, err)

	count, err := d.Count("select count(*) from t", nil)
	require.NoError(t, err)
	assert.Equal(t, hostval.Number(3), count)

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, d.IsCached(CacheKey("t", id)))
	}
}

func TestBatch_DeleteRemovesFromCache(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, d.executeMultiple("insert into t values('a', 'x')"))

	_, err := d.Find("t", "a")
	require.NoError(t, err)
	require.True(t, d.IsCached(CacheKey("t", "a")))

	err = d.Batch([]Operation{{
		CacheBehavior: CacheBehaviorRemove,
		Table:         "t",
		SQL:           "delete from t where id = ?",
		ArgsBatches:   []hostval.Array{{hostval.String("a")}},
	}})
	require.NoError(t, err)

	assert.False(t, d.IsCached(CacheKey("t", "a")))

	found, err := d.Find("t", "a")
	require.NoError(t, err)
	assert.Equal(t, hostval.Null{}, found, "deleted record should be gone")
}

func TestBatch_RollbackPreservesCacheAndData(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, d.executeMultiple("insert into t values('a', 'x')"))

	_, err := d.Find("t", "a")
	require.NoError(t, err)
	require.True(t, d.IsCached(CacheKey("t", "a")))

	// The second operation fails to prepare, forcing a rollback of the
	// delete that already executed.
	err = d.Batch([]Operation{
		{
			CacheBehavior: CacheBehaviorRemove,
			Table:         "t",
			SQL:           "delete from t where id = ?",
			ArgsBatches:   []hostval.Array{{hostval.String("a")}},
		},
		{
			CacheBehavior: CacheBehaviorNone,
			SQL:           "insert into no_such_table values(1)",
			ArgsBatches:   []hostval.Array{{}},
		},
	})
	require.Error(t, err)

	assert.True(t, d.IsCached(CacheKey("t", "a")), "cache must equal its pre-batch state after rollback")

	raw, err := d.UnsafeQueryRaw("select id from t", nil)
	require.NoError(t, err)
	assert.Len(t, raw, 1, "the rolled-back delete must not stick")
}

func TestBatch_AddThenRemoveNetsToRemoved(t *testing.T) {
	d := openTestDB(t)

	// On commit, adds apply before removes: a key in both ends up removed.
	err := d.Batch([]Operation{
		{
			CacheBehavior: CacheBehaviorAdd,
			Table:         "t",
			SQL:           "insert into t values(?, ?)",
			ArgsBatches:   []hostval.Array{{hostval.String("a"), hostval.String("x")}},
		},
		{
			CacheBehavior: CacheBehaviorRemove,
			Table:         "t",
			SQL:           "delete from t where id = ?",
			ArgsBatches:   []hostval.Array{{hostval.String("a")}},
		},
	})
	require.NoError(t, err)

	assert.False(t, d.IsCached(CacheKey("t", "a")))
}

func TestBatch_FlaggedOperationRequiresStringID(t *testing.T) {
	d := openTestDB(t)

	err := d.Batch([]Operation{{
		CacheBehavior: CacheBehaviorAdd,
		Table:         "t",
		SQL:           "insert into t values(?, ?)",
		ArgsBatches:   []hostval.Array{{hostval.Number(1), hostval.String("x")}},
	}})
	require.Error(t, err)
	assert.True(t, IsMissingID(err))

	// The failed batch rolled back; nothing was inserted.
	records, err := d.Query("t", "select * from t", nil)
	require.NoError(t, err)
	assert.Len(t, records, 0)
}

func TestBatch_SelectInsteadOfUpdateFails(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, d.executeMultiple("insert into t values('a', 'x')"))

	err := d.Batch([]Operation{{
		CacheBehavior: CacheBehaviorNone,
		SQL:           "select * from t",
		ArgsBatches:   []hostval.Array{{}},
	}})
	require.Error(t, err)
	assert.True(t, IsDBError(err), "a mutation returning rows is a DB error")
}

func TestDecodeOperations(t *testing.T) {
	wire := hostval.Array{
		hostval.Array{
			hostval.Number(1),
			hostval.String("t"),
			hostval.String("insert into t values(?, ?)"),
			hostval.Array{
				hostval.Array{hostval.String("a"), hostval.String("x")},
			},
		},
		hostval.Array{
			hostval.Number(0),
			hostval.Null{},
			hostval.String("update t set v = null"),
			hostval.Array{hostval.Array{}},
		},
	}

	operations, err := DecodeOperations(wire)
	require.NoError(t, err)
	require.Len(t, operations, 2)

	assert.Equal(t, CacheBehaviorAdd, operations[0].CacheBehavior)
	assert.Equal(t, "t", operations[0].Table)
	assert.Equal(t, "insert into t values(?, ?)", operations[0].SQL)
	require.Len(t, operations[0].ArgsBatches, 1)
	assert.Equal(t, hostval.Array{hostval.String("a"), hostval.String("x")}, operations[0].ArgsBatches[0])

	assert.Equal(t, CacheBehaviorNone, operations[1].CacheBehavior)
	assert.Equal(t, "", operations[1].Table, "table is ignored when cache behavior is 0")
}

func TestDecodeOperations_Malformed(t *testing.T) {
	cases := []struct {
		name string
		wire hostval.Value
	}{
		{"not an array", hostval.String("nope")},
		{"operation not an array", hostval.Array{hostval.String("nope")}},
		{"wrong arity", hostval.Array{hostval.Array{hostval.Number(0)}}},
		{"bad behavior", hostval.Array{hostval.Array{
			hostval.Number(2), hostval.String("t"), hostval.String("sql"), hostval.Array{},
		}}},
		{"bad sql", hostval.Array{hostval.Array{
			hostval.Number(0), hostval.Null{}, hostval.Number(7), hostval.Array{},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeOperations(tc.wire)
			assert.Error(t, err)
		})
	}
}

func TestBatch_ExecutesDecodedWireFormat(t *testing.T) {
	d := openTestDB(t)

	wire := hostval.Array{
		hostval.Array{
			hostval.Number(1),
			hostval.String("t"),
			hostval.String("insert into t values(?, ?)"),
			hostval.Array{
				hostval.Array{hostval.String("a"), hostval.String("x")},
			},
		},
	}
	operations, err := DecodeOperations(wire)
	require.NoError(t, err)

	require.NoError(t, d.Batch(operations))

	found, err := d.Find("t", "a")
	require.NoError(t, err)
	assert.Equal(t, hostval.String("a"), found)
}
