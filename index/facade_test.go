package index_test

import (
	"context"
	"testing"

	"github.com/dacapoday/idxkv/bkeys"
	"github.com/dacapoday/idxkv/btree"
	"github.com/dacapoday/idxkv/index"
	"github.com/dacapoday/idxkv/keycodec"
	"github.com/dacapoday/idxkv/kvtx/memkv"
	"github.com/stretchr/testify/require"
)

type scope []byte

func (s scope) Scope() []byte { return s }

func TestFacadeInsertAndSearchEncodedKeys(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	idx := index.Open(scope("ix:users"), btree.Options{Order: 8})

	k1, err := keycodec.Nt.Encode("users", "alice")
	require.NoError(t, err)
	k2, err := keycodec.Nt.Encode("users", "bob")
	require.NoError(t, err)

	tx := db.Begin(true)
	require.NoError(t, idx.Insert(ctx, tx, k1, 101))
	require.NoError(t, idx.Insert(ctx, tx, k2, 102))
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	p, found, err := idx.Search(ctx, tx2, k1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, bkeys.Payload(101), p)

	_, found, err = idx.Search(ctx, tx2, []byte("missing"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestFacadeIterOrderedFollowsKeyOrder(t *testing.T) {
	ctx := context.Background()
	db := memkv.New()
	idx := index.Open(scope("ix:order"), btree.Options{Order: 4})

	tx := db.Begin(true)
	names := []string{"zeta", "mu", "alpha", "kappa"}
	for i, n := range names {
		k, err := keycodec.Nt.Encode("t", n)
		require.NoError(t, err)
		require.NoError(t, idx.Insert(ctx, tx, k, bkeys.Payload(i)))
	}
	require.NoError(t, tx.Commit())

	tx2 := db.Begin(false)
	seq, err := idx.IterOrdered(ctx, tx2)
	require.NoError(t, err)

	var keys [][]byte
	for k := range seq {
		keys = append(keys, append([]byte(nil), k...))
	}
	require.Len(t, keys, 4)
	for i := 1; i < len(keys); i++ {
		require.LessOrEqual(t, string(keys[i-1]), string(keys[i]))
	}
}
