package pending

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetAndTombstone(t *testing.T) {
	var p Pending

	p.Set([]byte("apple"), []byte("red"))
	p.Set([]byte("banana"), []byte("yellow"))
	p.Set([]byte("cherry"), []byte("red"))
	require.False(t, p.Empty())

	val, found := p.Get([]byte("banana"))
	require.True(t, found)
	require.Equal(t, []byte("yellow"), val)

	p.Set([]byte("banana"), nil)
	val, found = p.Get([]byte("banana"))
	require.True(t, found)
	require.Nil(t, val)

	_, found = p.Get([]byte("durian"))
	require.False(t, found)
}

func TestReset(t *testing.T) {
	var p Pending
	p.Set([]byte("k"), []byte("v"))
	require.False(t, p.Empty())
	p.Reset()
	require.True(t, p.Empty())
	_, found := p.Get([]byte("k"))
	require.False(t, found)
}

func TestItemsAscendingWithTombstones(t *testing.T) {
	var p Pending
	p.Set([]byte("cherry"), []byte("red"))
	p.Set([]byte("apple"), []byte("red"))
	p.Set([]byte("banana"), nil)

	var keys []string
	var tombstones []bool
	p.Items(func(key, val []byte) bool {
		keys = append(keys, string(key))
		tombstones = append(tombstones, val == nil)
		return true
	})

	require.Equal(t, []string{"apple", "banana", "cherry"}, keys)
	require.Equal(t, []bool{false, true, false}, tombstones)
}

func TestIterSeekAndNavigate(t *testing.T) {
	var p Pending
	p.Set([]byte("apple"), []byte("red"))
	p.Set([]byte("banana"), []byte("yellow"))
	p.Set([]byte("cherry"), []byte("red"))

	it := p.Iter()
	require.True(t, it.SeekFirst())
	require.Equal(t, "apple", string(it.Key()))
	require.True(t, it.Next())
	require.Equal(t, "banana", string(it.Key()))
	require.True(t, it.Next())
	require.Equal(t, "cherry", string(it.Key()))
	require.False(t, it.Next())

	require.True(t, it.SeekLast())
	require.Equal(t, "cherry", string(it.Key()))
	require.True(t, it.Prev())
	require.Equal(t, "banana", string(it.Key()))

	require.True(t, it.Seek([]byte("b")))
	require.Equal(t, "banana", string(it.Key()))

	require.False(t, it.Seek([]byte("z")))
	require.False(t, it.Valid())
}

func TestSetUpdatesExistingKeyInPlace(t *testing.T) {
	var p Pending
	p.Set([]byte("k"), []byte("v1"))
	p.Set([]byte("k"), []byte("v2"))

	val, found := p.Get([]byte("k"))
	require.True(t, found)
	require.Equal(t, []byte("v2"), val)

	count := 0
	p.Items(func(key, val []byte) bool {
		count++
		return true
	})
	require.Equal(t, 1, count)
}
