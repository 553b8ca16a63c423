package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := New("memory", "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put([]byte("k1"), []byte("v1")))

	value, ok, err := store.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)

	_, ok, err = store.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, store.Delete([]byte("k1")))

	ok, err := store.Has([]byte("k1"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONRoundTrip(t *testing.T) {
	store := newTestStore(t)

	type record struct {
		Name  string `json:"name"`
		Count uint64 `json:"count"`
	}

	require.NoError(t, store.PutJSON([]byte("rec"), &record{Name: "banner", Count: 3}))

	loaded := &record{}
	ok, err := store.GetJSON([]byte("rec"), loaded)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "banner", loaded.Name)
	require.Equal(t, uint64(3), loaded.Count)

	ok, err = store.GetJSON([]byte("missing"), loaded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPrefixIteration(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put([]byte("slot/a"), []byte("1")))
	require.NoError(t, store.Put([]byte("slot/b"), []byte("2")))
	require.NoError(t, store.Put([]byte("escrow/a"), []byte("3")))

	iter := store.NewIteratorWithPrefix([]byte("slot/"))
	defer iter.Release()

	var count int
	for iter.Next() {
		count++
	}
	require.NoError(t, iter.Error())
	require.Equal(t, 2, count)
}
