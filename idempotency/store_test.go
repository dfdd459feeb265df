package idempotency

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailKeyStable(t *testing.T) {
	assert.Equal(t, EmailKey("a@b.c", "Hi"), EmailKey("a@b.c", "Hi"))
	assert.NotEqual(t, EmailKey("a@b.c", "Hi"), EmailKey("a@b.c", "Hello"))
	assert.Len(t, EmailKey("", ""), 64)
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Release(ctx, "k1"))
	ok, err = s.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Reserve(ctx, "race")
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	ok, err := reopened.Reserve(context.Background(), "race")
	require.NoError(t, err)
	assert.False(t, ok, "keys survive reopening the file")
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("")
	require.Error(t, err)
}
