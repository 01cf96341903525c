package dedup

import (
	"testing"
	"time"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/stretchr/testify/assert"
)

func hashN(n byte) dbtype.Hash {
	var h dbtype.Hash
	h[0] = n
	return h
}

func TestTTLCacheInsertAndContains(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	h := hashN(1)
	assert.False(t, c.Contains(h))
	c.Insert(h)
	assert.True(t, c.Contains(h))
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheEvictsAfterTTL(t *testing.T) {
	c := New(20*time.Millisecond, 10)
	defer c.Close()

	h := hashN(2)
	c.Insert(h)
	assert.True(t, c.Contains(h))

	assert.Eventually(t, func() bool {
		return !c.Contains(h)
	}, time.Second, 5*time.Millisecond)
}

func TestTTLCacheEvictsOldestAtCapacity(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	c.Insert(hashN(1))
	c.Insert(hashN(2))
	c.Insert(hashN(3))

	assert.LessOrEqual(t, c.Len(), 2)
	assert.False(t, c.Contains(hashN(1)))
	assert.True(t, c.Contains(hashN(3)))
}

func TestNewClampsNonPositiveCapacity(t *testing.T) {
	c := New(time.Minute, 0)
	defer c.Close()
	c.Insert(hashN(1))
	assert.Equal(t, 1, c.Len())
}
