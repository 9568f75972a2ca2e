package lower

import (
	"crypto/sha256"

	"github.com/tidwall/tinylru"
	"github.com/weftlang/weft/internal/sourcecode"
)

const DEFAULT_UNIT_CACHE_SIZE = 256

// UnitCache is a bounded cache of fail-fast lowering results. Entries are keyed by the hash of the unit name,
// the unit code and the entry point: the tree passed to Lower is expected to be the grammar's output for the
// code. UnitCache is safe for concurrent use.
type UnitCache struct {
	lru  tinylru.LRU
	size int
}

func NewUnitCache(size int) *UnitCache {
	if size <= 0 {
		size = DEFAULT_UNIT_CACHE_SIZE
	}
	c := &UnitCache{size: size}
	c.lru.Resize(size)
	return c
}

type unitCacheKey [32]byte

func newUnitCacheKey(unit sourcecode.Unit, entry Entry) unitCacheKey {
	h := sha256.New()
	h.Write([]byte(unit.Name()))
	h.Write([]byte{0})
	h.Write([]byte(unit.Code()))
	h.Write([]byte{0, byte(entry)})

	var key unitCacheKey
	copy(key[:], h.Sum(nil))
	return key
}

func (c *UnitCache) Get(unit sourcecode.Unit, entry Entry) (*Result, bool) {
	v, ok := c.lru.Get(newUnitCacheKey(unit, entry))
	if !ok {
		return nil, false
	}
	return v.(*Result), true
}

// Put stores a successful result, results with errors are ignored.
func (c *UnitCache) Put(unit sourcecode.Unit, entry Entry, result *Result) {
	if result == nil || result.Node == nil || len(result.Errors) > 0 {
		return
	}
	c.lru.Set(newUnitCacheKey(unit, entry), result)
}

// Size returns the maximum number of entries.
func (c *UnitCache) Size() int {
	return c.size
}

func (c *UnitCache) Len() int {
	return c.lru.Len()
}

func (c *UnitCache) InvalidateAllEntries() {
	//Range holds the lock of the LRU, keys are deleted afterwards.
	var keys []interface{}
	c.lru.Range(func(key, _ interface{}) bool {
		keys = append(keys, key)
		return true
	})
	for _, key := range keys {
		c.lru.Delete(key)
	}
}
