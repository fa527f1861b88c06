package ftrl

import (
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"github.com/YuminosukeSato/ftrl/core/frame"
)

// NAHash is the value hash of a missing cell.
const NAHash uint64 = math.MaxUint64

// DefaultStringCacheSize bounds the number of distinct strings whose hashes are cached.
const DefaultStringCacheSize = 4096

// HashColumn returns the hash of a column name.
func HashColumn(name string) uint64 {
	return murmur2([]byte(name), 0)
}

// HashFeature combines a value hash with its column hash. Overflow wraps.
func HashFeature(valueHash, columnHash uint64) uint64 {
	return valueHash + columnHash
}

// HashInteraction hashes an unordered pair of feature hashes, hi from the
// lower-index column.
func HashInteraction(hi, hj uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], hi)
	binary.LittleEndian.PutUint64(buf[8:], hj)
	return murmur2(buf[:], 0)
}

// HashBool returns 1 for true and 0 for false.
func HashBool(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// HashInt returns the two's-complement bit pattern of v.
func HashInt(v int64) uint64 {
	return uint64(v)
}

// HashFloat returns the IEEE-754 bits of v with negative zero folded into zero.
func HashFloat(v float64) uint64 {
	if v == 0 {
		return 0
	}
	return math.Float64bits(v)
}

// HashString returns the murmur hash of the bytes of s.
func HashString(s string) uint64 {
	return murmur2([]byte(s), 0)
}

// Hasher produces value hashes for frame cells. String hashes are memoized in
// a bounded LRU cache shared by every column.
type Hasher struct {
	strings *lru.Cache
}

// NewHasher creates a Hasher whose string cache holds up to size entries.
// A size <= 0 disables the cache.
func NewHasher(size int) *Hasher {
	h := &Hasher{}
	if size > 0 {
		// lru.New only fails for non-positive sizes
		h.strings, _ = lru.New(size)
	}
	return h
}

// HashString is HashString backed by the cache.
func (h *Hasher) HashString(s string) uint64 {
	if h == nil || h.strings == nil {
		return HashString(s)
	}
	if v, ok := h.strings.Get(s); ok {
		return v.(uint64)
	}
	v := HashString(s)
	h.strings.Add(s, v)
	return v
}

// ValueFunc returns a function computing the value hash of row i of col.
// Missing cells hash to NAHash.
func (h *Hasher) ValueFunc(col frame.Column) func(i int) uint64 {
	switch c := col.(type) {
	case *frame.BoolColumn:
		return func(i int) uint64 {
			if c.IsNA(i) {
				return NAHash
			}
			return HashBool(c.Value(i))
		}
	case *frame.IntColumn:
		return func(i int) uint64 {
			if c.IsNA(i) {
				return NAHash
			}
			return HashInt(c.Value(i))
		}
	case *frame.FloatColumn:
		return func(i int) uint64 {
			if c.IsNA(i) {
				return NAHash
			}
			return HashFloat(c.Value(i))
		}
	case *frame.StringColumn:
		return func(i int) uint64 {
			if c.IsNA(i) {
				return NAHash
			}
			return h.HashString(c.Value(i))
		}
	default:
		return func(int) uint64 { return NAHash }
	}
}
