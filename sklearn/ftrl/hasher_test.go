package ftrl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/ftrl/core/frame"
)

func TestHashColumnDefaultNames(t *testing.T) {
	expected := []uint64{
		1838936504594058908, 14027412581578625840,
		14296604503264754754, 3956937694466614811,
		10071734010655191393, 6063711047550005084,
		4309007444360962581, 4517980897659475069,
		17871586791652695964, 15779814813469047786,
	}
	for j, want := range expected {
		assert.Equal(t, want, HashColumn(frame.DefaultName(j)), "column C%d", j)
	}
}

func TestMurmurEmpty(t *testing.T) {
	assert.Equal(t, uint64(0), murmur2(nil, 0))
	assert.Equal(t, uint64(0), HashString(""))
	assert.NotEqual(t, murmur2([]byte("abcdefgh"), 0), murmur2([]byte("abcdefgi"), 0))
}

func TestValueHashes(t *testing.T) {
	assert.Equal(t, uint64(1), HashBool(true))
	assert.Equal(t, uint64(0), HashBool(false))
	assert.Equal(t, uint64(42), HashInt(42))
	assert.Equal(t, uint64(math.MaxUint64), HashInt(-1))
	assert.Equal(t, HashFloat(0), HashFloat(math.Copysign(0, -1)))
	assert.Equal(t, math.Float64bits(1.5), HashFloat(1.5))
	assert.Equal(t, uint64(5), HashFeature(math.MaxUint64, 6))
}

func TestHashInteraction(t *testing.T) {
	a, b := HashColumn("a"), HashColumn("b")
	assert.Equal(t, HashInteraction(a, b), HashInteraction(a, b))
	assert.NotEqual(t, HashInteraction(a, b), HashInteraction(b, a))
}

func TestHasherCache(t *testing.T) {
	cached := NewHasher(2)
	plain := NewHasher(0)
	for _, s := range []string{"Monday", "Tuesday", "Monday", "Wednesday", "Monday"} {
		assert.Equal(t, HashString(s), cached.HashString(s))
		assert.Equal(t, HashString(s), plain.HashString(s))
	}
	assert.Equal(t, 2, cached.strings.Len())
}

func TestValueFuncMissing(t *testing.T) {
	h := NewHasher(8)
	b, err := frame.NewBoolColumn("b", []bool{true, false}, []bool{true, false})
	require.NoError(t, err)
	s, err := frame.NewStringColumn("s", []string{"x", ""}, []bool{true, false})
	require.NoError(t, err)

	cases := []struct {
		col  frame.Column
		want uint64
	}{
		{b, 1},
		{frame.Ints("i", 7, 0), 7},
		{frame.Floats("f", 2.5, math.NaN()), math.Float64bits(2.5)},
		{s, HashString("x")},
	}
	for _, tc := range cases {
		fn := h.ValueFunc(tc.col)
		assert.Equal(t, tc.want, fn(0), tc.col.Name())
	}
	assert.Equal(t, NAHash, h.ValueFunc(b)(1))
	assert.Equal(t, NAHash, h.ValueFunc(frame.Floats("f", math.NaN()))(0))
	assert.Equal(t, NAHash, h.ValueFunc(s)(1))
}

func TestFeatureMapper(t *testing.T) {
	X := frame.MustNew(frame.Ints("", 1, 2), frame.Strings("", "a", "b"), frame.Bools("", true, false))
	hashes := columnHashes(X)
	const d = 1000

	m := newFeatureMapper(X, hashes, d, false, NewHasher(0))
	assert.Equal(t, []int{0, 1, 2}, m.owner)
	buf := m.newBuffer()
	m.mapRow(0, buf)
	assert.Equal(t, []uint64{
		HashFeature(1, hashes[0]) % d,
		HashFeature(HashString("a"), hashes[1]) % d,
		HashFeature(1, hashes[2]) % d,
	}, buf.index)

	mi := newFeatureMapper(X, hashes, d, true, NewHasher(0))
	assert.Equal(t, []int{0, 1, 2, 0, 0, 1}, mi.owner)
	assert.Equal(t, 6, nFeatures(3, true))
	ibuf := mi.newBuffer()
	mi.mapRow(1, ibuf)
	h0 := HashFeature(2, hashes[0])
	h1 := HashFeature(HashString("b"), hashes[1])
	h2 := HashFeature(0, hashes[2])
	assert.Equal(t, h0%d, ibuf.index[0])
	assert.Equal(t, HashInteraction(h0, h1)%d, ibuf.index[3])
	assert.Equal(t, HashInteraction(h0, h2)%d, ibuf.index[4])
	assert.Equal(t, HashInteraction(h1, h2)%d, ibuf.index[5])
}
