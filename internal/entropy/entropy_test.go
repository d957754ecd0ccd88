package entropy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXorshift64Deterministic(t *testing.T) {
	a := NewXorshift64(12345)
	b := NewXorshift64(12345)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.Equal(t, a.UUID(), b.UUID())
	assert.Equal(t, a.Float64(), b.Float64())
}

func TestXorshift64SeedsDiverge(t *testing.T) {
	a := NewXorshift64(1)
	b := NewXorshift64(2)
	assert.NotEqual(t, a.Uint64(), b.Uint64())
}

func TestXorshift64ZeroSeed(t *testing.T) {
	x := NewXorshift64(0)
	// Zero is a fixed point of xorshift; the constructor must avoid it.
	assert.NotZero(t, x.Uint64())
	assert.NotZero(t, x.Uint64())
}

func TestXorshift64Float64Range(t *testing.T) {
	x := NewXorshift64(99)
	for i := 0; i < 1000; i++ {
		f := x.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestXorshift64UUIDShape(t *testing.T) {
	x := NewXorshift64(7)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s := x.UUID()
		parsed, err := uuid.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.Equal(t, uuid.RFC4122, parsed.Variant())
		assert.False(t, seen[s], "uuid repeated: %s", s)
		seen[s] = true
	}
}

func TestXorshift64StateResumes(t *testing.T) {
	a := NewXorshift64(42)
	a.Uint64()
	a.Uint64()

	// Restoring from serialised state continues the same sequence.
	b := &Xorshift64{State: a.State}
	assert.Equal(t, a.Uint64(), b.Uint64())
}

func TestSystemSource(t *testing.T) {
	var src SystemSource
	_, err := uuid.Parse(src.UUID())
	require.NoError(t, err)

	f := src.Float64()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}
