// Package entropy provides the RandomSource and Clock capabilities that
// workflow code uses instead of global randomness and wall clocks. The
// workflow binds them to replay-safe primitives at entry; clients and
// activities bind them to the system.
package entropy

import (
	"fmt"
	"time"
)

// RandomSource produces random values. Workflow code must only use a source
// whose output is a pure function of its seeded state.
type RandomSource interface {
	Uint64() uint64
	Float64() float64
	UUID() string
}

// Clock reads the current time. Workflow code must only use a clock backed
// by the engine's deterministic time.
type Clock interface {
	Now() time.Time
}

// Xorshift64 is a deterministic RandomSource. The same seed always yields
// the same sequence, which keeps workflow replay stable. State is exported
// so the generator survives ContinueAsNew serialisation.
type Xorshift64 struct {
	State uint64 `json:"state"`
}

// NewXorshift64 creates a generator from seed. A zero seed is replaced with
// a fixed non-zero constant since xorshift has a zero fixed point.
func NewXorshift64(seed uint64) *Xorshift64 {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &Xorshift64{State: seed}
}

// Uint64 advances the generator and returns the next value.
func (x *Xorshift64) Uint64() uint64 {
	s := x.State
	s ^= s << 13
	s ^= s >> 7
	s ^= s << 17
	x.State = s
	return s
}

// Float64 returns a value in [0, 1) with 53 bits of precision.
func (x *Xorshift64) Float64() float64 {
	return float64(x.Uint64()>>11) / (1 << 53)
}

// UUID returns a version-4-shaped UUID string drawn from the generator.
func (x *Xorshift64) UUID() string {
	var buf [16]byte
	hi := x.Uint64()
	lo := x.Uint64()
	for i := 0; i < 8; i++ {
		buf[i] = byte(hi >> (8 * uint(7-i)))
		buf[8+i] = byte(lo >> (8 * uint(7-i)))
	}
	buf[6] = (buf[6] & 0x0F) | 0x40
	buf[8] = (buf[8] & 0x3F) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", buf[0:4], buf[4:6], buf[6:8], buf[8:10], buf[10:16])
}
