package entropy

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// SystemSource is the process-global RandomSource for code running outside
// workflows (clients, activities).
type SystemSource struct{}

func (SystemSource) Uint64() uint64   { return rand.Uint64() }
func (SystemSource) Float64() float64 { return rand.Float64() }
func (SystemSource) UUID() string     { return uuid.New().String() }

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
