package events

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSinkIndicesAreGapFree verifies that for any sequence of emissions the
// assigned indices are consecutive integers starting from 0.
func TestSinkIndicesAreGapFree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("emit assigns consecutive indices from 0", prop.ForAll(
		func(count int) bool {
			sink := NewSink()
			for i := 0; i < count; i++ {
				if sink.Emit(Event{Kind: KindAgentMessage}) != uint64(i) {
					return false
				}
			}
			slice := sink.EventsSince(0)
			if len(slice.Events) != count {
				return false
			}
			for i, indexed := range slice.Events {
				if indexed.Index != uint64(i) {
					return false
				}
			}
			return slice.NextIndex == uint64(count)
		},
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}

// TestSinkEventsSinceIsSortedAndBounded verifies that for any from, every
// returned index is >= from and the list is strictly increasing.
func TestSinkEventsSinceIsSortedAndBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("events_since returns a sorted suffix", prop.ForAll(
		func(count, from int) bool {
			sink := NewSink()
			for i := 0; i < count; i++ {
				sink.Emit(Event{Kind: KindAgentMessage})
			}

			slice := sink.EventsSince(uint64(from))
			prev := int64(-1)
			for _, indexed := range slice.Events {
				if indexed.Index < uint64(from) {
					return false
				}
				if int64(indexed.Index) <= prev {
					return false
				}
				prev = int64(indexed.Index)
			}

			want := count - from
			if want < 0 {
				want = 0
			}
			return len(slice.Events) == want
		},
		gen.IntRange(0, 300),
		gen.IntRange(0, 400),
	))

	properties.TestingRun(t)
}

// TestSinkCompactionPreservesIndices verifies that compaction never renumbers
// surviving events and always reports an accurate retention floor.
func TestSinkCompactionPreservesIndices(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("compaction keeps surviving indices stable", prop.ForAll(
		func(count, watermark, from int) bool {
			sink := NewSink()
			for i := 0; i < count; i++ {
				sink.Emit(Event{Kind: KindAgentMessage})
			}
			sink.CompactBelow(uint64(watermark))

			slice := sink.EventsSince(uint64(from))
			for _, indexed := range slice.Events {
				if indexed.Index < slice.FirstAvailableIndex {
					return false
				}
				if indexed.Index < uint64(from) {
					return false
				}
			}

			// The floor never exceeds the next index, and emission
			// continues from the untouched counter.
			if slice.FirstAvailableIndex > slice.NextIndex {
				return false
			}
			return sink.Emit(Event{Kind: KindShutdown}) == uint64(count)
		},
		gen.IntRange(0, 200),
		gen.IntRange(0, 250),
		gen.IntRange(0, 250),
	))

	properties.TestingRun(t)
}
