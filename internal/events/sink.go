package events

// Sink is the append-only indexed event buffer. It lives by value inside the
// workflow: no locking, no I/O, and all fields are serialisable so the buffer
// can be carried through ContinueAsNew. On replay Emit is called in the same
// order and produces the same indices.
type Sink struct {
	Buffer []Indexed `json:"buffer"`
	// Next is the index the next emitted event will receive.
	Next uint64 `json:"next"`
	// First is the lowest index still retained in Buffer.
	First uint64 `json:"first"`
}

// NewSink returns an empty sink with indices starting at 0.
func NewSink() *Sink {
	return &Sink{}
}

// Emit appends event to the buffer and returns its assigned index.
// Indices are strictly monotonic and gap-free.
func (s *Sink) Emit(event Event) uint64 {
	index := s.Next
	s.Buffer = append(s.Buffer, Indexed{Index: index, Event: event})
	s.Next++
	return index
}

// EventsSince returns all retained events with index >= from, sorted by
// index. The result is empty when from >= Next.
func (s *Sink) EventsSince(from uint64) Slice {
	slice := Slice{NextIndex: s.Next, FirstAvailableIndex: s.First}
	if from >= s.Next {
		return slice
	}

	// Buffer[i] has index First+i, so the offset is a direct computation.
	start := 0
	if from > s.First {
		start = int(from - s.First)
	}
	if start < len(s.Buffer) {
		slice.Events = append(slice.Events, s.Buffer[start:]...)
	}
	return slice
}

// CompactBelow drops retained events with index < watermark. Indices already
// assigned never change; EventsSince reports the new FirstAvailableIndex so
// clients can detect the gap.
func (s *Sink) CompactBelow(watermark uint64) {
	if watermark <= s.First {
		return
	}
	if watermark > s.Next {
		watermark = s.Next
	}
	drop := int(watermark - s.First)
	if drop >= len(s.Buffer) {
		s.Buffer = nil
	} else {
		s.Buffer = append([]Indexed(nil), s.Buffer[drop:]...)
	}
	s.First = watermark
}

// Len returns the number of retained events.
func (s *Sink) Len() int {
	return len(s.Buffer)
}
