// scheduler.go - the wait-splitting interleave of §4.3's "Scheduling
// during waits" algorithm.
//
// Grounded in psg_engine.go's sample-position bookkeeping (a running
// samplePos compared against scheduled events) generalised from "one
// PSG" to "however many DAC streams are Running", plus the explicit
// four-step description in the specification's own scheduler section,
// which this function follows almost as written.

package vgm

// minNextWriteBefore finds the smallest NextWriteSample strictly less
// than deadline among Running streams, and every stream due at exactly
// that sample, in ascending stream ID order.
func (e *StreamEngine) minNextWriteBefore(deadline uint64) (t uint64, due []*StreamState, found bool) {
	for _, s := range e.runningStreams() {
		if s.NextWriteSample >= deadline {
			continue
		}
		if !found || s.NextWriteSample < t {
			t = s.NextWriteSample
			found = true
		}
	}
	if !found {
		return 0, nil, false
	}
	for _, s := range e.runningStreams() {
		if s.NextWriteSample == t {
			due = append(due, s)
		}
	}
	return t, due, true
}

// schedulerStep runs §4.3's four-step wait-splitting loop for one parsed
// WaitSamples(n), appending every command it produces (sub-waits and the
// chip writes interleaved between them) to pending.
func (s *Stream) schedulerStep(n uint16) {
	remaining := uint64(n)
	for remaining > 0 {
		deadline := s.sampleCounter + remaining
		t, due, found := s.engine.minNextWriteBefore(deadline)
		if !found {
			s.emitWait(remaining)
			s.sampleCounter += remaining
			return
		}

		if t > s.sampleCounter {
			s.emitWait(t - s.sampleCounter)
		}
		for _, st := range due {
			if cmd, ok := s.engine.fireWrite(st); ok {
				s.pending = append(s.pending, Result{Kind: ResultCommand, Command: cmd})
			}
		}
		remaining = deadline - t
		s.sampleCounter = t
	}
}

// emitWait appends a WaitSamples result, never a zero-length one
// (Property 5, "no zero waits").
func (s *Stream) emitWait(n uint64) {
	if n == 0 {
		return
	}
	s.pending = append(s.pending, Result{Kind: ResultCommand, Command: Command{Kind: KindWaitSamples, Samples: uint16(n)}})
}
