package vgm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_NeedsMoreData(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.PushChunk([]byte{0x61, 0x44})) // WaitSamples missing its 2nd length byte

	r, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, ResultNeedsMoreData, r.Kind)

	require.NoError(t, s.PushChunk([]byte{0x01, 0x66}))
	r, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, ResultCommand, r.Kind)
	assert.Equal(t, uint16(324), r.Command.Samples)
}

func TestStream_ByteFedNeverLoopsInternally(t *testing.T) {
	// A byte-fed stream always reports EndOfStream at end-of-data
	// regardless of SetLoopCount, per the byte-fed caveat.
	s := NewStream()
	s.SetLoopCount(5)
	require.NoError(t, s.PushChunk([]byte{0x61, 0x0A, 0x00, 0x66}))

	r, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, ResultCommand, r.Kind)

	r, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, ResultEndOfStream, r.Kind)
}

func TestStream_UnknownOpcodeIsHardError(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.PushChunk([]byte{0x01})) // unassigned opcode

	_, err := s.Next()
	var unknown *UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)

	// A hard error taints the stream: it does not keep reporting the
	// same error or silently resume, it reports EndOfStream from then on.
	r, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, ResultEndOfStream, r.Kind)
}

// TestStream_StartStreamWithoutSetupIsHardError covers §7's
// StreamNotConfiguredError reaching a Stream consumer: a StartStream
// command (opcode 0x93) that references a logical stream with no prior
// SetStreamData must surface through Next rather than being silently
// discarded.
func TestStream_StartStreamWithoutSetupIsHardError(t *testing.T) {
	s := NewStream()
	start, err := encodeCommand(nil, Command{Kind: KindDACStart, StreamID: 0, StreamOffset: 0, StreamMode: 0, StreamLength: 4})
	require.NoError(t, err)
	require.NoError(t, s.PushChunk(start))

	_, err = s.Next()
	var notConfigured *StreamNotConfiguredError
	require.ErrorAs(t, err, &notConfigured)

	r, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, ResultEndOfStream, r.Kind)
}

func TestStream_BufferSizeExceeded(t *testing.T) {
	s := NewStream()
	s.SetMaxBufferSize(4)
	err := s.PushChunk([]byte{1, 2, 3, 4, 5})
	var exceeded *BufferSizeExceededError
	require.ErrorAs(t, err, &exceeded)
}

func TestStream_Reset(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.PushChunk([]byte{0x62, 0x66}))
	_, err := s.Next()
	require.NoError(t, err)

	s.Reset()
	require.Equal(t, 0, len(s.buf))
	r, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, ResultNeedsMoreData, r.Kind)
}

func TestStream_DataBlockStoredAndAccessible(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.PushChunk([]byte{0x67, 0x66, 0x00, 0x03, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC, 0x66}))

	r, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, ResultCommand, r.Kind)
	require.Equal(t, KindDataBlock, r.Command.Kind)

	data, ok := s.UncompressedStream(0)
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, data)
}

func TestStream_NoLoopConfiguredEndsOnFirstEndOfData(t *testing.T) {
	b := NewBuilder(v151)
	b.AddWait(100)
	b.SetLoop(0, 100)
	doc := b.Finalize()

	s := FromDocument(doc)
	// loopCountConfigured defaults to 0 ("no looping") until SetLoopCount
	// is called.
	var results []Result
	for {
		r, err := s.Next()
		require.NoError(t, err)
		if r.Kind == ResultEndOfStream {
			break
		}
		results = append(results, r)
	}
	require.Len(t, results, 1)
}

func TestStream_InfiniteLoopNeverExhausts(t *testing.T) {
	// loopCountConfigured == -1 means the loop body repeats forever: the
	// fadeout clock only starts once the loop count is exhausted, which an
	// infinite count never is, so FadeoutSamples being set here must not
	// matter.
	b := NewBuilder(v151)
	b.AddWait(10)
	b.SetLoop(0, 10)
	doc := b.Finalize()

	s := FromDocument(doc)
	s.SetLoopCount(-1)
	s.SetFadeoutSamples(25)

	for i := 0; i < 50; i++ {
		r, err := s.Next()
		require.NoError(t, err)
		require.NotEqual(t, ResultEndOfStream, r.Kind)
	}
}

func TestStream_FiniteLoopTerminatesAfterFadeout(t *testing.T) {
	b := NewBuilder(v151)
	b.AddWait(10)
	b.SetLoop(0, 10)
	doc := b.Finalize()

	s := FromDocument(doc)
	s.SetLoopCount(3)
	s.SetFadeoutSamples(5)

	var total uint64
	iterations := 0
	for {
		r, err := s.Next()
		require.NoError(t, err)
		if r.Kind == ResultEndOfStream {
			break
		}
		if r.Command.IsWait() {
			total += uint64(r.Command.WaitEquivalent())
		}
		iterations++
		require.Less(t, iterations, 1000, "stream failed to terminate")
	}
	assert.Greater(t, total, uint64(0))
}
