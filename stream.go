// stream.go - the consumer-facing Stream: byte-fed or document-fed
// command iteration, with the DAC-stream scheduler and loop/fadeout
// controller wired in.
//
// The byte-fed/document-fed split mirrors vgm_parser.go's two entry
// points (ParseVGMFile reading a whole buffer up front vs. the lower-level
// readVGMData that could in principle be fed incrementally); here both
// paths converge on the same pullParsed/processParsed machinery so the
// scheduler and loop controller don't need to know which one is active.

package vgm

// DefaultMaxBufferSize matches the specification's default input-buffer
// cap for byte-fed streams (§5).
const DefaultMaxBufferSize = 64 * 1024 * 1024

// Stream is a single playback cursor over a VGM command stream, either
// fed incrementally via PushChunk or constructed in one shot via
// FromDocument.
type Stream struct {
	engine *StreamEngine
	blocks *DataBlockStore

	sampleCounter uint64
	pending       []Result
	done          bool

	loopCountConfigured int // -1 = infinite (None), 0 = no looping, k = finite
	remainingLoops      int
	fadeoutSamples      uint64
	inFadeout           bool
	loopEndSample       uint64

	maxBufferSize int

	// byte-fed mode. Per §4.4's byte-fed caveat, a push_chunk-driven Stream
	// never rewinds its own buffer: end-of-data always reports
	// EndOfStream, and a caller wanting to loop re-feeds bytes starting at
	// the loop offset itself.
	byteFed       bool
	buf           []byte
	cursor        int
	nextDataBlock int

	// document-fed mode
	doc      *Document
	docIndex int
}

// NewStream returns a Stream in byte-fed mode with no data pushed yet.
func NewStream() *Stream {
	blocks := NewDataBlockStore()
	return &Stream{
		engine:        NewStreamEngine(blocks),
		blocks:        blocks,
		byteFed:       true,
		maxBufferSize: DefaultMaxBufferSize,
	}
}

// FromDocument returns a Stream that iterates an already-parsed document,
// reusing its data-block store and looping internally using its recorded
// loop command index (§4.4, "Document-fed mode loops internally").
func FromDocument(doc *Document) *Stream {
	return &Stream{
		engine:              NewStreamEngine(doc.Blocks),
		blocks:              doc.Blocks,
		doc:                 doc,
		loopCountConfigured: 0,
	}
}

// PushChunk appends command/data-region bytes for byte-fed parsing.
func (s *Stream) PushChunk(data []byte) error {
	if !s.byteFed {
		panic("vgm: PushChunk called on a document-fed Stream")
	}
	if len(s.buf)+len(data) > s.maxBufferSize {
		return &BufferSizeExceededError{Current: len(s.buf), Attempted: len(data), Max: s.maxBufferSize}
	}
	s.buf = append(s.buf, data...)
	return nil
}

// SetLoopCount configures how many times the loop body repeats before
// EndOfStream. Pass -1 for infinite looping ("None" in the specification's
// terms), 0 to disable looping entirely.
func (s *Stream) SetLoopCount(n int) {
	s.loopCountConfigured = n
	s.remainingLoops = n
}

// LoopCount returns the remaining loop count.
func (s *Stream) LoopCount() int {
	return s.remainingLoops
}

// SetFadeoutSamples configures the grace period after the loop count is
// exhausted during which running streams keep emitting.
func (s *Stream) SetFadeoutSamples(n uint64) {
	s.fadeoutSamples = n
}

func (s *Stream) FadeoutSamples() uint64 {
	return s.fadeoutSamples
}

// SetMaxBufferSize bounds PushChunk's accumulated input.
func (s *Stream) SetMaxBufferSize(n int) {
	s.maxBufferSize = n
}

// SetMaxDataBlockSize bounds the data-block store's running total.
func (s *Stream) SetMaxDataBlockSize(n int) {
	s.blocks.MaxSize = n
}

// TotalDataBlockSize returns the data-block store's current running total.
func (s *Stream) TotalDataBlockSize() int {
	return s.blocks.TotalSize()
}

// UncompressedStream returns the decompressed bytes of a stored data
// block.
func (s *Stream) UncompressedStream(index int) ([]byte, bool) {
	return s.blocks.Get(index)
}

// DecompressionTable returns a previously stored decompression-table
// block (data-block type 0x7F).
func (s *Stream) DecompressionTable(index int) ([]byte, bool) {
	return s.blocks.GetTable(index)
}

// Reset clears all buffers, stream engines, and the data-block store, and
// resets the sample counter to zero (§5, "Cancellation").
func (s *Stream) Reset() {
	s.blocks = NewDataBlockStore()
	s.engine = NewStreamEngine(s.blocks)
	s.sampleCounter = 0
	s.pending = nil
	s.done = false
	s.inFadeout = false
	s.loopEndSample = 0
	s.remainingLoops = s.loopCountConfigured
	if s.byteFed {
		s.buf = nil
		s.cursor = 0
		s.nextDataBlock = 0
	} else {
		s.docIndex = 0
	}
}

// Next advances the stream by one logical step and reports what
// happened: a command, a need for more bytes, or the end of playback.
//
// The loop runs until it has something to report; a parsed command that
// only updates internal state (a loop rewind, a DAC-stream control op
// with nothing queued yet) does not itself produce a Result, so the loop
// keeps pulling until one does.
func (s *Stream) Next() (Result, error) {
	for {
		if s.done {
			return Result{Kind: ResultEndOfStream}, nil
		}
		if len(s.pending) > 0 {
			r := s.pending[0]
			s.pending = s.pending[1:]
			return r, nil
		}
		if s.inFadeout && s.sampleCounter-s.loopEndSample >= s.fadeoutSamples {
			s.done = true
			continue
		}

		pc, err := s.pullParsed()
		if err == errNeedsMoreData {
			return Result{Kind: ResultNeedsMoreData}, nil
		}
		if err != nil {
			s.done = true
			return Result{}, err
		}
		if err := s.processParsed(pc); err != nil {
			s.done = true
			return Result{}, err
		}
	}
}

func (s *Stream) hasLoopPoint() bool {
	if s.byteFed {
		return false
	}
	return s.doc.LoopCommandIndex >= 0
}

func (s *Stream) seekToLoopPoint() {
	s.docIndex = s.doc.LoopCommandIndex
}

// processParsed performs one parsed command's worth of work, appending
// zero or more results to s.pending (or setting s.done) so Next's loop
// can pick back up. It never recurses: a command that only rewinds the
// cursor or updates engine state produces nothing, and Next's loop simply
// pulls the next one. An error here (a data block that would exceed the
// store's bound, or a DAC-stream command referencing an unconfigured
// stream) is returned to the caller instead of being folded into pending,
// the same way a decode error surfaces from pullParsed.
func (s *Stream) processParsed(pc Command) error {
	switch {
	case pc.Kind == KindEndOfData:
		s.handleEndOfData()

	case pc.IsWait():
		s.schedulerStep(pc.WaitEquivalent())

	case pc.Kind == KindYM2612DirectDAC:
		writeCmd, wait := s.engine.fireDirectDAC(pc.Samples)
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: writeCmd})
		s.schedulerStep(wait)

	case pc.Kind == KindDataBlock:
		if err := s.storeDataBlock(pc); err != nil {
			return err
		}
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACSetup:
		s.engine.SetupStreamControl(pc.StreamID, chipFromStreamType(pc.StreamChipType), pc.StreamPort, pc.StreamRegister, instanceFromStreamType(pc.StreamChipType))
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACSetData:
		s.engine.SetStreamData(pc.StreamID, int(pc.StreamDataBank), pc.StreamStepSize, pc.StreamStepBase)
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACSetFrequency:
		s.engine.SetStreamFrequency(pc.StreamID, pc.StreamFrequency)
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACStart:
		if err := s.engine.StartStream(pc.StreamID, pc.StreamOffset, pc.StreamMode, pc.StreamLength, s.sampleCounter); err != nil {
			return err
		}
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACStartFastCall:
		if err := s.engine.StartStreamFastCall(pc.StreamID, pc.StreamBlockID, s.sampleCounter); err != nil {
			return err
		}
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	case pc.Kind == KindDACStop:
		s.engine.StopStream(pc.StreamID)
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})

	default:
		s.pending = append(s.pending, Result{Kind: ResultCommand, Command: pc})
	}
	return nil
}

// handleEndOfData implements §4.4's loop/fadeout controller. It only ever
// mutates state (cursor, remaining count, fadeout flags); Next's loop
// re-enters pullParsed afterwards, which is what actually resumes at the
// loop point or reports EndOfStream.
func (s *Stream) handleEndOfData() {
	if s.loopCountConfigured == 0 {
		s.done = true
		return
	}
	if !s.hasLoopPoint() {
		s.loopCountConfigured = 0
		s.done = true
		return
	}

	if s.loopCountConfigured > 0 {
		s.remainingLoops--
	}
	s.seekToLoopPoint()

	// Only the transition into exhaustion starts the fadeout clock; once
	// inFadeout is set, further loop-offset traversals must not push
	// loopEndSample forward again or the fadeout window would never
	// close.
	if s.loopCountConfigured > 0 && s.remainingLoops <= 0 && !s.inFadeout {
		s.loopEndSample = s.sampleCounter
		if s.fadeoutSamples > 0 {
			s.inFadeout = true
		} else {
			s.done = true
		}
	}
}

// storeDataBlock records a byte-fed data block in the store. A store
// failure (§3, "in which case parsing fails; the block is not silently
// dropped") is returned to the caller rather than papered over with a
// fallback index; document-fed mode never calls the store here since
// ParseDocument already populated it. RAM-write blocks (0xC0-0xFF) are
// not stored; processParsed hands them on as commands.
func (s *Stream) storeDataBlock(cmd Command) error {
	if kind, _ := classifyDataBlockType(cmd.DataType); kind == dataBlockRAMWrite {
		return nil
	}
	idx := s.nextDataBlock
	if s.byteFed {
		var err error
		idx, err = s.blocks.Store(cmd.DataType, cmd.Payload)
		if err != nil {
			return err
		}
	}
	s.nextDataBlock++
	if cmd.DataType == 0x00 {
		s.engine.bindDirectDACBlock(idx)
	}
	return nil
}

// pullParsed returns the next command from whichever source is active.
func (s *Stream) pullParsed() (Command, error) {
	if s.byteFed {
		cmd, n, err := decodeCommand(s.buf[s.cursor:], s.cursor)
		if err != nil {
			return Command{}, err
		}
		s.cursor += n
		return cmd, nil
	}
	if s.docIndex >= len(s.doc.Commands) {
		return Command{Kind: KindEndOfData}, nil
	}
	cmd := s.doc.Commands[s.docIndex]
	s.docIndex++
	return cmd, nil
}

// chipFromStreamType and instanceFromStreamType translate the raw VGM
// chip-type byte DAC stream control opcodes carry (§3, StreamChipType)
// into this package's ChipKind/Instance, using the same high-bit
// secondary-instance convention the command codec uses.
func chipFromStreamType(raw byte) ChipKind {
	switch raw &^ 0x80 {
	case 0x00:
		return ChipYM2612
	case 0x01:
		return ChipYM2151
	case 0x02:
		return ChipSegaPCM
	case 0x07:
		return ChipOKIM6258
	case 0x08:
		return ChipOKIM6295
	default:
		return ChipUnknownKind
	}
}

func instanceFromStreamType(raw byte) Instance {
	if raw&0x80 != 0 {
		return Secondary
	}
	return Primary
}
