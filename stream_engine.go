// stream_engine.go - per-stream DAC playback state, §4.3's "stream
// engine" half (the scheduler proper lives in scheduler.go).
//
// The rate-conversion accumulator is grounded in psg_player.go's
// loadFrames, which advances a sample pointer by a rational step/acc pair
// to resample a fixed-rate frame source against the host's output rate;
// here the same idea runs in reverse, picking the *next* absolute sample
// a fixed-writes-per-second source is due, using round-to-nearest instead
// of loadFrames' truncating accumulation so successive intervals
// alternate the way real playback engines do (see S3 in the testable
// properties).

package vgm

// virtualSampleRate is the 44.1 kHz clock every stream's writes-per-second
// rate is converted against (§4.3, "conversion to samples uses the
// 44.1 kHz virtual clock").
const virtualSampleRate = 44100

type streamPlayState int

const (
	streamIdle streamPlayState = iota
	streamRunning
	streamStopped
)

// StreamState is one of the 256 logical DAC-stream slots.
type StreamState struct {
	ID       uint8
	Chip     ChipKind
	Port     uint8
	Register uint8
	Instance Instance

	DataBlockIndex int
	StepSize       uint8
	StepBase       uint8

	WritesPerSecond uint32

	pointer     int
	length      int // bytes left to play; StartStream with length 0 sets it to the bytes left in the bound block
	writesEmitted uint64
	startSample   uint64

	NextWriteSample uint64
	State           streamPlayState
}

// StreamEngine owns all 256 stream slots and the direct-DAC pseudo-stream
// YM2612 opcodes 0x80-0x8F drive.
type StreamEngine struct {
	blocks  *DataBlockStore
	streams map[uint8]*StreamState

	directDACBlockIndex int
	directDACPointer    int
}

// NewStreamEngine returns an engine with no configured streams.
func NewStreamEngine(blocks *DataBlockStore) *StreamEngine {
	return &StreamEngine{blocks: blocks, streams: map[uint8]*StreamState{}, directDACBlockIndex: -1}
}

func (e *StreamEngine) stateFor(id uint8) *StreamState {
	s, ok := e.streams[id]
	if !ok {
		s = &StreamState{ID: id, State: streamIdle, DataBlockIndex: -1}
		e.streams[id] = s
	}
	return s
}

// SetupStreamControl binds a logical stream to a chip register (opcode 0x90).
func (e *StreamEngine) SetupStreamControl(id uint8, chip ChipKind, port, register uint8, instance Instance) {
	s := e.stateFor(id)
	s.Chip, s.Port, s.Register, s.Instance = chip, port, register, instance
}

// SetStreamData binds the sample source and byte stride (opcode 0x91).
func (e *StreamEngine) SetStreamData(id uint8, dataBlockIndex int, stepSize, stepBase uint8) {
	s := e.stateFor(id)
	s.DataBlockIndex, s.StepSize, s.StepBase = dataBlockIndex, stepSize, stepBase
}

// SetStreamFrequency sets the stream's write rate in writes per second
// (opcode 0x92).
func (e *StreamEngine) SetStreamFrequency(id uint8, writesPerSecond uint32) {
	e.stateFor(id).WritesPerSecond = writesPerSecond
}

// StartStream begins playback at the given sample counter (opcode 0x93).
// length of 0 means "play until the bound data block ends".
func (e *StreamEngine) StartStream(id uint8, offsetBytes uint32, mode uint8, length uint32, currentSample uint64) error {
	s := e.stateFor(id)
	if s.DataBlockIndex < 0 {
		return &StreamNotConfiguredError{ID: int(id)}
	}
	s.pointer = int(offsetBytes)
	if length == 0 {
		data, ok := e.blocks.Get(s.DataBlockIndex)
		if !ok {
			return &StreamNotConfiguredError{ID: int(id)}
		}
		s.length = len(data) - s.pointer
	} else {
		s.length = int(length)
	}
	s.writesEmitted = 0
	s.startSample = currentSample
	s.NextWriteSample = currentSample
	s.State = streamRunning
	return nil
}

// StartStreamFastCall is the compact form of StartStream (opcode 0x95): it
// reuses the previously bound offset/length and only sets a short
// playback length in blocks bound via SetStreamData.
func (e *StreamEngine) StartStreamFastCall(id uint8, blockID uint16, currentSample uint64) error {
	s := e.stateFor(id)
	if s.DataBlockIndex < 0 {
		return &StreamNotConfiguredError{ID: int(id)}
	}
	data, ok := e.blocks.Get(int(blockID))
	if !ok {
		return &StreamNotConfiguredError{ID: int(id)}
	}
	s.pointer = 0
	s.length = len(data)
	s.writesEmitted = 0
	s.startSample = currentSample
	s.NextWriteSample = currentSample
	s.State = streamRunning
	return nil
}

// StopStream marks a stream Stopped immediately (opcode 0x94).
func (e *StreamEngine) StopStream(id uint8) {
	e.stateFor(id).State = streamStopped
}

// runningStreams returns every currently-Running stream, in ascending ID
// order, for the scheduler's "minimum next_write_sample" search.
func (e *StreamEngine) runningStreams() []*StreamState {
	var out []*StreamState
	for id := uint8(0); ; id++ {
		if s, ok := e.streams[id]; ok && s.State == streamRunning {
			out = append(out, s)
		}
		if id == 255 {
			break
		}
	}
	return out
}

// fireWrite emits the chip write a Running stream has due at its current
// NextWriteSample, advances its pointer, and schedules the following
// write (or transitions to Stopped if the configured length is exhausted).
func (e *StreamEngine) fireWrite(s *StreamState) (Command, bool) {
	data, ok := e.blocks.Get(s.DataBlockIndex)
	if !ok || s.pointer < 0 || s.pointer >= len(data) {
		s.State = streamStopped
		return Command{}, false
	}
	value := data[s.pointer]
	cmd := Command{
		Kind:     KindChipWrite,
		Chip:     s.Chip,
		Port:     s.Port,
		Instance: s.Instance,
		Operand:  []byte{s.Register, value},
	}

	step := int(s.StepSize)
	if step == 0 {
		step = 1
	}
	s.pointer += step
	s.length -= step

	if s.length <= 0 || s.pointer >= len(data) {
		s.State = streamStopped
	} else {
		s.writesEmitted++
		s.NextWriteSample = s.startSample + roundDiv(s.writesEmitted*virtualSampleRate, uint64(s.WritesPerSecond))
	}
	return cmd, true
}

// roundDiv divides num by den, rounding to nearest (ties away from zero),
// matching the "round(44100 / writes_per_second)" language of §4.3 and the
// alternating-interval behaviour it implies across successive writes.
func roundDiv(num, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	return (num + den/2) / den
}

// fireDirectDAC handles a YM2612 direct-DAC opcode (0x80-0x8F): write the
// next byte from the most recently bound direct-DAC data block to port 0
// register 0x2A, then report the trailing wait the opcode encodes.
func (e *StreamEngine) fireDirectDAC(waitSamples uint16) (Command, uint16) {
	var value byte
	if e.directDACBlockIndex >= 0 {
		if data, ok := e.blocks.Get(e.directDACBlockIndex); ok && e.directDACPointer < len(data) {
			value = data[e.directDACPointer]
			e.directDACPointer++
		}
	}
	cmd := Command{
		Kind:     KindChipWrite,
		Chip:     ChipYM2612,
		Port:     0,
		Instance: Primary,
		Operand:  []byte{0x2A, value},
	}
	return cmd, waitSamples
}

// bindDirectDACBlock points the direct-DAC pointer at a newly stored
// YM2612-PCM data block, resetting the read position.
func (e *StreamEngine) bindDirectDACBlock(index int) {
	e.directDACBlockIndex = index
	e.directDACPointer = 0
}
