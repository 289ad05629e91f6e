// command.go - the tagged Command variant and its pure length function.
//
// The teacher's parsers never needed a persistent command representation
// (vgm_parser.go throws writes straight into a flat PSGEvent slice and
// discards everything else); this module keeps every opcode as a typed
// Command so the codec can re-serialise, compute source maps, and drive
// the scheduler without re-reading bytes.

package vgm

// Kind tags which variant a Command holds. The split mirrors §3 of the
// specification's data model list: waits keep their original encoded
// shape (generic/short/NTSC/PAL) so encode can round-trip byte-exact;
// the scheduler normalises all four to a plain sample count at its own
// input boundary (see WaitEquivalent, called from processParsed in stream.go).
type Kind int

const (
	KindChipWrite Kind = iota
	KindWaitSamples
	KindWaitShort
	KindWaitNTSC
	KindWaitPAL
	KindEndOfData
	KindDataBlock
	KindPCMRAMWrite
	KindDACSetup
	KindDACSetData
	KindDACSetFrequency
	KindDACStart
	KindDACStartFastCall
	KindDACStop
	KindYM2612DirectDAC
	KindUnknown
)

// Command is a single decoded VGM operation. Only the fields relevant to
// Kind are meaningful; the rest are zero. Register writes with an entry
// in opcode.go's regWrites table keep their wire operand bytes verbatim in
// Operand so the codec never has to guess field layout for chips this
// package doesn't attach special semantics to; other opcodes in
// 0xA0-0xFF decode to KindUnknown with their bytes in Payload.
type Command struct {
	Kind Kind

	// KindChipWrite
	Chip     ChipKind
	Instance Instance
	Port     uint8  // distinguishes dual-port chips (YM2612, YM2608, YM2610, YMF262); 1 also marks the PSG-stereo opcodes (0x4F, 0x31); 0 otherwise
	Operand  []byte // exact wire bytes following the opcode, length chip-specific

	// KindWaitSamples / KindWaitShort
	Samples uint16

	// KindDataBlock
	DataType byte
	Payload  []byte

	// KindPCMRAMWrite
	PCMChipType  byte
	PCMSrcOffset uint32
	PCMDstOffset uint32
	PCMSize      uint32

	// KindDACSetup / KindDACSetData / KindDACSetFrequency / KindDACStart /
	// KindDACStartFastCall / KindDACStop
	StreamID        uint8
	StreamChipType  byte // raw VGM chip-type byte; bit 7 marks secondary instance
	StreamPort      uint8
	StreamRegister  uint8
	StreamDataBank  uint8
	StreamStepSize  uint8
	StreamStepBase  uint8
	StreamFrequency uint32
	StreamOffset    uint32
	StreamMode      uint8
	StreamLength    uint32
	StreamBlockID   uint16
	StreamFlags     uint8

	// KindUnknown
	RawOpcode byte
}

// WaitEquivalent returns the sample count a wait-shaped command
// represents, collapsing the four encoded shapes to the single number
// the scheduler and the timing-conservation property (§8, property 3)
// care about. Panics if called on a non-wait command.
func (c Command) WaitEquivalent() uint16 {
	switch c.Kind {
	case KindWaitSamples, KindWaitShort:
		return c.Samples
	case KindWaitNTSC:
		return 735
	case KindWaitPAL:
		return 882
	default:
		panic("vgm: WaitEquivalent on non-wait command")
	}
}

func (c Command) IsWait() bool {
	switch c.Kind {
	case KindWaitSamples, KindWaitShort, KindWaitNTSC, KindWaitPAL:
		return true
	default:
		return false
	}
}

// Length returns the number of bytes the command occupies on the wire,
// including its opcode byte. It is a pure function of Kind and the
// populated fields, so offsets and source maps can be computed without
// re-emitting (§4.1).
func (c Command) Length() int {
	switch c.Kind {
	case KindChipWrite:
		return 1 + len(c.Operand)
	case KindWaitSamples:
		return 3
	case KindWaitShort:
		return 1
	case KindWaitNTSC, KindWaitPAL, KindEndOfData:
		return 1
	case KindDataBlock:
		return 7 + len(c.Payload)
	case KindPCMRAMWrite:
		return 12
	case KindDACSetup:
		return 5
	case KindDACSetData:
		return 5
	case KindDACSetFrequency:
		return 6
	case KindDACStart:
		return 11
	case KindDACStartFastCall:
		return 5
	case KindDACStop:
		return 2
	case KindYM2612DirectDAC:
		return 1
	case KindUnknown:
		return 1 + len(c.Payload)
	default:
		return 0
	}
}
