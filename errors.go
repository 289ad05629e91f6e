// errors.go - typed error taxonomy for the header and command codecs.
//
// Every variant in §7 of the specification gets its own exported type so
// callers can errors.As() to the specific fault instead of matching
// strings, the way the teacher's parsers (sid_parser.go, vgm_parser.go)
// use fmt.Errorf for messages but never give callers anything to switch
// on. errNeedsMoreData is the one sentinel that is NOT a real error: it
// is the streaming path's "please feed more bytes" signal, kept distinct
// from UnexpectedEndError so a caller iterating a fully-buffered Document
// sees a hard failure while a caller feeding chunks sees a normal pause.

package vgm

import (
	"errors"
	"fmt"
)

// errNeedsMoreData is returned internally by decodeCommand when the
// supplied slice is too short to know whether the command is even
// complete. PushChunk/Next surface this as Result{Kind: ResultNeedsMoreData}.
// A caller that knows its buffer is complete (Document parsing) maps it to
// UnexpectedEndError instead.
var errNeedsMoreData = errors.New("vgm: needs more data")

// HeaderTooShortError reports a header buffer shorter than the minimum
// fixed prefix required to identify the file.
type HeaderTooShortError struct {
	Got, Want int
}

func (e *HeaderTooShortError) Error() string {
	return fmt.Sprintf("vgm: header too short: got %d bytes, need at least %d", e.Got, e.Want)
}

// InvalidIdentError reports a missing "Vgm " magic.
type InvalidIdentError struct {
	Got [4]byte
}

func (e *InvalidIdentError) Error() string {
	return fmt.Sprintf("vgm: invalid ident: got %q, want \"Vgm \"", e.Got[:])
}

// OffsetOutOfRangeError reports a header-declared offset that points
// outside the supplied byte slice.
type OffsetOutOfRangeError struct {
	Field  string
	Offset int
	Length int
}

func (e *OffsetOutOfRangeError) Error() string {
	return fmt.Sprintf("vgm: %s offset 0x%X out of range (length %d)", e.Field, e.Offset, e.Length)
}

// UnknownOpcodeError reports a command byte that matches no entry in the
// opcode table at a point where a new command was expected.
type UnknownOpcodeError struct {
	Byte   byte
	Offset int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("vgm: unknown opcode 0x%02X at offset 0x%X", e.Byte, e.Offset)
}

// UnexpectedEndError reports truncation in the middle of a command whose
// operand length is already known, discovered against a buffer that is
// not expected to grow (a fully-parsed Document).
type UnexpectedEndError struct {
	Offset int
	Need   int
	Have   int
}

func (e *UnexpectedEndError) Error() string {
	return fmt.Sprintf("vgm: unexpected end of data at offset 0x%X: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

// DataBlockSizeExceededError reports a data-block store that would exceed
// its configured maximum.
type DataBlockSizeExceededError struct {
	Current, Attempted, Max int
}

func (e *DataBlockSizeExceededError) Error() string {
	return fmt.Sprintf("vgm: data block size exceeded: current %d + attempted %d > max %d", e.Current, e.Attempted, e.Max)
}

// BufferSizeExceededError reports an input buffer that would exceed its
// configured maximum.
type BufferSizeExceededError struct {
	Current, Attempted, Max int
}

func (e *BufferSizeExceededError) Error() string {
	return fmt.Sprintf("vgm: buffer size exceeded: current %d + attempted %d > max %d", e.Current, e.Attempted, e.Max)
}

// InvalidDataBlockTypeError reports a data-block type byte outside the
// four documented ranges, or a RAM-write type (0xC0-0xFF) passed to
// DataBlockStore.Store, which does not hold those.
type InvalidDataBlockTypeError struct {
	Byte byte
}

func (e *InvalidDataBlockTypeError) Error() string {
	return fmt.Sprintf("vgm: invalid data block type 0x%02X", e.Byte)
}

// StreamNotConfiguredError reports a StartStream/StartStreamFastCall that
// referenced a logical stream ID with no data block bound by a prior
// SetStreamData, or whose data block the store does not hold.
type StreamNotConfiguredError struct {
	ID int
}

func (e *StreamNotConfiguredError) Error() string {
	return fmt.Sprintf("vgm: stream %d referenced before setup", e.ID)
}
