// header.go - fixed-region header codec.
//
// Field-by-field version-gated parsing is grounded in sid_parser.go's
// ParseSIDData ("if header.DataOffset >= 0x78 ..." ladder) and
// vgm_parser.go's dataOffset/dataStart relative-offset resolution: both
// teacher files read a fixed prefix at absolute offsets and resolve a
// handful of fields that are stored relative to their own field address
// rather than to the start of the file. This module generalises that
// same technique across the full 1.71 field table instead of the
// teacher's half-dozen fields.

package vgm

import "encoding/binary"

var vgmMagic = [4]byte{'V', 'g', 'm', ' '}

// fixedHeaderSize is the maximum span of the fixed header region (§4.5,
// "a fixed 256-byte (maximum) prefix"). An extra-header offset (≥ 1.70)
// that resolves to a position before this boundary still falls inside the
// fixed header rather than a true extra-header region, and is treated as
// absent.
const fixedHeaderSize = 0x100

const (
	v100 = 0x00000100
	v101 = 0x00000101
	v110 = 0x00000110
	v151 = 0x00000151
	v160 = 0x00000160
	v170 = 0x00000170
	v171 = 0x00000171
)

// chipFieldOffsets maps a header byte offset to the chip clock it carries
// and the minimum version that defines it. BCD version words compare
// correctly as plain integers since every digit stays below 0xA.
type chipFieldOffset struct {
	offset     int
	chip       ChipKind
	minVersion uint32
}

var chipFieldOffsets = []chipFieldOffset{
	{0x0C, ChipSN76489, v100},
	{0x10, ChipYM2413, v100},
	{0x2C, ChipYM2612, v110},
	{0x30, ChipYM2151, v110},
	{0x38, ChipSegaPCM, v151},
	{0x40, ChipRF5C68, v151},
	{0x44, ChipYM2203, v151},
	{0x48, ChipYM2608, v151},
	{0x4C, ChipYM2610, v151},
	{0x50, ChipYM3812, v151},
	{0x54, ChipYM3526, v151},
	{0x58, ChipY8950, v151},
	{0x5C, ChipYMF262, v151},
	{0x60, ChipYMF278B, v151},
	{0x64, ChipYMF271, v151},
	{0x68, ChipYMZ280B, v151},
	{0x6C, ChipRF5C164, v151},
	{0x70, ChipPWM, v151},
	{0x74, ChipAY8910, v151},
	{0x80, ChipGameBoyDMG, v160},
	{0x84, ChipNESAPU, v160},
	{0x88, ChipMultiPCM, v160},
	{0x8C, ChipUPD7759, v160},
	{0x90, ChipOKIM6258, v160},
	{0x98, ChipOKIM6295, v160},
	{0x9C, ChipK051649, v160},
	{0xA0, ChipK054539, v160},
	{0xA4, ChipHuC6280, v160},
	{0xA8, ChipC140, v160},
	{0xAC, ChipK053260, v171},
	{0xB0, ChipPokey, v171},
	{0xB4, ChipQSound, v171},
	{0xB8, ChipSCSP, v171},
	{0xC0, ChipWonderSwan, v171},
	{0xC4, ChipVSU, v171},
	{0xC8, ChipSAA1099, v171},
	{0xCC, ChipES5503, v171},
	{0xD0, ChipES5506, v171},
	{0xD4, ChipX1_010, v171},
	{0xD8, ChipC352, v171},
	{0xDC, ChipGA20, v171},
}

// ChipClock is one chip instance's clock as declared in the header.
type ChipClock struct {
	Chip     ChipKind
	Instance Instance
	ClockHz  float32
}

// Header holds the parsed fixed-region fields of a document plus the raw
// bytes Serialize patches back into, so fields this package doesn't
// understand survive a round trip untouched.
type Header struct {
	Version           uint32
	EOFOffset         uint32 // absolute
	GD3Offset         uint32 // absolute, 0 if absent
	TotalSamples      uint32
	LoopOffset        uint32 // absolute, 0 if absent
	LoopSamples       uint32
	Rate              uint32
	DataOffset        uint32 // absolute
	ExtraHeaderOffset uint32 // absolute, 0 if absent
	Chips             []ChipClock

	Raw []byte // header bytes [0:DataOffset), base for Serialize
}

// ParseHeader parses the fixed header region at the start of data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 0x40 {
		return nil, &HeaderTooShortError{Got: len(data), Want: 0x40}
	}
	if data[0] != vgmMagic[0] || data[1] != vgmMagic[1] || data[2] != vgmMagic[2] || data[3] != vgmMagic[3] {
		var got [4]byte
		copy(got[:], data[0:4])
		return nil, &InvalidIdentError{Got: got}
	}

	h := &Header{}
	h.Version = binary.LittleEndian.Uint32(data[8:12])

	if eofRel := binary.LittleEndian.Uint32(data[4:8]); eofRel != 0 {
		h.EOFOffset = 4 + eofRel
	} else {
		h.EOFOffset = uint32(len(data))
	}

	if gd3Rel := binary.LittleEndian.Uint32(data[0x14:0x18]); gd3Rel != 0 {
		h.GD3Offset = 0x14 + gd3Rel
	}

	h.TotalSamples = binary.LittleEndian.Uint32(data[0x18:0x1C])

	if loopRel := binary.LittleEndian.Uint32(data[0x1C:0x20]); loopRel != 0 {
		h.LoopOffset = 0x1C + loopRel
	}
	h.LoopSamples = binary.LittleEndian.Uint32(data[0x20:0x24])

	if h.Version >= v101 && len(data) >= 0x28 {
		h.Rate = binary.LittleEndian.Uint32(data[0x24:0x28])
	}

	h.DataOffset = 0x40
	if h.Version >= v151 && len(data) >= 0x38 {
		if dataRel := binary.LittleEndian.Uint32(data[0x34:0x38]); dataRel != 0 {
			h.DataOffset = 0x34 + dataRel
		}
	}

	if h.Version >= v170 && len(data) >= 0xC0 {
		if extRel := binary.LittleEndian.Uint32(data[0xBC:0xC0]); extRel != 0 {
			candidate := 0xBC + extRel
			// Real-world files sometimes store an extra-header offset
			// that resolves inside the fixed header area (an unused
			// field left zero upstream, then misread as relative). Per
			// §9's extra-header tolerance note, such an offset means
			// "field absent", not a parse error.
			if candidate >= fixedHeaderSize {
				h.ExtraHeaderOffset = candidate
			}
		}
	}

	for _, f := range chipFieldOffsets {
		if h.Version < f.minVersion || len(data) < f.offset+4 {
			continue
		}
		raw := binary.LittleEndian.Uint32(data[f.offset : f.offset+4])
		if raw == 0 {
			continue
		}
		secondary := raw&0x80000000 != 0
		clock := float32(raw &^ 0x80000000)
		h.Chips = append(h.Chips, ChipClock{Chip: f.chip, Instance: Primary, ClockHz: clock})
		if secondary {
			h.Chips = append(h.Chips, ChipClock{Chip: f.chip, Instance: Secondary, ClockHz: clock})
		}
	}

	for _, off := range []struct {
		name string
		val  uint32
	}{
		{"gd3_offset", h.GD3Offset},
		{"loop_offset", h.LoopOffset},
		{"extra_header_offset", h.ExtraHeaderOffset},
	} {
		if off.val != 0 && int(off.val) > len(data) {
			return nil, &OffsetOutOfRangeError{Field: off.name, Offset: int(off.val), Length: len(data)}
		}
	}
	if int(h.DataOffset) > len(data) {
		return nil, &OffsetOutOfRangeError{Field: "data_offset", Offset: int(h.DataOffset), Length: len(data)}
	}

	h.Raw = append([]byte(nil), data[:h.DataOffset]...)
	return h, nil
}

// Serialize renders the header back to wire bytes, patching the parsed
// fields into a clone of Raw so any bytes this package does not interpret
// survive untouched. totalFileLen is the final document length, needed to
// recompute eof_offset.
func (h *Header) Serialize(totalFileLen int) []byte {
	out := append([]byte(nil), h.Raw...)
	if len(out) < int(h.DataOffset) {
		grown := make([]byte, h.DataOffset)
		copy(grown, out)
		out = grown
	}

	copy(out[0:4], vgmMagic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(totalFileLen)-4)
	binary.LittleEndian.PutUint32(out[8:12], h.Version)

	if h.GD3Offset != 0 {
		binary.LittleEndian.PutUint32(out[0x14:0x18], h.GD3Offset-0x14)
	} else {
		binary.LittleEndian.PutUint32(out[0x14:0x18], 0)
	}

	binary.LittleEndian.PutUint32(out[0x18:0x1C], h.TotalSamples)

	if h.LoopOffset != 0 {
		binary.LittleEndian.PutUint32(out[0x1C:0x20], h.LoopOffset-0x1C)
	} else {
		binary.LittleEndian.PutUint32(out[0x1C:0x20], 0)
	}
	binary.LittleEndian.PutUint32(out[0x20:0x24], h.LoopSamples)

	if h.Version >= v101 && len(out) >= 0x28 {
		binary.LittleEndian.PutUint32(out[0x24:0x28], h.Rate)
	}

	if h.Version >= v151 && len(out) >= 0x38 {
		binary.LittleEndian.PutUint32(out[0x34:0x38], h.DataOffset-0x34)
	}

	if h.Version >= v170 && len(out) >= 0xC0 {
		if h.ExtraHeaderOffset != 0 {
			binary.LittleEndian.PutUint32(out[0xBC:0xC0], h.ExtraHeaderOffset-0xBC)
		} else {
			// Normalise a stray in-fixed-header value (already treated
			// as absent by ParseHeader) to the canonical "absent" zero
			// so re-serialisation doesn't resurrect it.
			binary.LittleEndian.PutUint32(out[0xBC:0xC0], 0)
		}
	}

	for _, f := range chipFieldOffsets {
		if h.Version < f.minVersion || len(out) < f.offset+4 {
			continue
		}
		clock, secondary := h.clockFor(f.chip)
		if clock == 0 {
			continue
		}
		raw := uint32(clock)
		if secondary {
			raw |= 0x80000000
		}
		binary.LittleEndian.PutUint32(out[f.offset:f.offset+4], raw)
	}

	return out
}

func (h *Header) clockFor(chip ChipKind) (clock float32, hasSecondary bool) {
	for _, c := range h.Chips {
		if c.Chip != chip {
			continue
		}
		if c.Instance == Primary {
			clock = c.ClockHz
		} else {
			hasSecondary = true
		}
	}
	return clock, hasSecondary
}

// ChipInstances returns every declared (chip, instance) pair, in header
// field order, as the specification's chip_instances() operation (§3).
func (h *Header) ChipInstances() []ChipClock {
	return append([]ChipClock(nil), h.Chips...)
}
