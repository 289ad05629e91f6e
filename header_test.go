package vgm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalHeader assembles a version-1.51 header of 0x40 bytes with
// a handful of fields populated, for ParseHeader tests.
func buildMinimalHeader() []byte {
	buf := make([]byte, 0x40)
	copy(buf[0:4], "Vgm ")
	binary.LittleEndian.PutUint32(buf[8:12], v151)
	binary.LittleEndian.PutUint32(buf[0x18:0x1C], 44100) // total_samples
	binary.LittleEndian.PutUint32(buf[0x0C:0x10], 3579545) // SN76489 clock
	return buf
}

func TestParseHeader_Minimal(t *testing.T) {
	h, err := ParseHeader(buildMinimalHeader())
	require.NoError(t, err)
	assert.Equal(t, uint32(v151), h.Version)
	assert.Equal(t, uint32(44100), h.TotalSamples)
	assert.Equal(t, uint32(0x40), h.DataOffset)
	require.Len(t, h.Chips, 1)
	assert.Equal(t, ChipSN76489, h.Chips[0].Chip)
	assert.Equal(t, Primary, h.Chips[0].Instance)
	assert.InDelta(t, float32(3579545), h.Chips[0].ClockHz, 1)
}

func TestParseHeader_TooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	var tooShort *HeaderTooShortError
	require.ErrorAs(t, err, &tooShort)
}

func TestParseHeader_BadMagic(t *testing.T) {
	buf := buildMinimalHeader()
	buf[0] = 'X'
	_, err := ParseHeader(buf)
	var bad *InvalidIdentError
	require.ErrorAs(t, err, &bad)
}

func TestParseHeader_SecondaryInstanceClock(t *testing.T) {
	buf := buildMinimalHeader()
	binary.LittleEndian.PutUint32(buf[0x0C:0x10], 3579545|0x80000000)
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	require.Len(t, h.Chips, 2)
	assert.Equal(t, Primary, h.Chips[0].Instance)
	assert.Equal(t, Secondary, h.Chips[1].Instance)
}

func TestParseHeader_DataOffsetRelative(t *testing.T) {
	buf := make([]byte, 0x50)
	copy(buf[0:4], "Vgm ")
	binary.LittleEndian.PutUint32(buf[8:12], v151)
	binary.LittleEndian.PutUint32(buf[0x34:0x38], 0x10) // data_offset relative -> abs 0x44

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x44), h.DataOffset)
}

func TestHeaderSerializeRoundTrip(t *testing.T) {
	h, err := ParseHeader(buildMinimalHeader())
	require.NoError(t, err)

	out := h.Serialize(len(h.Raw) + 4)
	h2, err := ParseHeader(out)
	require.NoError(t, err)
	assert.Equal(t, h.Version, h2.Version)
	assert.Equal(t, h.TotalSamples, h2.TotalSamples)
	assert.Equal(t, h.Chips, h2.Chips)
}

func TestParseHeader_OffsetOutOfRange(t *testing.T) {
	buf := buildMinimalHeader()
	binary.LittleEndian.PutUint32(buf[0x14:0x18], 0xFFFF) // gd3_offset far beyond buffer
	_, err := ParseHeader(buf)
	var oor *OffsetOutOfRangeError
	require.ErrorAs(t, err, &oor)
}

// TestParseHeader_ExtraHeaderInsideFixedRegionIsAbsent covers §9's
// extra-header tolerance note: a declared extra-header offset that
// resolves inside the fixed header area (here 0xCC, still short of the
// 0x100 fixed-region boundary) must be treated as "field absent", not an
// OffsetOutOfRangeError or a spurious present extra header.
func TestParseHeader_ExtraHeaderInsideFixedRegionIsAbsent(t *testing.T) {
	buf := make([]byte, 0x100)
	copy(buf[0:4], "Vgm ")
	binary.LittleEndian.PutUint32(buf[8:12], v171)
	binary.LittleEndian.PutUint32(buf[0xBC:0xC0], 0x10) // extRel -> candidate 0xCC, inside fixed region

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h.ExtraHeaderOffset)
}

// TestParseHeader_ExtraHeaderInsideFixedRegionNormalisesOnSerialize
// checks that re-serialising a header whose extra-header offset was
// tolerated as absent writes back the canonical zero rather than
// resurrecting the original in-fixed-header value.
func TestParseHeader_ExtraHeaderInsideFixedRegionNormalisesOnSerialize(t *testing.T) {
	buf := make([]byte, 0x100)
	copy(buf[0:4], "Vgm ")
	binary.LittleEndian.PutUint32(buf[8:12], v171)
	binary.LittleEndian.PutUint32(buf[0x34:0x38], 0x100-0x34) // data_offset -> abs 0x100, so the header spans 0xBC
	binary.LittleEndian.PutUint32(buf[0xBC:0xC0], 0x10)

	h, err := ParseHeader(buf)
	require.NoError(t, err)

	out := h.Serialize(len(h.Raw) + 4)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(out[0xBC:0xC0]))

	h2, err := ParseHeader(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h2.ExtraHeaderOffset)
}

// TestParseHeader_ExtraHeaderPresentBeyondFixedRegion is the companion
// positive case: an offset that lands past the fixed region is a real
// extra header and must be preserved.
func TestParseHeader_ExtraHeaderPresentBeyondFixedRegion(t *testing.T) {
	buf := make([]byte, 0x110)
	copy(buf[0:4], "Vgm ")
	binary.LittleEndian.PutUint32(buf[8:12], v171)
	binary.LittleEndian.PutUint32(buf[0xBC:0xC0], 0x44) // candidate 0x100, exactly the fixed-region boundary

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x100), h.ExtraHeaderOffset)
}
