// gd3.go - GD3 tag parsing and serialisation.
//
// GD3 is a small UTF-16LE tagged metadata block VGM files attach via the
// header's gd3_offset field. The specification treats it only as an
// offset (§3/§6); this file supplies the actual tag format, which a
// complete header codec still has to round-trip since real files carry
// one.

package vgm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

var gd3Magic = [4]byte{'G', 'd', '3', ' '}

// GD3 holds the eleven null-terminated UTF-16LE strings the format
// defines, in their documented order.
type GD3 struct {
	Version uint32

	TrackNameEn, TrackNameJp   string
	GameNameEn, GameNameJp     string
	SystemNameEn, SystemNameJp string
	AuthorEn, AuthorJp         string
	ReleaseDate                string
	VGMAuthor                  string
	Notes                      string
}

// ParseGD3 parses a GD3 block starting at the beginning of data.
func ParseGD3(data []byte) (*GD3, error) {
	if len(data) < 12 {
		return nil, &HeaderTooShortError{Got: len(data), Want: 12}
	}
	if !bytes.Equal(data[0:4], gd3Magic[:]) {
		var got [4]byte
		copy(got[:], data[0:4])
		return nil, &InvalidIdentError{Got: got}
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])
	end := 12 + int(length)
	if end > len(data) {
		return nil, &OffsetOutOfRangeError{Field: "gd3.length", Offset: end, Length: len(data)}
	}

	fields, err := splitGD3Strings(data[12:end], 11)
	if err != nil {
		return nil, err
	}
	return &GD3{
		Version:      version,
		TrackNameEn:  fields[0],
		TrackNameJp:  fields[1],
		GameNameEn:   fields[2],
		GameNameJp:   fields[3],
		SystemNameEn: fields[4],
		SystemNameJp: fields[5],
		AuthorEn:     fields[6],
		AuthorJp:     fields[7],
		ReleaseDate:  fields[8],
		VGMAuthor:    fields[9],
		Notes:        fields[10],
	}, nil
}

// Serialize renders the GD3 block, including its magic/version/length
// prefix, as wire bytes.
func (g *GD3) Serialize() []byte {
	strs := []string{
		g.TrackNameEn, g.TrackNameJp,
		g.GameNameEn, g.GameNameJp,
		g.SystemNameEn, g.SystemNameJp,
		g.AuthorEn, g.AuthorJp,
		g.ReleaseDate,
		g.VGMAuthor,
		g.Notes,
	}

	var body []byte
	for _, s := range strs {
		body = append(body, encodeUTF16LE(s)...)
		body = append(body, 0x00, 0x00)
	}

	out := make([]byte, 0, 12+len(body))
	out = append(out, gd3Magic[:]...)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], g.Version)
	out = append(out, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(body)))
	out = append(out, tmp[:]...)
	out = append(out, body...)
	return out
}

// Length returns the total serialised size of the GD3 block.
func (g *GD3) Length() int {
	return len(g.Serialize())
}

func splitGD3Strings(data []byte, want int) ([]string, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("vgm: gd3 body has odd length %d", len(data))
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[i*2:])
	}

	out := make([]string, 0, want)
	start := 0
	for i, u := range units {
		if u == 0 {
			out = append(out, string(utf16.Decode(units[start:i])))
			start = i + 1
		}
	}
	for len(out) < want {
		out = append(out, "")
	}
	return out[:want], nil
}

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
