package vgm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGD3RoundTrip(t *testing.T) {
	g := &GD3{
		Version:      0x00000100,
		TrackNameEn:  "Green Hill Zone",
		GameNameEn:   "Sonic the Hedgehog",
		SystemNameEn: "Sega Genesis",
		AuthorEn:     "Masato Nakamura",
		ReleaseDate:  "1991-06-23",
		VGMAuthor:    "someone",
		Notes:        "ripped from ROM",
	}

	encoded := g.Serialize()
	decoded, err := ParseGD3(encoded)
	require.NoError(t, err)
	assert.Equal(t, g, decoded)
	assert.Equal(t, len(encoded), g.Length())
}

func TestGD3_EmptyFields(t *testing.T) {
	g := &GD3{Version: 0x100}
	decoded, err := ParseGD3(g.Serialize())
	require.NoError(t, err)
	assert.Equal(t, "", decoded.TrackNameEn)
	assert.Equal(t, "", decoded.Notes)
}

func TestGD3_InvalidMagic(t *testing.T) {
	_, err := ParseGD3([]byte("XXXX\x00\x00\x00\x00\x00\x00\x00\x00"))
	var bad *InvalidIdentError
	require.ErrorAs(t, err, &bad)
}
