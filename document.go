// document.go - a fully decoded VGM file: header, ordered commands, GD3,
// and the stored data blocks they reference.
//
// Document is the in-memory analogue of vgm_parser.go's combination of a
// *VGMHeader and a returned []PSGEvent, except every opcode survives (not
// just AY/YM writes), and a source map ties each command back to its
// absolute byte offset the way the teacher never needed to since it threw
// offsets away after each read.

package vgm

// Document is a fully parsed, fully buffered VGM file.
type Document struct {
	Header *Header
	GD3    *GD3

	Commands []Command
	// Offsets[i] is the absolute byte offset of Commands[i] in the
	// original stream, for tooling that needs to seek back to a
	// specific write (e.g. re-deriving a loop point's command index).
	Offsets []int

	Blocks *DataBlockStore

	// LoopCommandIndex is the index into Commands the loop point
	// resolves to, or -1 if the document has no loop.
	LoopCommandIndex int
}

// ParseDocument parses a complete, fully buffered VGM file. Truncation
// anywhere in the command stream is reported as UnexpectedEndError, since
// a Document by definition has no more bytes coming.
func ParseDocument(data []byte) (*Document, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Header: h, Blocks: NewDataBlockStore(), LoopCommandIndex: -1}

	if h.GD3Offset != 0 {
		if int(h.GD3Offset) >= len(data) {
			return nil, &OffsetOutOfRangeError{Field: "gd3_offset", Offset: int(h.GD3Offset), Length: len(data)}
		}
		gd3, err := ParseGD3(data[h.GD3Offset:])
		if err != nil {
			return nil, err
		}
		doc.GD3 = gd3
	}

	end := int(h.EOFOffset)
	if end > len(data) || end == 0 {
		end = len(data)
	}
	cursor := int(h.DataOffset)
	for cursor < end {
		cmd, n, err := decodeCommand(data[cursor:end], cursor)
		if err == errNeedsMoreData {
			return nil, &UnexpectedEndError{Offset: cursor, Need: minNextCommandSize(data[cursor:end]), Have: end - cursor}
		}
		if err != nil {
			return nil, err
		}

		if cmd.Kind == KindDataBlock {
			if kind, _ := classifyDataBlockType(cmd.DataType); kind != dataBlockRAMWrite {
				idx, err := doc.Blocks.Store(cmd.DataType, cmd.Payload)
				if err != nil {
					return nil, err
				}
				_ = idx
			}
		}

		if h.LoopOffset != 0 && cursor == int(h.LoopOffset) {
			doc.LoopCommandIndex = len(doc.Commands)
		}

		doc.Commands = append(doc.Commands, cmd)
		doc.Offsets = append(doc.Offsets, cursor)
		cursor += n

		if cmd.Kind == KindEndOfData {
			break
		}
	}

	return doc, nil
}

// minNextCommandSize is a best-effort estimate of the total bytes the
// truncated command needs, for UnexpectedEndError's Need field: one more
// than the len(buf) bytes available, and at least 1.
func minNextCommandSize(buf []byte) int {
	if len(buf) == 0 {
		return 1
	}
	return len(buf) + 1
}

// Serialize renders the document back to wire bytes: header, then every
// command in order. Data-block commands carry their original wire payload
// in Command.Payload untouched — decompression only happens inside the
// Blocks store — so re-encoding straight from Commands reproduces the
// exact compressed bytes a reader originally supplied.
func (d *Document) Serialize() ([]byte, error) {
	var body []byte
	for _, cmd := range d.Commands {
		var err error
		body, err = encodeCommand(body, cmd)
		if err != nil {
			return nil, err
		}
	}

	var gd3Bytes []byte
	if d.GD3 != nil {
		gd3Bytes = d.GD3.Serialize()
	}

	total := int(d.Header.DataOffset) + len(body) + len(gd3Bytes)
	if d.GD3 != nil {
		d.Header.GD3Offset = uint32(int(d.Header.DataOffset) + len(body))
	}
	headerBytes := d.Header.Serialize(total)

	out := make([]byte, 0, total)
	out = append(out, headerBytes...)
	out = append(out, body...)
	out = append(out, gd3Bytes...)
	return out, nil
}
