// builder.go - programmatic document construction.
//
// Grounded in psg_engine.go's accumulation style (callers push events one
// at a time and the engine tracks running state) adapted to build an
// encodable Command slice instead of driving audio synthesis directly.

package vgm

import "fmt"

// Builder accumulates commands into a Document from scratch, for callers
// synthesising a VGM stream rather than parsing one.
type Builder struct {
	header Header
	gd3    *GD3
	cmds   []Command

	chips            map[chipPortKey]bool
	loopCommandIndex int
}

// NewBuilder returns a Builder for a fresh document at the given version
// (BCD-encoded, e.g. 0x00000171 for 1.71).
func NewBuilder(version uint32) *Builder {
	// Raw spans [0:DataOffset); versions with a data_offset field get the
	// full fixed header so every chip clock slot can be serialised.
	dataOffset := uint32(0x40)
	if version >= v151 {
		dataOffset = fixedHeaderSize
	}
	raw := make([]byte, dataOffset)
	return &Builder{
		header:           Header{Version: version, DataOffset: dataOffset, Raw: raw},
		chips:            map[chipPortKey]bool{},
		loopCommandIndex: -1,
	}
}

// RegisterChip declares a chip instance's clock so it appears in the
// serialised header's chip table. Calling it twice for the same
// (chip, instance) replaces the clock.
func (b *Builder) RegisterChip(chip ChipKind, instance Instance, clockHz float32) {
	for i, c := range b.header.Chips {
		if c.Chip == chip && c.Instance == instance {
			b.header.Chips[i].ClockHz = clockHz
			return
		}
	}
	b.header.Chips = append(b.header.Chips, ChipClock{Chip: chip, Instance: instance, ClockHz: clockHz})
}

// AddChipWrite appends a register write. The chip/port pair must have a
// known opcode (see opcode.go's regWrites table); the instance must be
// Primary, or Secondary if that chip defines a secondary form.
func (b *Builder) AddChipWrite(chip ChipKind, port uint8, instance Instance, operand []byte) error {
	if _, ok := chipWriteOpcode(chip, port, instance); !ok {
		return fmt.Errorf("vgm: no opcode for chip %s port %d instance %s", chip, port, instance)
	}
	b.cmds = append(b.cmds, Command{Kind: KindChipWrite, Chip: chip, Port: port, Instance: instance, Operand: operand})
	return nil
}

// AddWait appends a generic wait-samples command.
func (b *Builder) AddWait(samples uint16) {
	b.cmds = append(b.cmds, Command{Kind: KindWaitSamples, Samples: samples})
}

// AddCommand appends an already-constructed command verbatim, for
// anything AddChipWrite/AddWait don't have a dedicated helper for (data
// blocks, DAC-stream control, PCM RAM writes).
func (b *Builder) AddCommand(cmd Command) {
	b.cmds = append(b.cmds, cmd)
}

// SetGD3 attaches metadata to the document.
func (b *Builder) SetGD3(gd3 *GD3) {
	b.gd3 = gd3
}

// SetTotalSamples sets the header's declared sample count directly; most
// callers should prefer letting Finalize derive it from the command
// stream's waits.
func (b *Builder) SetTotalSamples(n uint32) {
	b.header.TotalSamples = n
}

// SetLoop marks commandIndex as the loop-resumption point.
func (b *Builder) SetLoop(commandIndex int, loopSamples uint32) {
	b.loopCommandIndex = commandIndex
	b.header.LoopSamples = loopSamples
}

// Finalize appends a terminal EndOfData if the command stream doesn't
// already end with one, resolves the loop offset from the command index
// SetLoop recorded, and returns the assembled Document.
func (b *Builder) Finalize() *Document {
	if len(b.cmds) == 0 || b.cmds[len(b.cmds)-1].Kind != KindEndOfData {
		b.cmds = append(b.cmds, Command{Kind: KindEndOfData})
	}

	doc := &Document{
		Header:           &b.header,
		GD3:              b.gd3,
		Blocks:           NewDataBlockStore(),
		LoopCommandIndex: -1,
	}

	cursor := int(b.header.DataOffset)
	for i, cmd := range b.cmds {
		if i == b.loopCommandIndex {
			doc.LoopCommandIndex = i
			b.header.LoopOffset = uint32(cursor)
		}
		if cmd.Kind == KindDataBlock {
			idx, err := doc.Blocks.Store(cmd.DataType, cmd.Payload)
			if err == nil {
				_ = idx
			}
		}
		doc.Commands = append(doc.Commands, cmd)
		doc.Offsets = append(doc.Offsets, cursor)
		cursor += cmd.Length()
	}

	if b.header.TotalSamples == 0 {
		var total uint32
		for _, cmd := range doc.Commands {
			if cmd.IsWait() {
				total += uint32(cmd.WaitEquivalent())
			}
		}
		b.header.TotalSamples = total
	}

	return doc
}
