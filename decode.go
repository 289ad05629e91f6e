// decode.go - single-command decode from an immutable byte view.
//
// decodeCommand never mutates or advances any cursor itself (§9, "Partial
// input on the byte-fed path"): it inspects buf, and either returns a
// fully decoded Command plus the exact number of bytes it consumed, or
// errNeedsMoreData if buf might simply be too short — in which case the
// caller must not advance past it. A genuinely unrecognised opcode is a
// hard UnknownOpcodeError; that is never recoverable by feeding more
// bytes, so it is reported even with a short buffer.

package vgm

import "encoding/binary"

// decodeCommand decodes the single command at the start of buf. absOffset
// is only used to stamp the position into UnknownOpcodeError.
func decodeCommand(buf []byte, absOffset int) (Command, int, error) {
	if len(buf) == 0 {
		return Command{}, 0, errNeedsMoreData
	}
	op := buf[0]

	if chip, port, inst, length, ok := decodeChipWrite(op); ok {
		total := 1 + length
		if len(buf) < total {
			return Command{}, 0, errNeedsMoreData
		}
		operand := append([]byte(nil), buf[1:total]...)
		return Command{Kind: KindChipWrite, Chip: chip, Port: port, Instance: inst, Operand: operand}, total, nil
	}

	switch op {
	case 0x61:
		if len(buf) < 3 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindWaitSamples, Samples: binary.LittleEndian.Uint16(buf[1:3])}, 3, nil
	case 0x62:
		return Command{Kind: KindWaitNTSC}, 1, nil
	case 0x63:
		return Command{Kind: KindWaitPAL}, 1, nil
	case 0x66:
		return Command{Kind: KindEndOfData}, 1, nil
	case 0x67:
		return decodeDataBlock(buf, absOffset)
	case 0x68:
		if len(buf) < 12 {
			return Command{}, 0, errNeedsMoreData
		}
		src := uint32(buf[3]) | uint32(buf[4])<<8 | uint32(buf[5])<<16
		dst := uint32(buf[6]) | uint32(buf[7])<<8 | uint32(buf[8])<<16
		size := uint32(buf[9]) | uint32(buf[10])<<8 | uint32(buf[11])<<16
		return Command{Kind: KindPCMRAMWrite, PCMChipType: buf[2], PCMSrcOffset: src, PCMDstOffset: dst, PCMSize: size}, 12, nil
	case 0x90:
		if len(buf) < 5 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindDACSetup, StreamID: buf[1], StreamChipType: buf[2], StreamPort: buf[3], StreamRegister: buf[4]}, 5, nil
	case 0x91:
		if len(buf) < 5 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindDACSetData, StreamID: buf[1], StreamDataBank: buf[2], StreamStepSize: buf[3], StreamStepBase: buf[4]}, 5, nil
	case 0x92:
		if len(buf) < 6 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindDACSetFrequency, StreamID: buf[1], StreamFrequency: binary.LittleEndian.Uint32(buf[2:6])}, 6, nil
	case 0x93:
		if len(buf) < 11 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{
			Kind:         KindDACStart,
			StreamID:     buf[1],
			StreamOffset: binary.LittleEndian.Uint32(buf[2:6]),
			StreamMode:   buf[6],
			StreamLength: binary.LittleEndian.Uint32(buf[7:11]),
		}, 11, nil
	case 0x94:
		if len(buf) < 2 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindDACStop, StreamID: buf[1]}, 2, nil
	case 0x95:
		if len(buf) < 5 {
			return Command{}, 0, errNeedsMoreData
		}
		return Command{Kind: KindDACStartFastCall, StreamID: buf[1], StreamBlockID: binary.LittleEndian.Uint16(buf[2:4]), StreamFlags: buf[4]}, 5, nil
	}

	if op >= 0x70 && op <= 0x7F {
		return Command{Kind: KindWaitShort, Samples: uint16(op&0x0F) + 1}, 1, nil
	}
	if op >= 0x80 && op <= 0x8F {
		return Command{Kind: KindYM2612DirectDAC, Samples: uint16(op & 0x0F)}, 1, nil
	}
	if length, ok := unknownButFixedLength(op); ok {
		total := 1 + length
		if len(buf) < total {
			return Command{}, 0, errNeedsMoreData
		}
		payload := append([]byte(nil), buf[1:total]...)
		return Command{Kind: KindUnknown, RawOpcode: op, Payload: payload}, total, nil
	}

	return Command{}, 0, &UnknownOpcodeError{Byte: op, Offset: absOffset}
}

// decodeDataBlock decodes the 0x67 envelope: marker byte, type byte,
// 4-byte little-endian size, then that many payload bytes.
func decodeDataBlock(buf []byte, absOffset int) (Command, int, error) {
	if len(buf) < 7 {
		return Command{}, 0, errNeedsMoreData
	}
	if buf[1] != 0x66 {
		return Command{}, 0, &UnknownOpcodeError{Byte: buf[1], Offset: absOffset + 1}
	}
	size := binary.LittleEndian.Uint32(buf[3:7])
	total := 7 + int(size)
	if len(buf) < total {
		return Command{}, 0, errNeedsMoreData
	}
	payload := append([]byte(nil), buf[7:total]...)
	return Command{Kind: KindDataBlock, DataType: buf[2], Payload: payload}, total, nil
}
