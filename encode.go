// encode.go - Command to wire-bytes, the inverse of decode.go.
//
// encodeCommand always appends exactly cmd.Length() bytes (Property 2,
// "length coherence"). For KindChipWrite it re-derives the opcode byte
// from (chip, port, instance) through the same regWrites table decode
// used, so encode(decode(x)) == x for every opcode this package emits.

package vgm

import (
	"encoding/binary"
	"fmt"
)

func encodeCommand(buf []byte, cmd Command) ([]byte, error) {
	switch cmd.Kind {
	case KindChipWrite:
		op, ok := chipWriteOpcode(cmd.Chip, cmd.Port, cmd.Instance)
		if !ok {
			return nil, fmt.Errorf("vgm: no opcode for chip %s port %d instance %s", cmd.Chip, cmd.Port, cmd.Instance)
		}
		buf = append(buf, op)
		buf = append(buf, cmd.Operand...)
		return buf, nil

	case KindWaitSamples:
		buf = append(buf, 0x61)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], cmd.Samples)
		return append(buf, tmp[:]...), nil

	case KindWaitShort:
		if cmd.Samples < 1 || cmd.Samples > 16 {
			return nil, fmt.Errorf("vgm: short wait out of range: %d", cmd.Samples)
		}
		return append(buf, 0x70+byte(cmd.Samples-1)), nil

	case KindWaitNTSC:
		return append(buf, 0x62), nil

	case KindWaitPAL:
		return append(buf, 0x63), nil

	case KindEndOfData:
		return append(buf, 0x66), nil

	case KindDataBlock:
		buf = append(buf, 0x67, 0x66, cmd.DataType)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(cmd.Payload)))
		buf = append(buf, tmp[:]...)
		return append(buf, cmd.Payload...), nil

	case KindPCMRAMWrite:
		buf = append(buf, 0x68, 0x66, cmd.PCMChipType)
		buf = append(buf, byte(cmd.PCMSrcOffset), byte(cmd.PCMSrcOffset>>8), byte(cmd.PCMSrcOffset>>16))
		buf = append(buf, byte(cmd.PCMDstOffset), byte(cmd.PCMDstOffset>>8), byte(cmd.PCMDstOffset>>16))
		buf = append(buf, byte(cmd.PCMSize), byte(cmd.PCMSize>>8), byte(cmd.PCMSize>>16))
		return buf, nil

	case KindYM2612DirectDAC:
		if cmd.Samples > 15 {
			return nil, fmt.Errorf("vgm: YM2612 direct DAC wait out of range: %d", cmd.Samples)
		}
		return append(buf, 0x80+byte(cmd.Samples)), nil

	case KindDACSetup:
		return append(buf, 0x90, cmd.StreamID, cmd.StreamChipType, cmd.StreamPort, cmd.StreamRegister), nil

	case KindDACSetData:
		return append(buf, 0x91, cmd.StreamID, cmd.StreamDataBank, cmd.StreamStepSize, cmd.StreamStepBase), nil

	case KindDACSetFrequency:
		buf = append(buf, 0x92, cmd.StreamID)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], cmd.StreamFrequency)
		return append(buf, tmp[:]...), nil

	case KindDACStart:
		buf = append(buf, 0x93, cmd.StreamID)
		var off, length [4]byte
		binary.LittleEndian.PutUint32(off[:], cmd.StreamOffset)
		binary.LittleEndian.PutUint32(length[:], cmd.StreamLength)
		buf = append(buf, off[:]...)
		buf = append(buf, cmd.StreamMode)
		return append(buf, length[:]...), nil

	case KindDACStop:
		return append(buf, 0x94, cmd.StreamID), nil

	case KindDACStartFastCall:
		buf = append(buf, 0x95, cmd.StreamID)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], cmd.StreamBlockID)
		buf = append(buf, tmp[:]...)
		return append(buf, cmd.StreamFlags), nil

	case KindUnknown:
		buf = append(buf, cmd.RawOpcode)
		return append(buf, cmd.Payload...), nil

	default:
		return nil, fmt.Errorf("vgm: unencodable command kind %d", cmd.Kind)
	}
}
