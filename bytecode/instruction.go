package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Instruction is one opcode plus its (possibly absent) operand. Operand
// is stored as an int64 regardless of the opcode's declared width; the
// assembler narrows it to the correct byte width on serialization.
type Instruction struct {
	Op      Opcode
	Operand int64
	HasOperand bool
}

// Make builds a no-operand instruction.
func Make(op Opcode) Instruction {
	return Instruction{Op: op}
}

// MakeWithOperand builds an instruction carrying operand.
func MakeWithOperand(op Opcode, operand int64) Instruction {
	return Instruction{Op: op, Operand: operand, HasOperand: true}
}

// Encode serializes a single instruction to big-endian bytes: the opcode
// byte followed by its operand at the width Def.Width declares. Mirrors
// the teacher's MakeInstruction, extended past uint16 to the widths this
// opcode table needs.
func Encode(instr Instruction) ([]byte, error) {
	def, err := Get(instr.Op)
	if err != nil {
		return nil, err
	}

	switch def.Width {
	case NoOperand:
		return []byte{byte(instr.Op)}, nil
	case U32:
		buf := make([]byte, 5)
		buf[0] = byte(instr.Op)
		binary.BigEndian.PutUint32(buf[1:], uint32(instr.Operand))
		return buf, nil
	case I32:
		buf := make([]byte, 5)
		buf[0] = byte(instr.Op)
		binary.BigEndian.PutUint32(buf[1:], uint32(int32(instr.Operand)))
		return buf, nil
	case U64:
		buf := make([]byte, 9)
		buf[0] = byte(instr.Op)
		binary.BigEndian.PutUint64(buf[1:], uint64(instr.Operand))
		return buf, nil
	default:
		return nil, fmt.Errorf("bytecode: opcode %s has unknown operand width", def.Name)
	}
}

// Decode reads one instruction from r: its opcode byte, then whatever
// operand bytes its Def.Width declares. Mirrors Encode's layout exactly.
func Decode(r io.Reader) (Instruction, error) {
	var opByte [1]byte
	if _, err := io.ReadFull(r, opByte[:]); err != nil {
		return Instruction{}, err
	}
	op := Opcode(opByte[0])
	def, err := Get(op)
	if err != nil {
		return Instruction{}, err
	}

	switch def.Width {
	case NoOperand:
		return Make(op), nil
	case U32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Instruction{}, err
		}
		return MakeWithOperand(op, int64(binary.BigEndian.Uint32(buf[:]))), nil
	case I32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Instruction{}, err
		}
		return MakeWithOperand(op, int64(int32(binary.BigEndian.Uint32(buf[:])))), nil
	case U64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Instruction{}, err
		}
		return MakeWithOperand(op, int64(binary.BigEndian.Uint64(buf[:]))), nil
	default:
		return Instruction{}, fmt.Errorf("bytecode: opcode %s has unknown operand width", def.Name)
	}
}

// Disassemble renders a single instruction as a human-readable line.
func Disassemble(instr Instruction) (string, error) {
	def, err := Get(instr.Op)
	if err != nil {
		return "", err
	}
	if def.Width == NoOperand {
		return def.Name, nil
	}
	return fmt.Sprintf("%s %d", def.Name, instr.Operand), nil
}
