// Package cpu implements the Sharp SM83 CPU core: registers, the full
// instruction set and interrupt dispatch. Step executes one whole
// instruction at a time; instructions are not split into per-machine-cycle
// steps, so other components observe an instruction's memory accesses
// only after it has completed.
package cpu

// Flags represents CPU flag register bits.
const (
	FlagZ uint8 = 0b10000000 // Zero flag (bit 7)
	FlagN uint8 = 0b01000000 // Subtraction flag (bit 6)
	FlagH uint8 = 0b00100000 // Half-carry flag (bit 5)
	FlagC uint8 = 0b00010000 // Carry flag (bit 4)
)

// Registers holds the SM83 register file. F's low nibble is never set.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

// Reset sets the registers to the documented post-boot DMG values.
func (r *Registers) Reset() {
	r.A, r.F = 0x01, 0xB0
	r.B, r.C = 0x00, 0x13
	r.D, r.E = 0x00, 0xD8
	r.H, r.L = 0x01, 0x4D
	r.SP = 0xFFFE
	r.PC = 0x0100
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(value uint16) {
	r.A = uint8(value >> 8)   //nolint:gosec // G115: intentional byte extraction
	r.F = uint8(value) & 0xF0 //nolint:gosec // G115: low nibble of F is always 0
}

func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8) //nolint:gosec // G115: intentional byte extraction
	r.C = uint8(value)      //nolint:gosec // G115: intentional byte extraction
}

func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8) //nolint:gosec // G115: intentional byte extraction
	r.E = uint8(value)      //nolint:gosec // G115: intentional byte extraction
}

func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: intentional byte extraction
	r.L = uint8(value)      //nolint:gosec // G115: intentional byte extraction
}

func (r *Registers) GetFlag(flag uint8) bool { return r.F&flag != 0 }
func (r *Registers) SetFlag(flag uint8)      { r.F |= flag }
func (r *Registers) ClearFlag(flag uint8)    { r.F &^= flag }

func (r *Registers) SetFlagTo(flag uint8, value bool) {
	if value {
		r.SetFlag(flag)
	} else {
		r.ClearFlag(flag)
	}
}

func (r *Registers) ZeroFlag() bool      { return r.GetFlag(FlagZ) }
func (r *Registers) SubtractFlag() bool  { return r.GetFlag(FlagN) }
func (r *Registers) HalfCarryFlag() bool { return r.GetFlag(FlagH) }
func (r *Registers) CarryFlag() bool     { return r.GetFlag(FlagC) }
