package cpu

// execute executes a standard (non-CB) opcode and returns the number of
// T-cycles consumed.
//
//nolint:gocognit,gocyclo // inherent to a 256-entry opcode dispatch
func (c *CPU) execute(opcode uint8) uint8 {
	switch opcode {
	// 0x00-0x0F
	case 0x00: // NOP
		return 4
	case 0x01: // LD BC, nn
		c.Registers.SetBC(c.fetchWord())
		return 12
	case 0x02: // LD (BC), A
		c.Memory.Write(c.Registers.BC(), c.Registers.A)
		return 8
	case 0x03: // INC BC
		c.Registers.SetBC(c.Registers.BC() + 1)
		return 8
	case 0x04: // INC B
		c.Registers.B = c.inc8(c.Registers.B)
		return 4
	case 0x05: // DEC B
		c.Registers.B = c.dec8(c.Registers.B)
		return 4
	case 0x06: // LD B, n
		c.Registers.B = c.fetchByte()
		return 8
	case 0x07: // RLCA
		c.Registers.A = c.rlc(c.Registers.A)
		c.Registers.ClearFlag(FlagZ)
		return 4
	case 0x08: // LD (nn), SP
		addr := c.fetchWord()
		c.Memory.Write(addr, uint8(c.Registers.SP))      //nolint:gosec // G115: intentional byte extraction
		c.Memory.Write(addr+1, uint8(c.Registers.SP>>8)) //nolint:gosec // G115: intentional byte extraction
		return 20
	case 0x09: // ADD HL, BC
		c.Registers.SetHL(c.add16(c.Registers.HL(), c.Registers.BC()))
		return 8
	case 0x0A: // LD A, (BC)
		c.Registers.A = c.Memory.Read(c.Registers.BC())
		return 8
	case 0x0B: // DEC BC
		c.Registers.SetBC(c.Registers.BC() - 1)
		return 8
	case 0x0C: // INC C
		c.Registers.C = c.inc8(c.Registers.C)
		return 4
	case 0x0D: // DEC C
		c.Registers.C = c.dec8(c.Registers.C)
		return 4
	case 0x0E: // LD C, n
		c.Registers.C = c.fetchByte()
		return 8
	case 0x0F: // RRCA
		c.Registers.A = c.rrc(c.Registers.A)
		c.Registers.ClearFlag(FlagZ)
		return 4

	// 0x10-0x1F
	case 0x10: // STOP
		c.stopped = true
		c.fetchByte()
		return 4
	case 0x11: // LD DE, nn
		c.Registers.SetDE(c.fetchWord())
		return 12
	case 0x12: // LD (DE), A
		c.Memory.Write(c.Registers.DE(), c.Registers.A)
		return 8
	case 0x13: // INC DE
		c.Registers.SetDE(c.Registers.DE() + 1)
		return 8
	case 0x14: // INC D
		c.Registers.D = c.inc8(c.Registers.D)
		return 4
	case 0x15: // DEC D
		c.Registers.D = c.dec8(c.Registers.D)
		return 4
	case 0x16: // LD D, n
		c.Registers.D = c.fetchByte()
		return 8
	case 0x17: // RLA
		c.Registers.A = c.rl(c.Registers.A)
		c.Registers.ClearFlag(FlagZ)
		return 4
	case 0x18: // JR n
		offset := int8(c.fetchByte())                                  //nolint:gosec // G115: intentional signed conversion
		c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: intentional
		return 12
	case 0x19: // ADD HL, DE
		c.Registers.SetHL(c.add16(c.Registers.HL(), c.Registers.DE()))
		return 8
	case 0x1A: // LD A, (DE)
		c.Registers.A = c.Memory.Read(c.Registers.DE())
		return 8
	case 0x1B: // DEC DE
		c.Registers.SetDE(c.Registers.DE() - 1)
		return 8
	case 0x1C: // INC E
		c.Registers.E = c.inc8(c.Registers.E)
		return 4
	case 0x1D: // DEC E
		c.Registers.E = c.dec8(c.Registers.E)
		return 4
	case 0x1E: // LD E, n
		c.Registers.E = c.fetchByte()
		return 8
	case 0x1F: // RRA
		c.Registers.A = c.rr(c.Registers.A)
		c.Registers.ClearFlag(FlagZ)
		return 4

	// 0x20-0x2F
	case 0x20: // JR NZ, n
		offset := int8(c.fetchByte()) //nolint:gosec // G115: intentional
		if !c.Registers.ZeroFlag() {
			c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: intentional
			return 12
		}
		return 8
	case 0x21: // LD HL, nn
		c.Registers.SetHL(c.fetchWord())
		return 12
	case 0x22: // LD (HL+), A
		c.Memory.Write(c.Registers.HL(), c.Registers.A)
		c.Registers.SetHL(c.Registers.HL() + 1)
		return 8
	case 0x23: // INC HL
		c.Registers.SetHL(c.Registers.HL() + 1)
		return 8
	case 0x24: // INC H
		c.Registers.H = c.inc8(c.Registers.H)
		return 4
	case 0x25: // DEC H
		c.Registers.H = c.dec8(c.Registers.H)
		return 4
	case 0x26: // LD H, n
		c.Registers.H = c.fetchByte()
		return 8
	case 0x27: // DAA
		c.daa()
		return 4
	case 0x28: // JR Z, n
		offset := int8(c.fetchByte()) //nolint:gosec // G115: intentional
		if c.Registers.ZeroFlag() {
			c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: intentional
			return 12
		}
		return 8
	case 0x29: // ADD HL, HL
		c.Registers.SetHL(c.add16(c.Registers.HL(), c.Registers.HL()))
		return 8
	case 0x2A: // LD A, (HL+)
		c.Registers.A = c.Memory.Read(c.Registers.HL())
		c.Registers.SetHL(c.Registers.HL() + 1)
		return 8
	case 0x2B: // DEC HL
		c.Registers.SetHL(c.Registers.HL() - 1)
		return 8
	case 0x2C: // INC L
		c.Registers.L = c.inc8(c.Registers.L)
		return 4
	case 0x2D: // DEC L
		c.Registers.L = c.dec8(c.Registers.L)
		return 4
	case 0x2E: // LD L, n
		c.Registers.L = c.fetchByte()
		return 8
	case 0x2F: // CPL
		c.Registers.A = ^c.Registers.A
		c.Registers.SetFlag(FlagN)
		c.Registers.SetFlag(FlagH)
		return 4

	// 0x30-0x3F
	case 0x30: // JR NC, n
		offset := int8(c.fetchByte()) //nolint:gosec // G115: intentional
		if !c.Registers.CarryFlag() {
			c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: intentional
			return 12
		}
		return 8
	case 0x31: // LD SP, nn
		c.Registers.SP = c.fetchWord()
		return 12
	case 0x32: // LD (HL-), A
		c.Memory.Write(c.Registers.HL(), c.Registers.A)
		c.Registers.SetHL(c.Registers.HL() - 1)
		return 8
	case 0x33: // INC SP
		c.Registers.SP++
		return 8
	case 0x34: // INC (HL)
		addr := c.Registers.HL()
		c.Memory.Write(addr, c.inc8(c.Memory.Read(addr)))
		return 12
	case 0x35: // DEC (HL)
		addr := c.Registers.HL()
		c.Memory.Write(addr, c.dec8(c.Memory.Read(addr)))
		return 12
	case 0x36: // LD (HL), n
		c.Memory.Write(c.Registers.HL(), c.fetchByte())
		return 12
	case 0x37: // SCF
		c.Registers.ClearFlag(FlagN)
		c.Registers.ClearFlag(FlagH)
		c.Registers.SetFlag(FlagC)
		return 4
	case 0x38: // JR C, n
		offset := int8(c.fetchByte()) //nolint:gosec // G115: intentional
		if c.Registers.CarryFlag() {
			c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: intentional
			return 12
		}
		return 8
	case 0x39: // ADD HL, SP
		c.Registers.SetHL(c.add16(c.Registers.HL(), c.Registers.SP))
		return 8
	case 0x3A: // LD A, (HL-)
		c.Registers.A = c.Memory.Read(c.Registers.HL())
		c.Registers.SetHL(c.Registers.HL() - 1)
		return 8
	case 0x3B: // DEC SP
		c.Registers.SP--
		return 8
	case 0x3C: // INC A
		c.Registers.A = c.inc8(c.Registers.A)
		return 4
	case 0x3D: // DEC A
		c.Registers.A = c.dec8(c.Registers.A)
		return 4
	case 0x3E: // LD A, n
		c.Registers.A = c.fetchByte()
		return 8
	case 0x3F: // CCF
		c.Registers.ClearFlag(FlagN)
		c.Registers.ClearFlag(FlagH)
		c.Registers.SetFlagTo(FlagC, !c.Registers.CarryFlag())
		return 4

	// 0x40-0x7F: register/(HL) loads, and HALT at 0x76
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		return c.executeLoadRR(opcode)
	case 0x76: // HALT
		c.halted = true
		return 4

	// 0x80-0x8F: ADD/ADC A, r
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		c.Registers.A = c.add8(c.Registers.A, c.readReg8(opcode&0x07), false)
		return timingHL(opcode, 4, 8)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		c.Registers.A = c.add8(c.Registers.A, c.readReg8(opcode&0x07), true)
		return timingHL(opcode, 4, 8)

	// 0x90-0x9F: SUB/SBC A, r
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		c.Registers.A = c.sub8(c.Registers.A, c.readReg8(opcode&0x07), false)
		return timingHL(opcode, 4, 8)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		c.Registers.A = c.sub8(c.Registers.A, c.readReg8(opcode&0x07), true)
		return timingHL(opcode, 4, 8)

	// 0xA0-0xAF: AND/XOR r
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		c.Registers.A = c.and(c.readReg8(opcode & 0x07))
		return timingHL(opcode, 4, 8)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		c.Registers.A = c.xor(c.readReg8(opcode & 0x07))
		return timingHL(opcode, 4, 8)

	// 0xB0-0xBF: OR/CP r
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		c.Registers.A = c.or(c.readReg8(opcode & 0x07))
		return timingHL(opcode, 4, 8)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		c.cp(c.readReg8(opcode & 0x07))
		return timingHL(opcode, 4, 8)

	// 0xC0-0xCF
	case 0xC0: // RET NZ
		return c.ret(!c.Registers.ZeroFlag())
	case 0xC1: // POP BC
		c.Registers.SetBC(c.pop())
		return 12
	case 0xC2: // JP NZ, nn
		return c.jp(!c.Registers.ZeroFlag())
	case 0xC3: // JP nn
		c.Registers.PC = c.fetchWord()
		return 16
	case 0xC4: // CALL NZ, nn
		return c.call(!c.Registers.ZeroFlag())
	case 0xC5: // PUSH BC
		c.push(c.Registers.BC())
		return 16
	case 0xC6: // ADD A, n
		c.Registers.A = c.add8(c.Registers.A, c.fetchByte(), false)
		return 8
	case 0xC7: // RST 00H
		return c.rst(0x00)
	case 0xC8: // RET Z
		return c.ret(c.Registers.ZeroFlag())
	case 0xC9: // RET
		c.Registers.PC = c.pop()
		return 16
	case 0xCA: // JP Z, nn
		return c.jp(c.Registers.ZeroFlag())
	case 0xCB:
		panic("CB prefix must be handled by Step, not execute")
	case 0xCC: // CALL Z, nn
		return c.call(c.Registers.ZeroFlag())
	case 0xCD: // CALL nn
		addr := c.fetchWord()
		c.push(c.Registers.PC)
		c.Registers.PC = addr
		return 24
	case 0xCE: // ADC A, n
		c.Registers.A = c.add8(c.Registers.A, c.fetchByte(), true)
		return 8
	case 0xCF: // RST 08H
		return c.rst(0x08)

	// 0xD0-0xDF
	case 0xD0: // RET NC
		return c.ret(!c.Registers.CarryFlag())
	case 0xD1: // POP DE
		c.Registers.SetDE(c.pop())
		return 12
	case 0xD2: // JP NC, nn
		return c.jp(!c.Registers.CarryFlag())
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		panic("illegal opcode")
	case 0xD4: // CALL NC, nn
		return c.call(!c.Registers.CarryFlag())
	case 0xD5: // PUSH DE
		c.push(c.Registers.DE())
		return 16
	case 0xD6: // SUB n
		c.Registers.A = c.sub8(c.Registers.A, c.fetchByte(), false)
		return 8
	case 0xD7: // RST 10H
		return c.rst(0x10)
	case 0xD8: // RET C
		return c.ret(c.Registers.CarryFlag())
	case 0xD9: // RETI
		c.Registers.PC = c.pop()
		c.IME = true
		return 16
	case 0xDA: // JP C, nn
		return c.jp(c.Registers.CarryFlag())
	case 0xDC: // CALL C, nn
		return c.call(c.Registers.CarryFlag())
	case 0xDE: // SBC A, n
		c.Registers.A = c.sub8(c.Registers.A, c.fetchByte(), true)
		return 8
	case 0xDF: // RST 18H
		return c.rst(0x18)

	// 0xE0-0xEF
	case 0xE0: // LDH (n), A
		c.Memory.Write(0xFF00+uint16(c.fetchByte()), c.Registers.A)
		return 12
	case 0xE1: // POP HL
		c.Registers.SetHL(c.pop())
		return 12
	case 0xE2: // LD (C), A
		c.Memory.Write(0xFF00+uint16(c.Registers.C), c.Registers.A)
		return 8
	case 0xE5: // PUSH HL
		c.push(c.Registers.HL())
		return 16
	case 0xE6: // AND n
		c.Registers.A = c.and(c.fetchByte())
		return 8
	case 0xE7: // RST 20H
		return c.rst(0x20)
	case 0xE8: // ADD SP, e
		c.Registers.SP = c.addSPSigned(int8(c.fetchByte())) //nolint:gosec // G115: intentional
		return 16
	case 0xE9: // JP (HL)
		c.Registers.PC = c.Registers.HL()
		return 4
	case 0xEA: // LD (nn), A
		c.Memory.Write(c.fetchWord(), c.Registers.A)
		return 16
	case 0xEE: // XOR n
		c.Registers.A = c.xor(c.fetchByte())
		return 8
	case 0xEF: // RST 28H
		return c.rst(0x28)

	// 0xF0-0xFF
	case 0xF0: // LDH A, (n)
		c.Registers.A = c.Memory.Read(0xFF00 + uint16(c.fetchByte()))
		return 12
	case 0xF1: // POP AF
		c.Registers.SetAF(c.pop())
		return 12
	case 0xF2: // LD A, (C)
		c.Registers.A = c.Memory.Read(0xFF00 + uint16(c.Registers.C))
		return 8
	case 0xF3: // DI
		c.IME = false
		c.pendingIME = 0
		return 4
	case 0xF5: // PUSH AF
		c.push(c.Registers.AF())
		return 16
	case 0xF6: // OR n
		c.Registers.A = c.or(c.fetchByte())
		return 8
	case 0xF7: // RST 30H
		return c.rst(0x30)
	case 0xF8: // LD HL, SP+e
		c.Registers.SetHL(c.addSPSigned(int8(c.fetchByte()))) //nolint:gosec // G115: intentional
		return 12
	case 0xF9: // LD SP, HL
		c.Registers.SP = c.Registers.HL()
		return 8
	case 0xFA: // LD A, (nn)
		c.Registers.A = c.Memory.Read(c.fetchWord())
		return 16
	case 0xFB: // EI
		c.pendingIME = 3
		return 4
	case 0xFE: // CP n
		c.cp(c.fetchByte())
		return 8
	case 0xFF: // RST 38H
		return c.rst(0x38)

	default:
		panic("unreachable opcode")
	}
}

// executeLoadRR handles the 0x40-0x7F block of 8-bit register/(HL) loads,
// whose destination and source are both encoded as 3-bit operand indices.
func (c *CPU) executeLoadRR(opcode uint8) uint8 {
	dst := (opcode >> 3) & 0x07
	src := opcode & 0x07
	value := c.readReg8(src)
	c.writeReg8(dst, value)
	if dst == 6 || src == 6 {
		return 8
	}
	return 4
}

// readReg8 reads one of the eight 3-bit-encoded operand slots: B,C,D,E,H,L,(HL),A.
func (c *CPU) readReg8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.Registers.B
	case 1:
		return c.Registers.C
	case 2:
		return c.Registers.D
	case 3:
		return c.Registers.E
	case 4:
		return c.Registers.H
	case 5:
		return c.Registers.L
	case 6:
		return c.Memory.Read(c.Registers.HL())
	default:
		return c.Registers.A
	}
}

func (c *CPU) writeReg8(idx, value uint8) {
	switch idx {
	case 0:
		c.Registers.B = value
	case 1:
		c.Registers.C = value
	case 2:
		c.Registers.D = value
	case 3:
		c.Registers.E = value
	case 4:
		c.Registers.H = value
	case 5:
		c.Registers.L = value
	case 6:
		c.Memory.Write(c.Registers.HL(), value)
	default:
		c.Registers.A = value
	}
}

// timingHL returns withHL when opcode's low 3 bits select (HL) (index 6),
// else withoutHL — the ALU-with-register block's only timing variation.
func timingHL(opcode, withoutHL, withHL uint8) uint8 {
	if opcode&0x07 == 6 {
		return withHL
	}
	return withoutHL
}

func (c *CPU) ret(cond bool) uint8 {
	if cond {
		c.Registers.PC = c.pop()
		return 20
	}
	return 8
}

func (c *CPU) jp(cond bool) uint8 {
	addr := c.fetchWord()
	if cond {
		c.Registers.PC = addr
		return 16
	}
	return 12
}

func (c *CPU) call(cond bool) uint8 {
	addr := c.fetchWord()
	if cond {
		c.push(c.Registers.PC)
		c.Registers.PC = addr
		return 24
	}
	return 12
}

func (c *CPU) rst(addr uint16) uint8 {
	c.push(c.Registers.PC)
	c.Registers.PC = addr
	return 16
}
