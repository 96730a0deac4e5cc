// Package cpu implements the Sharp SM83 CPU: registers, the instruction
// set, and interrupt dispatch.
package cpu

// Interrupt bit positions in IE/IF, highest priority first.
const (
	InterruptVBlank uint8 = 0
	InterruptSTAT   uint8 = 1
	InterruptTimer  uint8 = 2
	InterruptSerial uint8 = 3
	InterruptJoypad uint8 = 4
)

var interruptHandlers = [5]uint16{
	0x0040, // V-Blank
	0x0048, // LCD STAT
	0x0050, // Timer
	0x0058, // Serial
	0x0060, // Joypad
}

// Memory is the bus as seen by the CPU. The concrete bus tags every access
// made through this interface as coming from the CPU requester.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// CPU represents the Sharp SM83 core, stepping one instruction (or one
// interrupt dispatch, or one HALT-consumed cycle) at a time. The caller is
// responsible for feeding the returned T-cycle count to the rest of
// the system (timer, PPU, APU, DMA) so they stay in lockstep with the CPU.
type CPU struct {
	Registers Registers
	Memory    Memory

	IME bool

	// pendingIME counts down the instructions remaining before EI's effect
	// latches into IME; it is nonzero only while an EI is scheduled. EI
	// itself doesn't take effect until the instruction after the one
	// following it has completed, so interrupts armed right after EI
	// still wait one more instruction before they can fire.
	pendingIME uint8

	halted  bool
	stopped bool

	// haltBug marks the one fetch immediately after a HALT executed with
	// IME=0 and an interrupt already pending: that fetch does not advance
	// PC, so the following byte is read (and therefore executed) twice.
	haltBug bool

	Cycles uint64
}

// New creates a CPU wired to the given bus view.
func New(mem Memory) *CPU {
	c := &CPU{Memory: mem}
	c.Registers.Reset()
	return c
}

// Reset restores the documented post-boot DMG register state and clears
// all transient CPU state (IME, HALT/STOP, the halt bug latch).
func (c *CPU) Reset() {
	c.Registers.Reset()
	c.IME = false
	c.pendingIME = 0
	c.halted = false
	c.stopped = false
	c.haltBug = false
	c.Cycles = 0
}

// Halted reports whether the CPU is currently in HALT, for host/diagnostic
// use; the emulation loop itself only needs Step.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU executed STOP and has not yet woken.
func (c *CPU) Stopped() bool { return c.stopped }

// Step advances the CPU by one instruction, or by one interrupt dispatch
// sequence if an interrupt takes priority, or by a single machine cycle if
// halted. It returns the number of T-cycles (4 per machine cycle) consumed.
func (c *CPU) Step() uint8 {
	// EI's countdown advances at the end of every step, so IME latches
	// once the instruction after the one following EI has completed.
	defer func() {
		if c.pendingIME > 0 {
			c.pendingIME--
			if c.pendingIME == 0 {
				c.IME = true
			}
		}
	}()

	if c.IME {
		if cycles := c.dispatchInterrupt(); cycles > 0 {
			c.Cycles += uint64(cycles)
			return cycles
		}
	}

	if c.halted {
		if c.pendingInterrupt() {
			c.halted = false
			if !c.IME {
				c.haltBug = true
			}
		}
		c.Cycles += 4
		return 4
	}

	if c.stopped {
		if c.pendingInterrupt() {
			c.stopped = false
		} else {
			c.Cycles += 4
			return 4
		}
	}

	opcode := c.fetchByte()

	var cycles uint8
	if opcode == 0xCB {
		cycles = c.executeCB(c.fetchByte())
	} else {
		cycles = c.execute(opcode)
	}
	c.Cycles += uint64(cycles)

	return cycles
}

func (c *CPU) pendingInterrupt() bool {
	ie := c.Memory.Read(0xFFFF)
	ifReg := c.Memory.Read(0xFF0F)
	return ie&ifReg&0x1F != 0
}

// dispatchInterrupt services the highest-priority pending interrupt. It
// mirrors the hardware's five-machine-cycle sequence: two idle cycles, a
// push of PC's high byte (which can itself clear the chosen interrupt's IE
// bit when SP has wandered into 0xFFFF, cancelling dispatch to PC 0x0000),
// a push of PC's low byte, then the IF clear and vector load. Returns 0 if
// nothing is pending.
func (c *CPU) dispatchInterrupt() uint8 {
	ie := c.Memory.Read(0xFFFF)
	ifReg := c.Memory.Read(0xFF0F)
	pending := ie & ifReg & 0x1F
	if pending == 0 {
		return 0
	}

	c.halted = false
	c.IME = false
	c.pendingIME = 0

	bit := lowestSetBit(pending)

	// Two idle machine cycles happen here on hardware; they have no
	// visible side effect besides elapsed time, already folded into the
	// fixed 20-cycle return below.

	pc := c.Registers.PC
	c.Registers.SP--
	c.Memory.Write(c.Registers.SP, uint8(pc>>8)) //nolint:gosec // G115: intentional byte extraction

	ie = c.Memory.Read(0xFFFF)
	ifReg = c.Memory.Read(0xFF0F)
	pending = ie & ifReg & 0x1F
	if pending == 0 {
		c.Registers.SP--
		c.Memory.Write(c.Registers.SP, uint8(pc)) //nolint:gosec // G115: intentional byte extraction
		c.Registers.PC = 0x0000
		return 20
	}
	bit = lowestSetBit(pending)

	c.Registers.SP--
	c.Memory.Write(c.Registers.SP, uint8(pc)) //nolint:gosec // G115: intentional byte extraction

	c.Memory.Write(0xFF0F, ifReg&^(1<<bit))
	c.Registers.PC = interruptHandlers[bit]

	return 20
}

func lowestSetBit(v uint8) uint8 {
	for bit := uint8(0); bit < 5; bit++ {
		if v&(1<<bit) != 0 {
			return bit
		}
	}
	return 0
}

// fetchByte fetches the next byte from memory. Under the halt bug PC does
// not advance, so the same byte is fetched (and executed) again.
func (c *CPU) fetchByte() uint8 {
	value := c.Memory.Read(c.Registers.PC)
	if !c.haltBug {
		c.Registers.PC++
	} else {
		c.haltBug = false
	}
	return value
}

func (c *CPU) fetchWord() uint16 {
	low := uint16(c.fetchByte())
	high := uint16(c.fetchByte())
	return high<<8 | low
}

func (c *CPU) push(value uint16) {
	c.Registers.SP -= 2
	c.Memory.Write(c.Registers.SP, uint8(value))      //nolint:gosec // G115: intentional byte extraction
	c.Memory.Write(c.Registers.SP+1, uint8(value>>8)) //nolint:gosec // G115: intentional byte extraction
}

func (c *CPU) pop() uint16 {
	low := uint16(c.Memory.Read(c.Registers.SP))
	high := uint16(c.Memory.Read(c.Registers.SP + 1))
	c.Registers.SP += 2
	return high<<8 | low
}

// Arithmetic/logic helpers, all operating on and setting flags on Registers.

func (c *CPU) add8(a, b uint8, carry bool) uint8 {
	carryVal := uint8(0)
	if carry && c.Registers.CarryFlag() {
		carryVal = 1
	}
	result := a + b + carryVal
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (a&0x0F)+(b&0x0F)+carryVal > 0x0F)
	c.Registers.SetFlagTo(FlagC, uint16(a)+uint16(b)+uint16(carryVal) > 0xFF)
	return result
}

func (c *CPU) sub8(a, b uint8, carry bool) uint8 {
	carryVal := uint8(0)
	if carry && c.Registers.CarryFlag() {
		carryVal = 1
	}
	result := a - b - carryVal
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.SetFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (a&0x0F) < (b&0x0F)+carryVal)
	c.Registers.SetFlagTo(FlagC, uint16(a) < uint16(b)+uint16(carryVal))
	return result
}

func (c *CPU) add16(a, b uint16) uint16 {
	result := a + b
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (a&0x0FFF)+(b&0x0FFF) > 0x0FFF)
	c.Registers.SetFlagTo(FlagC, uint32(a)+uint32(b) > 0xFFFF)
	return result
}

func (c *CPU) addSPSigned(offset int8) uint16 {
	result := uint16(int32(c.Registers.SP) + int32(offset)) //nolint:gosec // G115: intentional for SP+e8 calculation
	c.Registers.ClearFlag(FlagZ)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (c.Registers.SP&0x0F)+(uint16(offset)&0x0F) > 0x0F) //nolint:gosec // G115: intentional
	c.Registers.SetFlagTo(FlagC, (c.Registers.SP&0xFF)+(uint16(offset)&0xFF) > 0xFF) //nolint:gosec // G115: intentional
	return result
}

func (c *CPU) and(value uint8) uint8 {
	result := c.Registers.A & value
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlag(FlagH)
	c.Registers.ClearFlag(FlagC)
	return result
}

func (c *CPU) or(value uint8) uint8 {
	result := c.Registers.A | value
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.ClearFlag(FlagC)
	return result
}

func (c *CPU) xor(value uint8) uint8 {
	result := c.Registers.A ^ value
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.ClearFlag(FlagC)
	return result
}

func (c *CPU) cp(value uint8) { c.sub8(c.Registers.A, value, false) }

func (c *CPU) inc8(value uint8) uint8 {
	result := value + 1
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (value&0x0F) == 0x0F)
	return result
}

func (c *CPU) dec8(value uint8) uint8 {
	result := value - 1
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.SetFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (value&0x0F) == 0)
	return result
}

func (c *CPU) rlc(value uint8) uint8 {
	carry := (value & 0x80) >> 7
	result := (value << 1) | carry
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, carry == 1)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	carry := uint8(0)
	if c.Registers.CarryFlag() {
		carry = 1
	}
	newCarry := (value & 0x80) >> 7
	result := (value << 1) | carry
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, newCarry == 1)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	carry := value & 0x01
	result := (value >> 1) | (carry << 7)
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, carry == 1)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	carry := uint8(0)
	if c.Registers.CarryFlag() {
		carry = 1
	}
	newCarry := value & 0x01
	result := (value >> 1) | (carry << 7)
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, newCarry == 1)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	carry := (value & 0x80) >> 7
	result := value << 1
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, carry == 1)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	carry := value & 0x01
	result := (value >> 1) | (value & 0x80)
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, carry == 1)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	carry := value & 0x01
	result := value >> 1
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, carry == 1)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := (value << 4) | (value >> 4)
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.ClearFlag(FlagC)
	return result
}

func (c *CPU) bit(value, n uint8) {
	result := value & (1 << n)
	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlag(FlagH)
}

func (c *CPU) checkCondition(cond uint8) bool {
	switch cond {
	case 0: // NZ
		return !c.Registers.ZeroFlag()
	case 1: // Z
		return c.Registers.ZeroFlag()
	case 2: // NC
		return !c.Registers.CarryFlag()
	case 3: // C
		return c.Registers.CarryFlag()
	default:
		return false
	}
}

// daa performs the Decimal Adjust Accumulator operation, correcting A to a
// valid packed-BCD value following an ADD/ADC/SUB/SBC on BCD operands.
func (c *CPU) daa() {
	a := c.Registers.A

	if !c.Registers.SubtractFlag() { //nolint:nestif // BCD adjustment inherently branches both ways
		if c.Registers.CarryFlag() || a > 0x99 {
			a += 0x60
			c.Registers.SetFlag(FlagC)
		}
		if c.Registers.HalfCarryFlag() || (a&0x0F) > 0x09 {
			a += 0x06
		}
	} else {
		if c.Registers.CarryFlag() {
			a -= 0x60
		}
		if c.Registers.HalfCarryFlag() {
			a -= 0x06
		}
	}

	c.Registers.A = a
	c.Registers.SetFlagTo(FlagZ, a == 0)
	c.Registers.ClearFlag(FlagH)
}
