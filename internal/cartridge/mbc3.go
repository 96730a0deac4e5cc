package cartridge

// MBC3 represents a cartridge with MBC3 (Memory Bank Controller 3), as used
// by Pokemon Gold/Silver/Crystal among others. Like MBC1 but with a full
// 7-bit ROM bank register and an optional real-time clock mapped into the
// RAM-bank-select range.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x7FFF: ROM Bank 01-7F (switchable)
// - 0xA000-0xBFFF: RAM Bank 00-03, or a latched RTC register
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM/RTC Enable (write 0x0A to enable)
// - 0x2000-0x3FFF: ROM Bank Number (7 bits, 0 becomes 1)
// - 0x4000-0x5FFF: RAM Bank Number (0x00-0x03) or RTC register select (0x08-0x0C)
// - 0x6000-0x7FFF: Latch Clock Data (write 0x00 then 0x01 to latch)
type MBC3 struct {
	header *Header
	rom    []byte
	ram    []byte

	ramRTCEnabled bool
	romBank       uint8
	ramBank       uint8 // 0x00-0x03 selects RAM, 0x08-0x0C selects an RTC register

	latchState uint8 // tracks the 0x00-then-0x01 latch sequence
	rtc        rtcState
	latched    rtcState // snapshot taken on the 0x00->0x01 latch sequence; RAM reads see this

	numROMBanks int
	numRAMBanks int
}

// rtcState holds the real-time clock's seconds/minutes/hours/days counters.
type rtcState struct {
	seconds, minutes, hours uint8
	days                    uint16 // 9 bits; bit 8 is the sticky day-carry flag
	halted                  bool
}

// RTC register indices, as written to 0x4000-0x5FFF to select one.
const (
	rtcSeconds  = 0x08
	rtcMinutes  = 0x09
	rtcHours    = 0x0A
	rtcDaysLow  = 0x0B
	rtcDaysHigh = 0x0C

	rtcDaysHighHalt  = 1 << 6
	rtcDaysHighCarry = 1 << 7
)

func newMBC3(rom []byte, header *Header) (*MBC3, error) {
	cart := &MBC3{
		header:      header,
		rom:         rom,
		romBank:     1,
		numROMBanks: header.GetROMBanks(),
		numRAMBanks: header.GetRAMBanks(),
	}

	if CartridgeType(header.CartridgeType).HasRAM() {
		if ramSize := header.GetRAMSizeBytes(); ramSize > 0 {
			cart.ram = make([]byte, ramSize)
		}
	}

	return cart, nil
}

func (c *MBC3) romOffset(bank int, addr uint16) int {
	if c.numROMBanks > 0 {
		bank %= c.numROMBanks
	}
	return bank*0x4000 + int(addr)
}

func (c *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		offset := c.romOffset(0, addr)
		if offset < len(c.rom) {
			return c.rom[offset]
		}
		return 0xFF

	case addr < 0x8000:
		offset := c.romOffset(int(c.romBank), addr-0x4000)
		if offset < len(c.rom) {
			return c.rom[offset]
		}
		return 0xFF

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramRTCEnabled {
			return 0xFF
		}
		if c.ramBank >= rtcSeconds {
			return c.readRTC()
		}
		if c.ram == nil {
			return 0xFF
		}
		bank := int(c.ramBank)
		if c.numRAMBanks > 0 {
			bank %= c.numRAMBanks
		}
		offset := bank*0x2000 + int(addr-0xA000)
		if offset < len(c.ram) {
			return c.ram[offset]
		}
		return 0xFF

	default:
		return 0xFF
	}
}

func (c *MBC3) readRTC() uint8 {
	switch c.ramBank {
	case rtcSeconds:
		return c.latched.seconds
	case rtcMinutes:
		return c.latched.minutes
	case rtcHours:
		return c.latched.hours
	case rtcDaysLow:
		return uint8(c.latched.days) //nolint:gosec // G115: days is kept within 9 bits
	case rtcDaysHigh:
		value := uint8(c.latched.days>>8) & 0x01
		if c.latched.halted {
			value |= rtcDaysHighHalt
		}
		if c.latched.days&0x100 != 0 {
			value |= rtcDaysHighCarry
		}
		return value
	default:
		return 0xFF
	}
}

func (c *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramRTCEnabled = (value & 0x0F) == 0x0A

	case addr < 0x4000:
		c.romBank = value & 0x7F
		if c.romBank == 0 {
			c.romBank = 1
		}

	case addr < 0x6000:
		c.ramBank = value

	case addr < 0x8000:
		if c.latchState == 0x00 && value == 0x01 {
			c.latched = c.rtc
		}
		c.latchState = value

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramRTCEnabled {
			return
		}
		if c.ramBank >= rtcSeconds {
			c.writeRTC(value)
			return
		}
		if c.ram == nil {
			return
		}
		bank := int(c.ramBank)
		if c.numRAMBanks > 0 {
			bank %= c.numRAMBanks
		}
		offset := bank*0x2000 + int(addr-0xA000)
		if offset < len(c.ram) {
			c.ram[offset] = value
		}
	}
}

func (c *MBC3) writeRTC(value uint8) {
	switch c.ramBank {
	case rtcSeconds:
		c.rtc.seconds = value % 60
	case rtcMinutes:
		c.rtc.minutes = value % 60
	case rtcHours:
		c.rtc.hours = value % 24
	case rtcDaysLow:
		c.rtc.days = (c.rtc.days & 0x100) | uint16(value)
	case rtcDaysHigh:
		c.rtc.days = (c.rtc.days & 0xFF) | (uint16(value&0x01) << 8)
		c.rtc.halted = value&rtcDaysHighHalt != 0
		if value&rtcDaysHighCarry == 0 {
			c.rtc.days &^= 0x100 // writing 0 to the carry bit clears it
		}
	}
}

// TickRTC advances the real-time clock by one simulated second. The console
// calls this once per ~60 emulated frames (roughly once a second at 59.7 Hz)
// rather than once per machine cycle, matching real MBC3 hardware's own
// independent 32768 Hz crystal.
func (c *MBC3) TickRTC() {
	if c.rtc.halted {
		return
	}
	c.rtc.seconds++
	if c.rtc.seconds < 60 {
		return
	}
	c.rtc.seconds = 0
	c.rtc.minutes++
	if c.rtc.minutes < 60 {
		return
	}
	c.rtc.minutes = 0
	c.rtc.hours++
	if c.rtc.hours < 24 {
		return
	}
	c.rtc.hours = 0
	days := c.rtc.days&0xFF + 1
	if days > 0xFF {
		c.rtc.days |= 0x100 // day-carry bit is sticky until explicitly cleared
		days = 0
	}
	c.rtc.days = (c.rtc.days & 0x100) | days
}

func (c *MBC3) Header() *Header { return c.header }

func (c *MBC3) HasBattery() bool {
	return CartridgeType(c.header.CartridgeType).HasBattery()
}

func (c *MBC3) GetRAM() []byte {
	if c.ram == nil {
		return nil
	}
	ramCopy := make([]byte, len(c.ram))
	copy(ramCopy, c.ram)
	return ramCopy
}

func (c *MBC3) SetRAM(data []byte) error {
	if c.ram == nil {
		return nil
	}
	copyLen := len(data)
	if copyLen > len(c.ram) {
		copyLen = len(c.ram)
	}
	copy(c.ram, data[:copyLen])
	return nil
}
