package cartridge

// MBC5 represents a cartridge with MBC5 (Memory Bank Controller 5), the
// last first-party MBC and the only one with a full 9-bit ROM bank number
// (up to 512 banks / 8 MiB), split across two write registers.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x7FFF: ROM Bank 000-1FF (switchable; unlike MBC1/3, bank 0 is valid here)
// - 0xA000-0xBFFF: RAM Bank 00-0F (switchable, if present)
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM Enable (write 0x0A to enable)
// - 0x2000-0x2FFF: ROM Bank Number, low 8 bits
// - 0x3000-0x3FFF: ROM Bank Number, bit 8
// - 0x4000-0x5FFF: RAM Bank Number (low 4 bits; low 3 bits on rumble variants)
type MBC5 struct {
	header *Header
	rom    []byte
	ram    []byte

	ramEnabled bool
	romBankLo  uint8
	romBankHi  uint8 // bit 8 only
	ramBank    uint8

	rumble bool // rumble variants reserve ramBank's top bit for the motor

	numROMBanks int
	numRAMBanks int
}

func newMBC5(rom []byte, header *Header) (*MBC5, error) {
	cart := &MBC5{
		header:      header,
		rom:         rom,
		romBankLo:   1,
		numROMBanks: header.GetROMBanks(),
		numRAMBanks: header.GetRAMBanks(),
	}

	switch CartridgeType(header.CartridgeType) {
	case TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery:
		cart.rumble = true
	}

	if CartridgeType(header.CartridgeType).HasRAM() {
		if ramSize := header.GetRAMSizeBytes(); ramSize > 0 {
			cart.ram = make([]byte, ramSize)
		}
	}

	return cart, nil
}

func (c *MBC5) romBank() int {
	return int(c.romBankLo) | (int(c.romBankHi&0x01) << 8)
}

func (c *MBC5) ramBankIndex() int {
	bank := c.ramBank
	if c.rumble {
		bank &= 0x07
	} else {
		bank &= 0x0F
	}
	return int(bank)
}

func (c *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF

	case addr < 0x8000:
		bank := c.romBank()
		if c.numROMBanks > 0 {
			bank %= c.numROMBanks
		}
		offset := bank*0x4000 + int(addr-0x4000)
		if offset < len(c.rom) {
			return c.rom[offset]
		}
		return 0xFF

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnabled || c.ram == nil {
			return 0xFF
		}
		bank := c.ramBankIndex()
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

func (c *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = (value & 0x0F) == 0x0A

	case addr < 0x3000:
		c.romBankLo = value

	case addr < 0x4000:
		c.romBankHi = value & 0x01

	case addr < 0x6000:
		c.ramBank = value & 0x0F

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnabled || c.ram == nil {
			return
		}
		bank := c.ramBankIndex()
		if c.numRAMBanks > 0 {
			bank %= c.numRAMBanks
		}
		offset := bank*0x2000 + int(addr-0xA000)
		if offset < len(c.ram) {
			c.ram[offset] = value
		}
	}
}

func (c *MBC5) Header() *Header { return c.header }

func (c *MBC5) HasBattery() bool {
	return CartridgeType(c.header.CartridgeType).HasBattery()
}

func (c *MBC5) GetRAM() []byte {
	if c.ram == nil {
		return nil
	}
	ramCopy := make([]byte, len(c.ram))
	copy(ramCopy, c.ram)
	return ramCopy
}

func (c *MBC5) SetRAM(data []byte) error {
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
