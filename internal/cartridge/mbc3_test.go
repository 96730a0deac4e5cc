package cartridge

import "testing"

func TestMBC3ROMBanking(t *testing.T) {
	rom := make([]byte, 0x10000) // 64 KiB, 4 banks
	rom[0x0000] = 0x00
	rom[0x4000] = 0x01
	rom[0x8000] = 0x02
	rom[0xC000] = 0x03

	setupMBC1Header(rom, byte(TypeMBC3), 0x00, 0x01)

	header, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	cart, err := newMBC3(rom, header)
	if err != nil {
		t.Fatalf("newMBC3() error = %v", err)
	}

	if got := cart.Read(0x4000); got != 0x01 {
		t.Errorf("Read(0x4000) default bank = 0x%02X, want 0x01", got)
	}

	cart.Write(0x2000, 0x03)
	if got := cart.Read(0x4000); got != 0x03 {
		t.Errorf("Read(0x4000) after selecting bank 3 = 0x%02X, want 0x03", got)
	}

	// Unlike MBC1, the full 7 bits are usable and bank 0 still redirects to 1.
	cart.Write(0x2000, 0x00)
	if got := cart.Read(0x4000); got != 0x01 {
		t.Errorf("Read(0x4000) after writing 0x00 = 0x%02X, want 0x01", got)
	}
}

func TestMBC3RAMBanking(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC3RAMBattery), 0x03) // 32 KiB RAM, 4 banks

	header, _ := ParseHeader(rom)
	cart, _ := newMBC3(rom, header)

	cart.Write(0x0000, 0x0A) // enable RAM/RTC

	cart.Write(0x4000, 0x00)
	cart.Write(0xA000, 0x11)
	cart.Write(0x4000, 0x01)
	cart.Write(0xA000, 0x22)

	cart.Write(0x4000, 0x00)
	if got := cart.Read(0xA000); got != 0x11 {
		t.Errorf("RAM bank 0 = 0x%02X, want 0x11", got)
	}
	cart.Write(0x4000, 0x01)
	if got := cart.Read(0xA000); got != 0x22 {
		t.Errorf("RAM bank 1 = 0x%02X, want 0x22", got)
	}
}

func TestMBC3RTCRegisters(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC3TimerRAMBattery), 0x02)

	header, _ := ParseHeader(rom)
	cart, _ := newMBC3(rom, header)

	cart.Write(0x0000, 0x0A) // enable RAM/RTC

	for i := 0; i < 90; i++ {
		cart.TickRTC()
	}
	if cart.rtc.seconds != 30 {
		t.Fatalf("rtc.seconds after 90 ticks = %d, want 30", cart.rtc.seconds)
	}
	if cart.rtc.minutes != 1 {
		t.Fatalf("rtc.minutes after 90 ticks = %d, want 1", cart.rtc.minutes)
	}

	// Registers are stale until latched.
	cart.Write(0x4000, rtcSeconds)
	if got := cart.Read(0xA000); got != 0 {
		t.Errorf("unlatched seconds read = %d, want 0", got)
	}

	cart.Write(0x6000, 0x00)
	cart.Write(0x6000, 0x01)
	if got := cart.Read(0xA000); got != 30 {
		t.Errorf("latched seconds read = %d, want 30", got)
	}

	cart.Write(0x4000, rtcMinutes)
	if got := cart.Read(0xA000); got != 1 {
		t.Errorf("latched minutes read = %d, want 1", got)
	}
}

func TestMBC3RTCDayCarry(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC3TimerRAMBattery), 0x02)

	header, _ := ParseHeader(rom)
	cart, _ := newMBC3(rom, header)
	cart.Write(0x0000, 0x0A)

	cart.rtc.days = 0xFF
	cart.rtc.hours = 23
	cart.rtc.minutes = 59
	cart.rtc.seconds = 59
	cart.TickRTC()

	if cart.rtc.days&0xFF != 0 {
		t.Errorf("day counter after wrap = %d, want 0", cart.rtc.days&0xFF)
	}
	if cart.rtc.days&0x100 == 0 {
		t.Error("day-carry bit should be set after day 255 rolls over")
	}

	cart.Write(0x4000, rtcDaysHigh)
	cart.Write(0x6000, 0x00)
	cart.Write(0x6000, 0x01)
	if got := cart.Read(0xA000); got&rtcDaysHighCarry == 0 {
		t.Errorf("days-high read = 0x%02X, want carry bit set", got)
	}

	// Writing 0 to the carry bit clears it.
	cart.writeRTC(0x00)
	if cart.rtc.days&0x100 != 0 {
		t.Error("day-carry bit should clear when explicitly written as 0")
	}
}

func TestMBC3RTCHalt(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC3TimerRAMBattery), 0x02)

	header, _ := ParseHeader(rom)
	cart, _ := newMBC3(rom, header)
	cart.Write(0x0000, 0x0A)

	cart.Write(0x4000, rtcDaysHigh)
	cart.writeRTC(rtcDaysHighHalt)

	cart.TickRTC()
	if cart.rtc.seconds != 0 {
		t.Errorf("seconds advanced while halted: got %d, want 0", cart.rtc.seconds)
	}
}
