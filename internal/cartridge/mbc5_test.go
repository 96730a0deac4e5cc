package cartridge

import "testing"

func TestMBC5ROMBankingSplitRegisters(t *testing.T) {
	// 8 MiB ROM (512 banks) to exercise the 9th bank bit.
	rom := make([]byte, 8*1024*1024)
	rom[0x0000] = 0x5A          // bank 0
	rom[0x4000] = 0x01          // bank 1
	rom[0x100*0x4000] = 0xAB // bank 0x100 (needs the high bit)

	setupMBC1Header(rom, byte(TypeMBC5), 0x00, 0x08)

	header, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	cart, err := newMBC5(rom, header)
	if err != nil {
		t.Fatalf("newMBC5() error = %v", err)
	}

	if got := cart.Read(0x4000); got != 0x01 {
		t.Errorf("Read(0x4000) default bank 1 = 0x%02X, want 0x01", got)
	}

	// Select bank 0x100: low byte 0x00 via 0x2000-0x2FFF, high bit via 0x3000-0x3FFF.
	cart.Write(0x2000, 0x00)
	cart.Write(0x3000, 0x01)
	if got := cart.Read(0x4000); got != 0xAB {
		t.Errorf("Read(0x4000) at bank 0x100 = 0x%02X, want 0xAB", got)
	}

	// Unlike MBC1/MBC3, bank 0 is directly selectable (no redirect to 1).
	cart.Write(0x3000, 0x00)
	cart.Write(0x2000, 0x00)
	if got := cart.Read(0x4000); got != rom[0x0000] {
		t.Errorf("Read(0x4000) at bank 0 = 0x%02X, want 0x%02X", got, rom[0x0000])
	}
}

func TestMBC5RAMBanking(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC5RAMBattery), 0x04) // 128 KiB, 16 banks

	header, _ := ParseHeader(rom)
	cart, _ := newMBC5(rom, header)

	cart.Write(0x0000, 0x0A) // enable RAM

	cart.Write(0x4000, 0x00)
	cart.Write(0xA000, 0x11)
	cart.Write(0x4000, 0x0F)
	cart.Write(0xA000, 0xFF)

	cart.Write(0x4000, 0x00)
	if got := cart.Read(0xA000); got != 0x11 {
		t.Errorf("RAM bank 0 = 0x%02X, want 0x11", got)
	}
	cart.Write(0x4000, 0x0F)
	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("RAM bank 15 = 0x%02X, want 0xFF", got)
	}
}

func TestMBC5RumbleMasksTopRAMBankBit(t *testing.T) {
	rom := make([]byte, 0x8000)
	setupMinimalHeader(rom, byte(TypeMBC5RumbleRAMBattery), 0x03) // 32 KiB, 4 banks

	header, _ := ParseHeader(rom)
	cart, _ := newMBC5(rom, header)
	cart.Write(0x0000, 0x0A)

	cart.Write(0x4000, 0x01)
	cart.Write(0xA000, 0x42)

	// Bit 3 is the rumble motor control on this variant, not a RAM bank bit;
	// the effective bank should still be 0x09 & 0x07 == 1.
	cart.Write(0x4000, 0x09)
	if got := cart.Read(0xA000); got != 0x42 {
		t.Errorf("rumble variant RAM bank = 0x%02X, want 0x42 (bank bit 3 masked off)", got)
	}
}

func TestMBC5HasBattery(t *testing.T) {
	tests := []struct {
		name     string
		cartType CartridgeType
		want     bool
	}{
		{"MBC5", TypeMBC5, false},
		{"MBC5+RAM", TypeMBC5RAM, false},
		{"MBC5+RAM+Battery", TypeMBC5RAMBattery, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := make([]byte, 0x8000)
			setupMinimalHeader(rom, byte(tt.cartType), 0x00)

			header, _ := ParseHeader(rom)
			cart, _ := newMBC5(rom, header)

			if got := cart.HasBattery(); got != tt.want {
				t.Errorf("HasBattery() = %v, want %v", got, tt.want)
			}
		})
	}
}
