package input

import "testing"

func TestJoypadRead_NoButtonsPressed(t *testing.T) {
	j := New(nil)

	result := j.Read()

	expected := uint8(0xFF)
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadRead_ActionButtonsSelected(t *testing.T) {
	j := New(nil)

	j.Write(0xDF) // 11011111 - P15=0, P14=1
	j.SetButtons(0xFF &^ maskA)

	result := j.Read()

	expected := uint8(0xDE) // P15=0, P14=1, A pressed -> bit 0 clear
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadRead_DirectionButtonsSelected(t *testing.T) {
	j := New(nil)

	j.Write(0xEF) // 11101111 - P15=1, P14=0
	j.SetButtons(0xFF &^ maskUp)

	result := j.Read()

	expected := uint8(0xEB) // P15=1, P14=0, Up pressed -> bit 2 clear
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadRead_MultipleActionButtons(t *testing.T) {
	j := New(nil)

	j.Write(0xDF)
	j.SetButtons(0xFF &^ (maskA | maskB | maskStart))

	result := j.Read()

	expected := uint8(0xD4) // bits 0,1,3 clear for A,B,Start
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadRead_MultipleDirectionButtons(t *testing.T) {
	j := New(nil)

	j.Write(0xEF)
	j.SetButtons(0xFF &^ (maskUp | maskRight))

	result := j.Read()

	expected := uint8(0xEA) // bits 0,2 clear for Right,Up
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadRead_BothGroupsSelected(t *testing.T) {
	j := New(nil)

	j.Write(0xCF) // P15=0, P14=0: both groups selected
	j.SetButtons(0xFF &^ (maskA | maskUp))

	result := j.Read()

	expected := uint8(0xCA) // bits 0,2 clear from both sets
	if result != expected {
		t.Errorf("Expected 0x%02X, got 0x%02X", expected, result)
	}
}

func TestJoypadWrite_SelectionBits(t *testing.T) {
	j := New(nil)

	j.Write(0xDF) // P15=0, P14=1

	if j.selectAction {
		t.Error("Expected selectAction to be false (bit cleared)")
	}
	if !j.selectDirection {
		t.Error("Expected selectDirection to be true (bit set)")
	}

	j.Write(0xEF) // P15=1, P14=0

	if !j.selectAction {
		t.Error("Expected selectAction to be true (bit set)")
	}
	if j.selectDirection {
		t.Error("Expected selectDirection to be false (bit cleared)")
	}
}

func TestJoypadInterrupt(t *testing.T) {
	interruptCalled := false
	var interruptBit uint8

	j := New(func(bit uint8) {
		interruptCalled = true
		interruptBit = bit
	})

	j.SetButtons(0xFF &^ maskA)

	if !interruptCalled {
		t.Error("Interrupt should be called when a button is pressed")
	}
	if interruptBit != 4 {
		t.Errorf("Expected interrupt bit 4 (joypad), got %d", interruptBit)
	}
}

func TestJoypadInterrupt_OnlyOnNewlyPressed(t *testing.T) {
	callCount := 0

	j := New(func(_ uint8) {
		callCount++
	})

	j.SetButtons(0xFF &^ maskA)
	if callCount != 1 {
		t.Errorf("Expected 1 interrupt call, got %d", callCount)
	}

	// Same mask again: A is still pressed, nothing newly pressed.
	j.SetButtons(0xFF &^ maskA)
	if callCount != 1 {
		t.Errorf("Expected 1 interrupt call (no spam), got %d", callCount)
	}

	// Release then press again.
	j.SetButtons(0xFF)
	j.SetButtons(0xFF &^ maskA)
	if callCount != 2 {
		t.Errorf("Expected 2 interrupt calls (after release), got %d", callCount)
	}
}

func TestJoypadInterrupt_MultipleSimultaneousNewPresses(t *testing.T) {
	callCount := 0
	j := New(func(_ uint8) { callCount++ })

	j.SetButtons(0xFF &^ (maskA | maskB))
	if callCount != 1 {
		t.Errorf("pressing two buttons in the same mask update should fire once, got %d calls", callCount)
	}
}

func TestJoypadRead_ButtonMapping(t *testing.T) {
	tests := []struct {
		name         string
		selectValue  uint8
		pressedMask  uint8
		expectedBits uint8 // low 4 bits of Read()
	}{
		{"Action: A pressed", 0xDF, maskA, 0x0E},
		{"Action: B pressed", 0xDF, maskB, 0x0D},
		{"Action: Select pressed", 0xDF, maskSelect, 0x0B},
		{"Action: Start pressed", 0xDF, maskStart, 0x07},
		{"Direction: Right pressed", 0xEF, maskRight, 0x0E},
		{"Direction: Left pressed", 0xEF, maskLeft, 0x0D},
		{"Direction: Up pressed", 0xEF, maskUp, 0x0B},
		{"Direction: Down pressed", 0xEF, maskDown, 0x07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(nil)
			j.Write(tt.selectValue)
			j.SetButtons(0xFF &^ tt.pressedMask)

			result := j.Read()
			actualBits := result & 0x0F

			if actualBits != tt.expectedBits {
				t.Errorf("Expected low 4 bits = 0x%X, got 0x%X (full result: 0x%02X)",
					tt.expectedBits, actualBits, result)
			}
		})
	}
}
