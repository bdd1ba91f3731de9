package bluefruit

// Settings shared by the SPI and UART transports.
const (
	BufSize = 160 // Size of the read buffer for incoming data

	// SPI pins. The module's SCK, MISO and MOSI go to the hardware SPI bus.
	CSPin    = 7
	IRQPin   = 8
	ResetPin = Unused // Optional but recommended

	// Unused marks a pin that is not wired.
	Unused = -1
)

// Constant expressions that fail to compile if the settings above are invalid.
const (
	_ = uint(BufSize - 1)
	_ = uint(CSPin)
	_ = uint(IRQPin)
	_ = uint(ResetPin - Unused)
	_ = 1 / (CSPin - IRQPin)
	_ = 1 / ((ResetPin - CSPin) * (ResetPin - IRQPin))
)

// IsUnused reports whether pin is the Unused sentinel rather than a GPIO number.
func IsUnused(pin int) bool {
	return pin == Unused
}
