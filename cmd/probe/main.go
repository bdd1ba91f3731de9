package main

import (
	"fmt"
	"log"

	"github.com/ecc1/bluefruit"
)

func main() {
	m := bluefruit.Open()
	if m.Error() != nil {
		log.Fatal(m.Error())
	}
	defer m.Close()
	fmt.Printf("device: %s\n", m.Device())
	fmt.Printf("pins: CS %d, IRQ %d, reset %s\n", bluefruit.CSPin, bluefruit.IRQPin, pinName(bluefruit.ResetPin))
	fmt.Printf("info:\n%s\n", m.Info())
	fmt.Printf("address: %s\n", m.Address())
	fmt.Printf("connected: %v\n", m.Connected())
	if m.Error() != nil {
		log.Fatal(m.Error())
	}
}

func pinName(pin int) string {
	if bluefruit.IsUnused(pin) {
		return "unused"
	}
	return fmt.Sprint(pin)
}
