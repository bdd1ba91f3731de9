//go:build !uart
// +build !uart

package bluefruit

// Configuration for Raspberry Pi.

const spiDevice = "/dev/spidev0.0"
