//go:build !uart
// +build !uart

package bluefruit

// Configuration for Intel Edison in 64-bit mode.

const spiDevice = "/dev/spidev5.1"
