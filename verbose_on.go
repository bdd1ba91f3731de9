//go:build verbose
// +build verbose

package bluefruit

// Verbose enables debug output.
const Verbose = true
