//go:build !verbose
// +build !verbose

package bluefruit

// Verbose enables debug output. Build with -tags verbose to set it.
const Verbose = false
